package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ovechkin-dev/marketplace/internal/logging"
	authmw "github.com/ovechkin-dev/marketplace/internal/middleware/auth"
	"github.com/ovechkin-dev/marketplace/internal/service"
	"github.com/ovechkin-dev/marketplace/internal/util"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

// bindProductForm reads the multipart fields shared by create and update.
// The image file stays open until the request ends; echo closes the
// multipart form after the handler returns.
func bindProductForm(c echo.Context) (service.ProductInput, error) {
	var in service.ProductInput

	in.Name = c.FormValue("name")
	in.Description = c.FormValue("description")

	priceStr := c.FormValue("price")
	categoryStr := c.FormValue("category_id")
	if in.Name == "" || priceStr == "" || categoryStr == "" {
		return in, echo.NewHTTPError(http.StatusBadRequest, "Product name, price, and category are required")
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		return in, echo.NewHTTPError(http.StatusBadRequest, "Price must be a positive number")
	}
	in.Price = price

	categoryID, err := strconv.ParseUint(categoryStr, 10, 64)
	if err != nil {
		return in, echo.NewHTTPError(http.StatusBadRequest, "category_id is not an integer")
	}
	in.CategoryID = uint(categoryID)

	fh, err := c.FormFile("image")
	if err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return in, echo.NewHTTPError(http.StatusBadRequest, "cannot read image")
		}
		in.Image = &service.ImagePayload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
			Size:        fh.Size,
		}
	}

	return in, nil
}

func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	in, err := bindProductForm(c)
	if err != nil {
		l.Warn("product_create_failed", "status", 400, "error", err)
		return err
	}

	prod, err := h.Svc.Create(ctx, in, authmw.UserIDFromContext(c))
	if err != nil {
		return productError(c, l, "product_create_failed", err)
	}

	l.Info("product_create_success", "productID", prod.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Product created successfully",
		"product": prod,
	})
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.List(ctx, offset, limit)
	if err != nil {
		l.Error("product_list_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Products retrieved successfully",
		"products": items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	prod, err := h.Svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_get_failed", "status", 404, "productID", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("product_get_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product retrieved successfully",
		"product": prod,
	})
}

func (h *ProductHTTP) ListByCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_by_category")

	categoryID, err := parseID(c, "categoryId")
	if err != nil {
		return err
	}

	items, err := h.Svc.ListByCategory(ctx, categoryID)
	if err != nil {
		l.Error("product_list_by_category_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Products retrieved successfully",
		"products": items,
	})
}

func (h *ProductHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	in, err := bindProductForm(c)
	if err != nil {
		l.Warn("product_update_failed", "status", 400, "error", err)
		return err
	}

	prod, err := h.Svc.Update(ctx, id, in, authmw.UserIDFromContext(c))
	if err != nil {
		return productError(c, l, "product_update_failed", err)
	}

	l.Info("product_update_success", "productID", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product updated successfully",
		"product": prod,
	})
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, id, authmw.UserIDFromContext(c)); err != nil {
		return productError(c, l, "product_delete_failed", err)
	}

	l.Info("product_delete_success", "productID", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product deleted successfully",
	})
}
