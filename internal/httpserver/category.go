package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ovechkin-dev/marketplace/internal/logging"
	"github.com/ovechkin-dev/marketplace/internal/service"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}
	return uint(id), nil
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req service.CategoryInput
	if err := c.Bind(&req); err != nil {
		l.Warn("category_create_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.Svc.Create(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("category_create_failed", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Category name is required")
		}
		l.Error("category_create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	l.Info("category_create_success", "categoryID", cat.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Category created successfully",
		"category": cat,
	})
}

func (h *CategoryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	cats, err := h.Svc.List(ctx)
	if err != nil {
		l.Error("category_list_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Categories retrieved successfully",
		"categories": cats,
	})
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	cat, err := h.Svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("category_get_failed", "status", 404, "categoryID", id)
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		l.Error("category_get_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Category retrieved successfully",
		"category": cat,
	})
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req service.CategoryInput
	if err := c.Bind(&req); err != nil {
		l.Warn("category_update_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("category_update_failed", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Category name is required")
		case errors.Is(err, gorm.ErrRecordNotFound):
			l.Warn("category_update_failed", "status", 404, "categoryID", id)
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		default:
			l.Error("category_update_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	l.Info("category_update_success", "categoryID", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Category updated successfully",
		"category": cat,
	})
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("category_delete_failed", "status", 404, "categoryID", id)
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		l.Error("category_delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	l.Info("category_delete_success", "categoryID", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Category deleted successfully",
	})
}
