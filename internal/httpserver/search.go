package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ovechkin-dev/marketplace/internal/es"
	"github.com/ovechkin-dev/marketplace/internal/logging"
	"github.com/ovechkin-dev/marketplace/internal/util"
)

type SearchHTTP struct {
	Index *es.ProductIndex
}

func (h *SearchHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, products, err := h.Index.Search(ctx, q, from, limit)
	if err != nil {
		l.Error("product_search_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Products retrieved successfully",
		"total":    total,
		"products": products,
	})
}
