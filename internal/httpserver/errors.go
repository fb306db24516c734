package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ovechkin-dev/marketplace/internal/service"
)

// productError maps service sentinels onto status codes for the product
// handlers. Unexpected errors are logged and surface as a generic 500.
func productError(c echo.Context, l *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(op, "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		l.Warn(op, "status", 403, "error", err)
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		l.Warn(op, "status", 404)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrUpload):
		l.Error(op, "status", 500, "reason", "upload failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Image upload failed")
	default:
		l.Error(op, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
