package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ovechkin-dev/marketplace/internal/models"
)

// RequireAdmin must run after RequireAuth.
func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if RoleFromContext(c) != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}
