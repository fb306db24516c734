package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/ovechkin-dev/marketplace/internal/tokens"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxRole     = "role"
)

func setUserContext(c echo.Context, claims *tokens.AccessClaims) error {
	id, err := claims.UserID()
	if err != nil {
		return err
	}
	c.Set(ctxUserID, id)
	c.Set(ctxUsername, claims.Username)
	c.Set(ctxRole, claims.Role)
	return nil
}

func UserIDFromContext(c echo.Context) uint {
	if id, ok := c.Get(ctxUserID).(uint); ok {
		return id
	}
	return 0
}

func UsernameFromContext(c echo.Context) string {
	if name, ok := c.Get(ctxUsername).(string); ok {
		return name
	}
	return ""
}

func RoleFromContext(c echo.Context) string {
	if role, ok := c.Get(ctxRole).(string); ok {
		return role
	}
	return ""
}
