package middleware

import (
	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/labstack/echo/v4"
)

// RequireRole rejects requests the authorization gate denies. ownerParam names the path
// parameter holding the owning user's id; it may be empty for routes without an owner.
func RequireRole(role auth.Role, ownerParam string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var owner string
			if ownerParam != "" {
				owner = c.Param(ownerParam)
			}
			if !auth.CanMutate(ActorFrom(c), owner, role, c.Request().Method) {
				return apperr.Forbidden()
			}
			return next(c)
		}
	}
}
