package middleware

import (
	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

// TokenVerifier authenticates an Authorization header value.
type TokenVerifier interface {
	VerifyToken(header string) (auth.Actor, error)
}

// JWTAuthMiddleware checks for a valid bearer token and stores the caller in the context.
func JWTAuthMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := verifier.VerifyToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// ActorFrom returns the authenticated caller, or the zero Actor on public routes.
func ActorFrom(c echo.Context) auth.Actor {
	actor, _ := c.Get(actorKey).(auth.Actor)
	return actor
}
