package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// RequireCapability rejects callers whose role lacks c. It must run after
// JWTAuth.
func RequireCapability(c model.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, ok := UserID(ctx); !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
			}
			if !Role(ctx).Can(c) {
				return ctx.JSON(http.StatusForbidden, echo.Map{"message": "insufficient permissions"})
			}
			return next(ctx)
		}
	}
}
