package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

// JWTAuth requires a valid Bearer access token and stores its subject and
// role in the request context for UserID and Role.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return jwtAuth(secret, false)
}

// OptionalJWT authenticates the request when a Bearer token is present and
// lets anonymous requests through. A present but invalid token is rejected.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return jwtAuth(secret, true)
}

// Identify records the caller of a valid Bearer token for the middleware
// that follows, such as the rate limiter. Missing or bad tokens are ignored;
// route-level JWTAuth still decides access.
func Identify(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return next(c)
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return next(c)
			}
			if role, ok := model.ParseRole(claims.Role); ok {
				c.Set(ctxUserID, claims.UserID)
				c.Set(ctxRole, role)
			}
			return next(c)
		}
	}
}

func jwtAuth(secret string, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" && optional {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token"})
			}
			role, ok := model.ParseRole(claims.Role)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid claims"})
			}
			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxRole, role)
			return next(c)
		}
	}
}
