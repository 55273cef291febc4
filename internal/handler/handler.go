// Package handler adapts HTTP requests to the domain services. Handlers
// return errors; ErrorHandler is the single place that turns them into
// status codes and {"message"} bodies.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

const requestTimeout = 5 * time.Second

// Validator plugs the service validator into echo's c.Validate.
type Validator struct{}

func (Validator) Validate(i any) error { return service.Validate(i) }

// ErrorHandler maps apperr kinds and echo errors to JSON responses. Internal
// errors are logged and reported with a generic message.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	log = log.Named("http")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := translate(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"message": msg})
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func translate(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, fmt.Sprint(he.Message)
	}
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		return http.StatusInternalServerError, "internal server error"
	}
	return apperr.Status(kind), apperr.Message(err)
}

func timeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// actor is the authenticated caller, or a zero Actor.
func actor(c echo.Context) service.Actor {
	id, _ := middleware.UserID(c)
	return service.Actor{ID: id, Role: middleware.Role(c)}
}

func userID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	return id, nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// bind decodes the body into in. Malformed JSON is a validation error.
func bind(c echo.Context, in any) error {
	if err := c.Bind(in); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// Root answers GET / for uptime probes.
func Root(c echo.Context) error {
	return c.String(http.StatusOK, "API is running...")
}

// Health reports liveness and, when a pinger is given, storage readiness.
func Health(ping func(context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "db": err.Error()})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
