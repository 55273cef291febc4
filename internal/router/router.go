// Package router registers the /api routes on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Deps carries the handlers and shared middleware. Nil middleware is
// skipped; a nil Upload handler leaves the upload routes answering 503.
type Deps struct {
	JWTSecret string

	Users    *handler.UserHandler
	Movies   *handler.MovieHandler
	Shows    *handler.ShowHandler
	Theatres *handler.TheatreHandler
	Cineasts *handler.CineastHandler
	Bookings *handler.BookingHandler
	Upload   *handler.UploadHandler
	Health   echo.HandlerFunc

	RateLimit     echo.MiddlewareFunc
	AuthRateLimit echo.MiddlewareFunc
	Cache         echo.MiddlewareFunc
}

func use(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Register mounts every route.
func Register(e *echo.Echo, d Deps) {
	e.GET("/", handler.Root)
	health := d.Health
	if health == nil {
		health = handler.Health(nil)
	}
	e.GET("/healthz", health)

	api := e.Group("/api", use(middleware.Identify(d.JWTSecret), d.RateLimit, d.Cache)...)
	auth := middleware.JWTAuth(d.JWTSecret)
	catalog := middleware.RequireCapability(model.CapManageCatalog)

	registerUsers(api, d, auth)
	registerCatalog(api, d, auth, catalog)
	registerBookings(api, d, auth)

	if d.Upload != nil {
		api.POST("/upload", d.Upload.Upload, auth, catalog)
		api.DELETE("/upload/*", d.Upload.Destroy, auth, catalog)
	} else {
		api.POST("/upload", handler.MediaDisabled, auth, catalog)
		api.DELETE("/upload/*", handler.MediaDisabled, auth, catalog)
	}
}
