package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// registerBookings mounts /bookings. Ownership of a single booking is
// checked by the service; listing everyone's needs ViewAllBookings.
func registerBookings(api *echo.Group, d Deps, auth echo.MiddlewareFunc) {
	h := d.Bookings
	g := api.Group("/bookings", auth)
	g.POST("", h.Create)
	g.GET("", h.ListMine)
	g.GET("/all", h.ListAll, middleware.RequireCapability(model.CapViewAllBookings))
	g.GET("/:id", h.Get)
	g.GET("/:id/qr", h.QR)
	g.DELETE("/:id", h.Cancel)
}
