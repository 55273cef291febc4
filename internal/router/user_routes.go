package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

func registerUsers(api *echo.Group, d Deps, auth echo.MiddlewareFunc) {
	h := d.Users
	credentials := use(d.AuthRateLimit)

	// Registration is open; a valid token lets the owner create admins.
	api.POST("/users", h.Register, append(credentials, middleware.OptionalJWT(d.JWTSecret))...)
	api.POST("/users/login", h.Login, credentials...)
	api.POST("/users/refresh", h.Refresh, credentials...)

	me := api.Group("/users", auth)
	me.POST("/logout", h.Logout)
	me.GET("/me", h.Me)
	me.PUT("", h.UpdateProfile)
	me.DELETE("", h.DeleteProfile)
	me.PUT("/password", h.ChangePassword)
	me.GET("/favourites", h.ListLiked)
	me.POST("/favourites", h.AddLiked)
	me.DELETE("/favourites", h.ClearLiked)
	me.DELETE("/favourites/:movieId", h.RemoveLiked)

	me.GET("", h.List, middleware.RequireCapability(model.CapListUsers))
	me.PUT("/:id", h.SetAdmin, middleware.RequireCapability(model.CapGrantAdmin))
	me.DELETE("/:id", h.Delete, middleware.RequireCapability(model.CapDeleteUsers))
}
