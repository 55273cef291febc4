package router

import (
	"github.com/labstack/echo/v4"
)

// crud is the handler set shared by the catalog resources.
type crud interface {
	List(echo.Context) error
	Get(echo.Context) error
	Create(echo.Context) error
	Update(echo.Context) error
	Delete(echo.Context) error
}

func mountCRUD(api *echo.Group, path string, h crud, writers ...echo.MiddlewareFunc) {
	api.GET(path, h.List)
	api.GET(path+"/:id", h.Get)
	api.POST(path, h.Create, writers...)
	api.PUT(path+"/:id", h.Update, writers...)
	api.DELETE(path+"/:id", h.Delete, writers...)
}

// registerCatalog exposes public reads and catalog-managed writes for
// movies, shows, theatres and cineasts.
func registerCatalog(api *echo.Group, d Deps, auth, manage echo.MiddlewareFunc) {
	mountCRUD(api, "/movies", d.Movies, auth, manage)
	mountCRUD(api, "/shows", d.Shows, auth, manage)
	mountCRUD(api, "/theatres", d.Theatres, auth, manage)
	mountCRUD(api, "/cineasts", d.Cineasts, auth, manage)

	api.GET("/movies/:id/reviews", d.Movies.ListReviews)
	api.POST("/movies/:id/reviews", d.Movies.AddReview, auth)
}
