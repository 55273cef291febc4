package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/browse"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// MovieHandler serves /api/movies.
type MovieHandler struct {
	Movies *service.MovieService
}

func NewMovieHandler(m *service.MovieService) *MovieHandler {
	return &MovieHandler{Movies: m}
}

// browseQuery reads genre, search, sort, order, visible and more from the
// query string.
func browseQuery(c echo.Context) (browse.Query, error) {
	var q browse.Query
	q.Genre = c.QueryParam("genre")
	q.Search = c.QueryParam("search")

	var ok bool
	if q.Sort, ok = browse.ParseSort(c.QueryParam("sort")); !ok {
		return q, apperr.Validation("sort must be one of rating, popularity, releaseDate")
	}
	if q.Order, ok = browse.ParseOrder(c.QueryParam("order")); !ok {
		return q, apperr.Validation("order must be asc or desc")
	}
	if v := c.QueryParam("visible"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, apperr.Validation("visible must be a non-negative integer")
		}
		q.Visible = n
	}
	if more, _ := strconv.ParseBool(c.QueryParam("more")); more {
		q = browse.LoadMore(q)
	}
	return q, nil
}

func (h *MovieHandler) List(c echo.Context) error {
	q, err := browseQuery(c)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	res, err := h.Movies.Browse(ctx, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Get accepts a numeric id or a slug.
func (h *MovieHandler) Get(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	m, err := h.Movies.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Create(c echo.Context) error {
	var in service.MovieInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	m, err := h.Movies.Create(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MovieHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.MovieInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	m, err := h.Movies.Update(ctx, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Movies.Delete(ctx, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie deleted"})
}

func (h *MovieHandler) AddReview(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.ReviewInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	rv, err := h.Movies.AddReview(ctx, uid, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *MovieHandler) ListReviews(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	out, err := h.Movies.ListReviews(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
