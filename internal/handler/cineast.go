package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// CineastHandler serves /api/cineasts, the people credited on movies and
// shows.
type CineastHandler struct {
	Cineasts *service.CineastService
}

func NewCineastHandler(s *service.CineastService) *CineastHandler {
	return &CineastHandler{Cineasts: s}
}

func (h *CineastHandler) List(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	out, err := h.Cineasts.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CineastHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Cineasts.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CineastHandler) Create(c echo.Context) error {
	var in service.CineastInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Cineasts.Create(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *CineastHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.CineastInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Cineasts.Update(ctx, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CineastHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Cineasts.Delete(ctx, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "cineast deleted"})
}
