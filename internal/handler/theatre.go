package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// TheatreHandler serves /api/theatres.
type TheatreHandler struct {
	Theatres *service.TheatreService
}

func NewTheatreHandler(s *service.TheatreService) *TheatreHandler {
	return &TheatreHandler{Theatres: s}
}

func (h *TheatreHandler) List(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	out, err := h.Theatres.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TheatreHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Theatres.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *TheatreHandler) Create(c echo.Context) error {
	var in service.TheatreInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Theatres.Create(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *TheatreHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.TheatreInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	v, err := h.Theatres.Update(ctx, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *TheatreHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Theatres.Delete(ctx, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "theatre deleted"})
}
