package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// ShowHandler serves /api/shows.
type ShowHandler struct {
	Shows *service.ShowService
}

func NewShowHandler(s *service.ShowService) *ShowHandler {
	return &ShowHandler{Shows: s}
}

// List filters by ?theatre=, ?date= and a case-insensitive ?title= substring.
func (h *ShowHandler) List(c echo.Context) error {
	f := model.ShowFilter{Date: c.QueryParam("date"), Title: c.QueryParam("title")}
	if v := c.QueryParam("theatre"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return apperr.Validation("invalid theatre")
		}
		f.TheatreID = id
	}
	ctx, cancel := timeout(c)
	defer cancel()
	shows, err := h.Shows.List(ctx, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, shows)
}

func (h *ShowHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	sh, err := h.Shows.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *ShowHandler) Create(c echo.Context) error {
	var in service.ShowInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	sh, err := h.Shows.Create(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sh)
}

func (h *ShowHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.ShowInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	sh, err := h.Shows.Update(ctx, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *ShowHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Shows.Delete(ctx, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "show deleted"})
}
