package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// BookingHandler serves /api/bookings.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(b *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: b}
}

func (h *BookingHandler) Create(c echo.Context) error {
	if _, err := userID(c); err != nil {
		return err
	}
	var in service.BookingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	b, err := h.Bookings.Create(ctx, actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) ListMine(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	out, err := h.Bookings.ListMine(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) ListAll(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	out, err := h.Bookings.ListAll(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	b, err := h.Bookings.Get(ctx, actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// QR returns the ticket QR code as image/png.
func (h *BookingHandler) QR(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	png, err := h.Bookings.QR(ctx, actor(c), id)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return c.Blob(http.StatusOK, "image/png", png)
}

// Cancel releases the booking's seats.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	b, err := h.Bookings.Cancel(ctx, actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}
