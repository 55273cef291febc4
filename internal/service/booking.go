package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

var (
	ErrBookingNotFound  = apperr.NotFound("booking not found")
	ErrSoldOut          = apperr.Conflict("not enough seats available")
	ErrAlreadyCancelled = apperr.Conflict("booking already cancelled")
)

// QRSize is the edge length in pixels of ticket QR codes.
const QRSize = 256

// BookingInput is the body of POST /bookings.
type BookingInput struct {
	ShowID uint64 `json:"show" validate:"required"`
	Seats  int    `json:"seats" validate:"required,gt=0,lte=50"`
}

// BookingService admits bookings against show capacity.
type BookingService struct {
	store    BookingStore
	shows    ShowStore
	theatres TheatreStore
	users    UserStore
	pub      BookingPublisher
	siteURL  string
	log      *zap.Logger
}

func NewBookingService(store BookingStore, shows ShowStore, theatres TheatreStore, users UserStore,
	pub BookingPublisher, siteURL string, log *zap.Logger) *BookingService {
	return &BookingService{
		store:    store,
		shows:    shows,
		theatres: theatres,
		users:    users,
		pub:      pub,
		siteURL:  strings.TrimRight(siteURL, "/"),
		log:      log.Named("bookings"),
	}
}

func newBookingCode() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// TicketURL is the content encoded in a booking's QR code.
func (s *BookingService) TicketURL(code string) string {
	if s.siteURL == "" || s.siteURL == "*" {
		return code
	}
	return s.siteURL + "/tickets/" + code
}

// Create books in.Seats seats on a show for the actor. Capacity is checked
// and reserved atomically by the store; a full show fails with ErrSoldOut.
func (s *BookingService) Create(ctx context.Context, actor Actor, in BookingInput) (model.Booking, error) {
	if err := check(in); err != nil {
		return model.Booking{}, err
	}
	b := model.Booking{Code: newBookingCode(), UserID: actor.ID, ShowID: in.ShowID, Seats: in.Seats}
	if err := s.store.Create(ctx, &b); err != nil {
		switch {
		case errors.Is(err, repository.ErrShowNotFound):
			return model.Booking{}, ErrShowNotFound
		case errors.Is(err, repository.ErrSoldOut):
			return model.Booking{}, ErrSoldOut
		}
		return model.Booking{}, apperr.Internal("create booking", err)
	}
	s.log.Info("booking confirmed",
		zap.Uint64("booking_id", b.ID), zap.String("code", b.Code),
		zap.Uint64("user_id", b.UserID), zap.Uint64("show_id", b.ShowID), zap.Int("seats", b.Seats))
	s.publish(ctx, b)
	return b, nil
}

// publish announces b. Failures are logged and never fail the request.
func (s *BookingService) publish(ctx context.Context, b model.Booking) {
	if s.pub == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		Code:        b.Code,
		UserID:      b.UserID,
		ShowID:      b.ShowID,
		Seats:       b.Seats,
		TotalPrice:  b.TotalPrice,
		TicketURL:   s.TicketURL(b.Code),
		ConfirmedAt: b.CreatedAt,
	}
	if u, err := s.users.GetByID(ctx, b.UserID); err == nil {
		ev.UserName, ev.UserEmail = u.FullName, u.Email
	}
	if sh, err := s.shows.GetByID(ctx, b.ShowID); err == nil {
		ev.ShowTitle, ev.Date, ev.Time = sh.Title, sh.Date, sh.Time
		if t, err := s.theatres.GetByID(ctx, sh.TheatreID); err == nil {
			ev.TheatreName = t.Name
		}
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.pub.PublishBookingConfirmed(pctx, ev); err != nil {
		s.log.Warn("publish booking.confirmed failed", zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}

// authorize loads a booking visible to the actor: their own, or any when the
// actor may manage bookings.
func (s *BookingService) authorize(ctx context.Context, actor Actor, id uint64) (model.Booking, error) {
	b, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return model.Booking{}, ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, apperr.Internal("load booking", err)
	}
	if b.UserID != actor.ID && !actor.Role.Can(model.CapManageBookings) {
		return model.Booking{}, ErrForbidden
	}
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, actor Actor, id uint64) (model.Booking, error) {
	return s.authorize(ctx, actor, id)
}

// ListMine returns the actor's bookings, newest first.
func (s *BookingService) ListMine(ctx context.Context, actor Actor) ([]model.Booking, error) {
	out, err := s.store.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal("list bookings", err)
	}
	return out, nil
}

// ListAll returns every booking.
func (s *BookingService) ListAll(ctx context.Context, actor Actor) ([]model.Booking, error) {
	if err := actor.require(model.CapViewAllBookings); err != nil {
		return nil, err
	}
	out, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("list bookings", err)
	}
	return out, nil
}

// Cancel cancels a confirmed booking and returns its seats to the show.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, id uint64) (model.Booking, error) {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return model.Booking{}, err
	}
	b, err := s.store.Cancel(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return model.Booking{}, ErrAlreadyCancelled
		case errors.Is(err, repository.ErrBookingNotFound):
			return model.Booking{}, ErrBookingNotFound
		}
		return model.Booking{}, apperr.Internal("cancel booking", err)
	}
	s.log.Info("booking cancelled", zap.Uint64("booking_id", b.ID), zap.Uint64("by", actor.ID))
	return b, nil
}

// QR renders the booking's ticket as a PNG QR code.
func (s *BookingService) QR(ctx context.Context, actor Actor, id uint64) ([]byte, error) {
	b, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookingConfirmed {
		return nil, ErrAlreadyCancelled
	}
	png, err := utils.TicketQR(s.TicketURL(b.Code), QRSize)
	if err != nil {
		return nil, apperr.Internal("render qr", err)
	}
	return png, nil
}
