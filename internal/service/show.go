package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

var (
	ErrShowNotFound     = apperr.NotFound("show not found")
	ErrUnknownTheatre   = apperr.Validation("theatre does not exist")
	ErrShowHasBookings  = apperr.Conflict("show has confirmed bookings")
	ErrSeatsBelowBooked = apperr.Conflict("total seats below seats already booked")
)

// ShowInput creates or partially updates a show. Price and seat count are
// pointers so that an explicit zero can be told apart from an omitted field.
type ShowInput struct {
	Title       string         `json:"title" validate:"max=200"`
	Description string         `json:"description" validate:"max=5000"`
	Poster      string         `json:"poster" validate:"max=500"`
	Language    string         `json:"language" validate:"max=60"`
	Date        string         `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time        string         `json:"time" validate:"omitempty,datetime=15:04"`
	Price       *float64       `json:"ticketPrice" validate:"omitempty,gte=0"`
	Seats       *int           `json:"totalSeats" validate:"omitempty,gte=0,lte=100000"`
	TheatreID   uint64         `json:"theatre"`
	Casts       []model.Credit `json:"casts" validate:"omitempty,dive"`
	Crews       []model.Credit `json:"crews" validate:"omitempty,dive"`
}

// ShowService manages screenings.
type ShowService struct {
	store    ShowStore
	theatres TheatreStore
	bookings BookingStore
	credits  creditResolver
	log      *zap.Logger
}

func NewShowService(store ShowStore, theatres TheatreStore, bookings BookingStore, credits creditResolver, log *zap.Logger) *ShowService {
	return &ShowService{store: store, theatres: theatres, bookings: bookings, credits: credits, log: log.Named("shows")}
}

func (s *ShowService) requireTheatre(ctx context.Context, id uint64) (model.Theatre, error) {
	t, err := s.theatres.GetByID(ctx, id)
	if errors.Is(err, repository.ErrTheatreNotFound) {
		return model.Theatre{}, ErrUnknownTheatre
	}
	if err != nil {
		return model.Theatre{}, apperr.Internal("load theatre", err)
	}
	return t, nil
}

// Create requires a title, date, time, seat count and an existing theatre.
func (s *ShowService) Create(ctx context.Context, in ShowInput) (model.Show, error) {
	if err := check(in); err != nil {
		return model.Show{}, err
	}
	switch {
	case strings.TrimSpace(in.Title) == "":
		return model.Show{}, apperr.Validation("title is required")
	case in.Date == "":
		return model.Show{}, apperr.Validation("date is required")
	case in.Time == "":
		return model.Show{}, apperr.Validation("time is required")
	case in.Seats == nil:
		return model.Show{}, apperr.Validation("totalSeats is required")
	case in.TheatreID == 0:
		return model.Show{}, apperr.Validation("theatre is required")
	}
	t, err := s.requireTheatre(ctx, in.TheatreID)
	if err != nil {
		return model.Show{}, err
	}
	if err := s.credits.verify(ctx, in.Casts, in.Crews); err != nil {
		return model.Show{}, err
	}

	var sh model.Show
	if err := copier.Copy(&sh, &in); err != nil {
		return model.Show{}, apperr.Internal("apply show", err)
	}
	applyCounts(&sh, in)
	if err := s.store.Create(ctx, &sh); err != nil {
		if errors.Is(err, repository.ErrTheatreNotFound) {
			return model.Show{}, ErrUnknownTheatre
		}
		return model.Show{}, apperr.Internal("create show", err)
	}
	sh.Theatre = &t
	s.log.Info("show created", zap.Uint64("show_id", sh.ID), zap.Uint64("theatre_id", sh.TheatreID))
	return sh, nil
}

func applyCounts(sh *model.Show, in ShowInput) {
	if in.Price != nil {
		sh.TicketPrice = *in.Price
	}
	if in.Seats != nil {
		sh.TotalSeats = *in.Seats
	}
}

func (s *ShowService) load(ctx context.Context, id uint64) (model.Show, error) {
	sh, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrShowNotFound) {
		return model.Show{}, ErrShowNotFound
	}
	if err != nil {
		return model.Show{}, apperr.Internal("load show", err)
	}
	return sh, nil
}

// Get returns a show with theatre and credit details.
func (s *ShowService) Get(ctx context.Context, id uint64) (model.Show, error) {
	sh, err := s.load(ctx, id)
	if err != nil {
		return model.Show{}, err
	}
	if t, err := s.theatres.GetByID(ctx, sh.TheatreID); err == nil {
		sh.Theatre = &t
	}
	if err := s.credits.populate(ctx, sh.Casts, sh.Crews); err != nil {
		return model.Show{}, err
	}
	return sh, nil
}

// List returns shows matching f, each with its theatre attached.
func (s *ShowService) List(ctx context.Context, f model.ShowFilter) ([]model.Show, error) {
	shows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list shows", err)
	}
	theatres, err := s.theatres.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list theatres", err)
	}
	byID := make(map[uint64]model.Theatre, len(theatres))
	for _, t := range theatres {
		byID[t.ID] = t
	}
	for i := range shows {
		if t, ok := byID[shows[i].TheatreID]; ok {
			t := t
			shows[i].Theatre = &t
		}
	}
	return shows, nil
}

// Update applies the non-empty fields of in. Moving the show requires the
// new theatre to exist; the seat count may not drop below seats booked.
func (s *ShowService) Update(ctx context.Context, id uint64, in ShowInput) (model.Show, error) {
	if err := check(in); err != nil {
		return model.Show{}, err
	}
	sh, err := s.load(ctx, id)
	if err != nil {
		return model.Show{}, err
	}
	if err := s.credits.verify(ctx, in.Casts, in.Crews); err != nil {
		return model.Show{}, err
	}
	if err := copier.CopyWithOption(&sh, &in, copier.Option{IgnoreEmpty: true}); err != nil {
		return model.Show{}, apperr.Internal("apply show", err)
	}
	applyCounts(&sh, in)
	if sh.TotalSeats < sh.SeatsBooked {
		return model.Show{}, ErrSeatsBelowBooked
	}
	t, err := s.requireTheatre(ctx, sh.TheatreID)
	if err != nil {
		return model.Show{}, err
	}
	if err := s.store.Update(ctx, &sh); err != nil {
		switch {
		case errors.Is(err, repository.ErrShowNotFound):
			return model.Show{}, ErrShowNotFound
		case errors.Is(err, repository.ErrTheatreNotFound):
			return model.Show{}, ErrUnknownTheatre
		case errors.Is(err, repository.ErrSeatsBelowBooked):
			return model.Show{}, ErrSeatsBelowBooked
		}
		return model.Show{}, apperr.Internal("update show", err)
	}
	sh.Theatre = &t
	return sh, nil
}

// Delete refuses to remove a show that still has confirmed bookings.
func (s *ShowService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	n, err := s.bookings.CountConfirmedByShow(ctx, id)
	if err != nil {
		return apperr.Internal("count bookings", err)
	}
	if n > 0 {
		return ErrShowHasBookings
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return ErrShowNotFound
		}
		return apperr.Internal("delete show", err)
	}
	s.log.Info("show deleted", zap.Uint64("show_id", id))
	return nil
}
