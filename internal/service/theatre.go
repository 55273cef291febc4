package service

import (
	"context"
	"errors"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

var (
	ErrTheatreNotFound = apperr.NotFound("theatre not found")
	ErrTheatreHasShows = apperr.Conflict("theatre still has shows")
)

// TheatreInput creates or partially updates a theatre.
type TheatreInput struct {
	Name     string  `json:"name" validate:"max=160"`
	Address  string  `json:"address" validate:"max=300"`
	SeatRows *uint32 `json:"seatRows" validate:"omitempty,gt=0,lte=200"`
	SeatCols *uint32 `json:"seatCols" validate:"omitempty,gt=0,lte=200"`
}

// TheatreService manages venues.
type TheatreService struct {
	store TheatreStore
	shows ShowStore
	log   *zap.Logger
}

func NewTheatreService(store TheatreStore, shows ShowStore, log *zap.Logger) *TheatreService {
	return &TheatreService{store: store, shows: shows, log: log.Named("theatres")}
}

func (s *TheatreService) Create(ctx context.Context, in TheatreInput) (model.Theatre, error) {
	if err := check(in); err != nil {
		return model.Theatre{}, err
	}
	if in.Name == "" {
		return model.Theatre{}, apperr.Validation("name is required")
	}
	var t model.Theatre
	if err := copier.Copy(&t, &in); err != nil {
		return model.Theatre{}, apperr.Internal("apply theatre", err)
	}
	if err := s.store.Create(ctx, &t); err != nil {
		return model.Theatre{}, apperr.Internal("create theatre", err)
	}
	return t, nil
}

func (s *TheatreService) Get(ctx context.Context, id uint64) (model.Theatre, error) {
	t, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrTheatreNotFound) {
		return model.Theatre{}, ErrTheatreNotFound
	}
	if err != nil {
		return model.Theatre{}, apperr.Internal("load theatre", err)
	}
	return t, nil
}

func (s *TheatreService) List(ctx context.Context) ([]model.Theatre, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list theatres", err)
	}
	return out, nil
}

func (s *TheatreService) Update(ctx context.Context, id uint64, in TheatreInput) (model.Theatre, error) {
	if err := check(in); err != nil {
		return model.Theatre{}, err
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return model.Theatre{}, err
	}
	if err := copier.CopyWithOption(&t, &in, copier.Option{IgnoreEmpty: true}); err != nil {
		return model.Theatre{}, apperr.Internal("apply theatre", err)
	}
	if err := s.store.Update(ctx, &t); err != nil {
		if errors.Is(err, repository.ErrTheatreNotFound) {
			return model.Theatre{}, ErrTheatreNotFound
		}
		return model.Theatre{}, apperr.Internal("update theatre", err)
	}
	return t, nil
}

// Delete refuses to remove a theatre that still hosts shows.
func (s *TheatreService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.shows.CountByTheatre(ctx, id)
	if err != nil {
		return apperr.Internal("count shows", err)
	}
	if n > 0 {
		return ErrTheatreHasShows
	}
	if err := s.store.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return ErrTheatreHasShows
		case errors.Is(err, repository.ErrTheatreNotFound):
			return ErrTheatreNotFound
		}
		return apperr.Internal("delete theatre", err)
	}
	s.log.Info("theatre deleted", zap.Uint64("theatre_id", id))
	return nil
}
