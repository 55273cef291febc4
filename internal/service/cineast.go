package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

var (
	ErrCineastNotFound = apperr.NotFound("cineast not found")
	ErrCineastCredited = apperr.Conflict("cineast is still credited by a movie or show")
)

// CineastInput creates or partially updates a cineast.
type CineastInput struct {
	Name      string `json:"name" validate:"max=160"`
	Image     string `json:"image" validate:"max=500"`
	Biography string `json:"biography" validate:"max=5000"`
}

// CineastService manages people credited by movies and shows.
type CineastService struct {
	store CineastStore
	log   *zap.Logger
}

func NewCineastService(store CineastStore, log *zap.Logger) *CineastService {
	return &CineastService{store: store, log: log.Named("cineasts")}
}

func (s *CineastService) Create(ctx context.Context, in CineastInput) (model.Cineast, error) {
	if err := check(in); err != nil {
		return model.Cineast{}, err
	}
	if in.Name == "" {
		return model.Cineast{}, apperr.Validation("name is required")
	}
	var c model.Cineast
	if err := copier.Copy(&c, &in); err != nil {
		return model.Cineast{}, apperr.Internal("apply cineast", err)
	}
	if err := s.store.Create(ctx, &c); err != nil {
		return model.Cineast{}, apperr.Internal("create cineast", err)
	}
	return c, nil
}

func (s *CineastService) Get(ctx context.Context, id uint64) (model.Cineast, error) {
	c, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrCineastNotFound) {
		return model.Cineast{}, ErrCineastNotFound
	}
	if err != nil {
		return model.Cineast{}, apperr.Internal("load cineast", err)
	}
	return c, nil
}

func (s *CineastService) List(ctx context.Context) ([]model.Cineast, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list cineasts", err)
	}
	return out, nil
}

func (s *CineastService) Update(ctx context.Context, id uint64, in CineastInput) (model.Cineast, error) {
	if err := check(in); err != nil {
		return model.Cineast{}, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return model.Cineast{}, err
	}
	if err := copier.CopyWithOption(&c, &in, copier.Option{IgnoreEmpty: true}); err != nil {
		return model.Cineast{}, apperr.Internal("apply cineast", err)
	}
	if err := s.store.Update(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrCineastNotFound) {
			return model.Cineast{}, ErrCineastNotFound
		}
		return model.Cineast{}, apperr.Internal("update cineast", err)
	}
	return c, nil
}

// Delete refuses to remove a cineast that any movie or show still credits.
func (s *CineastService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	credited, err := s.store.IsCredited(ctx, id)
	if err != nil {
		return apperr.Internal("check credits", err)
	}
	if credited {
		return ErrCineastCredited
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCineastNotFound) {
			return ErrCineastNotFound
		}
		return apperr.Internal("delete cineast", err)
	}
	s.log.Info("cineast deleted", zap.Uint64("cineast_id", id))
	return nil
}

// creditResolver validates and populates credit lists of movies and shows.
type creditResolver struct{ cineasts CineastStore }

func creditIDs(lists ...[]model.Credit) []uint64 {
	seen := map[uint64]bool{}
	var ids []uint64
	for _, l := range lists {
		for _, c := range l {
			if !seen[c.PersonID] {
				seen[c.PersonID] = true
				ids = append(ids, c.PersonID)
			}
		}
	}
	return ids
}

// verify fails with a Validation error naming the first unknown person.
func (r creditResolver) verify(ctx context.Context, lists ...[]model.Credit) error {
	ids := creditIDs(lists...)
	if len(ids) == 0 {
		return nil
	}
	known, err := r.cineasts.Summaries(ctx, ids)
	if err != nil {
		return apperr.Internal("load cineasts", err)
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return apperr.Validation(fmt.Sprintf("cineast %d does not exist", id))
		}
	}
	return nil
}

// populate fills PersonDetails in place. Unknown references stay bare.
func (r creditResolver) populate(ctx context.Context, lists ...[]model.Credit) error {
	ids := creditIDs(lists...)
	if len(ids) == 0 {
		return nil
	}
	known, err := r.cineasts.Summaries(ctx, ids)
	if err != nil {
		return apperr.Internal("load cineasts", err)
	}
	for _, l := range lists {
		for i := range l {
			if sum, ok := known[l[i].PersonID]; ok {
				sum := sum
				l[i].PersonDetails = &sum
			}
		}
	}
	return nil
}
