package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/browse"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

var (
	ErrMovieNotFound   = apperr.NotFound("movie not found")
	ErrAlreadyReviewed = apperr.Conflict("movie already reviewed")
)

// MovieInput creates or partially updates a movie. On update, empty fields
// keep their stored value; an explicit empty list clears genres or credits.
type MovieInput struct {
	Title       string         `json:"title" validate:"max=200"`
	Description string         `json:"description" validate:"max=5000"`
	Genres      []string       `json:"genres" validate:"omitempty,dive,required,max=40"`
	Language    string         `json:"language" validate:"max=60"`
	ReleaseDate string         `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	Duration    int            `json:"duration" validate:"gte=0,lte=1000"`
	CoverImage  string         `json:"coverImage" validate:"max=500"`
	Poster      string         `json:"poster" validate:"max=500"`
	Video       string         `json:"video" validate:"max=500"`
	Casts       []model.Credit `json:"casts" validate:"omitempty,dive"`
	Crews       []model.Credit `json:"crews" validate:"omitempty,dive"`
}

// ReviewInput is the body of POST /movies/:id/reviews.
type ReviewInput struct {
	Rating  float64 `json:"rating" validate:"gte=0,lte=5"`
	Comment string  `json:"comment" validate:"max=2000"`
}

// MovieService manages the movie catalog and reviews.
type MovieService struct {
	store   MovieStore
	credits creditResolver
	log     *zap.Logger
}

func NewMovieService(store MovieStore, credits creditResolver, log *zap.Logger) *MovieService {
	return &MovieService{store: store, credits: credits, log: log.Named("movies")}
}

func (s *MovieService) Create(ctx context.Context, in MovieInput) (model.Movie, error) {
	if err := check(in); err != nil {
		return model.Movie{}, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.Movie{}, apperr.Validation("title is required")
	}
	if err := s.credits.verify(ctx, in.Casts, in.Crews); err != nil {
		return model.Movie{}, err
	}
	var m model.Movie
	if err := copier.Copy(&m, &in); err != nil {
		return model.Movie{}, apperr.Internal("apply movie", err)
	}
	if err := s.save(ctx, &m, true, true); err != nil {
		return model.Movie{}, err
	}
	s.log.Info("movie created", zap.Uint64("movie_id", m.ID), zap.String("slug", m.Slug))
	return m, nil
}

// save writes m, first assigning a unique slug when reslug is set. A slug
// claimed concurrently by another writer is retried once.
func (s *MovieService) save(ctx context.Context, m *model.Movie, create, reslug bool) error {
	for attempt := 0; attempt < 2; attempt++ {
		var err error
		if reslug {
			if m.Slug, err = s.uniqueSlug(ctx, m.Title, m.ID); err != nil {
				return err
			}
		}
		if create {
			err = s.store.Create(ctx, m)
		} else {
			err = s.store.Update(ctx, m)
		}
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrSlugExists):
			reslug = true
			continue
		case errors.Is(err, repository.ErrMovieNotFound):
			return ErrMovieNotFound
		default:
			return apperr.Internal("save movie", err)
		}
	}
	return apperr.Conflict("movie slug already taken")
}

// uniqueSlug derives a slug from title, appending -2, -3, ... on collision.
// Numeric titles are prefixed so the slug never reads as an id.
func (s *MovieService) uniqueSlug(ctx context.Context, title string, exceptID uint64) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "movie"
	}
	// Get treats an all-digit value as an id.
	if _, err := strconv.ParseUint(base, 10, 64); err == nil {
		base = "movie-" + base
	}
	candidate := base
	for n := 2; ; n++ {
		taken, err := s.store.SlugExists(ctx, candidate, exceptID)
		if err != nil {
			return "", apperr.Internal("check slug", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *MovieService) load(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return model.Movie{}, ErrMovieNotFound
	}
	if err != nil {
		return model.Movie{}, apperr.Internal("load movie", err)
	}
	return m, nil
}

// Get resolves a numeric id or a slug and populates credit details.
func (s *MovieService) Get(ctx context.Context, idOrSlug string) (model.Movie, error) {
	var (
		m   model.Movie
		err error
	)
	if id, perr := strconv.ParseUint(idOrSlug, 10, 64); perr == nil {
		m, err = s.store.GetByID(ctx, id)
	} else {
		m, err = s.store.GetBySlug(ctx, idOrSlug)
	}
	if errors.Is(err, repository.ErrMovieNotFound) {
		return model.Movie{}, ErrMovieNotFound
	}
	if err != nil {
		return model.Movie{}, apperr.Internal("load movie", err)
	}
	if err := s.credits.populate(ctx, m.Casts, m.Crews); err != nil {
		return model.Movie{}, err
	}
	return m, nil
}

// Browse lists movies through the filter/sort/window pipeline.
func (s *MovieService) Browse(ctx context.Context, q browse.Query) (browse.Result, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return browse.Result{}, apperr.Internal("list movies", err)
	}
	return browse.Apply(all, q), nil
}

// Update applies the non-empty fields of in. A changed title re-derives the
// slug.
func (s *MovieService) Update(ctx context.Context, id uint64, in MovieInput) (model.Movie, error) {
	if err := check(in); err != nil {
		return model.Movie{}, err
	}
	m, err := s.load(ctx, id)
	if err != nil {
		return model.Movie{}, err
	}
	if err := s.credits.verify(ctx, in.Casts, in.Crews); err != nil {
		return model.Movie{}, err
	}
	oldTitle := m.Title
	if err := copier.CopyWithOption(&m, &in, copier.Option{IgnoreEmpty: true}); err != nil {
		return model.Movie{}, apperr.Internal("apply movie", err)
	}
	if err := s.save(ctx, &m, false, m.Title != oldTitle); err != nil {
		return model.Movie{}, err
	}
	return m, nil
}

func (s *MovieService) Delete(ctx context.Context, id uint64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return ErrMovieNotFound
		}
		return apperr.Internal("delete movie", err)
	}
	s.log.Info("movie deleted", zap.Uint64("movie_id", id))
	return nil
}

// AddReview records the caller's single review of a movie; the movie's
// averageRating and numberOfReviews follow.
func (s *MovieService) AddReview(ctx context.Context, userID, movieID uint64, in ReviewInput) (model.Review, error) {
	if err := check(in); err != nil {
		return model.Review{}, err
	}
	rv := model.Review{MovieID: movieID, UserID: userID, Rating: in.Rating, Comment: in.Comment}
	if err := s.store.AddReview(ctx, &rv); err != nil {
		switch {
		case errors.Is(err, repository.ErrMovieNotFound):
			return model.Review{}, ErrMovieNotFound
		case errors.Is(err, repository.ErrAlreadyReviewed):
			return model.Review{}, ErrAlreadyReviewed
		}
		return model.Review{}, apperr.Internal("add review", err)
	}
	return rv, nil
}

func (s *MovieService) ListReviews(ctx context.Context, movieID uint64) ([]model.Review, error) {
	if _, err := s.load(ctx, movieID); err != nil {
		return nil, err
	}
	out, err := s.store.ListReviews(ctx, movieID)
	if err != nil {
		return nil, apperr.Internal("list reviews", err)
	}
	return out, nil
}
