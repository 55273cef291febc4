// Package service implements the domain operations behind the HTTP API.
// Services depend on the store interfaces below, which the MySQL
// repositories and the in-memory store both satisfy, and report failures as
// apperr kinds.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	SetRole(ctx context.Context, id uint64, role model.Role) error
	Delete(ctx context.Context, id uint64) error
	LikedIDs(ctx context.Context, userID uint64) ([]uint64, error)
	AddLiked(ctx context.Context, userID, movieID uint64) error
	RemoveLiked(ctx context.Context, userID, movieID uint64) error
	ClearLiked(ctx context.Context, userID uint64) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint64) error
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (model.Movie, error)
	GetBySlug(ctx context.Context, slug string) (model.Movie, error)
	SlugExists(ctx context.Context, slug string, exceptID uint64) (bool, error)
	List(ctx context.Context) ([]model.Movie, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]model.Movie, error)
	AddReview(ctx context.Context, rv *model.Review) error
	ListReviews(ctx context.Context, movieID uint64) ([]model.Review, error)
}

type ShowStore interface {
	Create(ctx context.Context, s *model.Show) error
	Update(ctx context.Context, s *model.Show) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (model.Show, error)
	List(ctx context.Context, f model.ShowFilter) ([]model.Show, error)
	CountByTheatre(ctx context.Context, theatreID uint64) (int, error)
}

type TheatreStore interface {
	Create(ctx context.Context, t *model.Theatre) error
	Update(ctx context.Context, t *model.Theatre) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (model.Theatre, error)
	List(ctx context.Context) ([]model.Theatre, error)
}

type CineastStore interface {
	Create(ctx context.Context, c *model.Cineast) error
	Update(ctx context.Context, c *model.Cineast) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (model.Cineast, error)
	List(ctx context.Context) ([]model.Cineast, error)
	Summaries(ctx context.Context, ids []uint64) (map[uint64]model.CineastSummary, error)
	IsCredited(ctx context.Context, id uint64) (bool, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	Cancel(ctx context.Context, id uint64) (model.Booking, error)
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	CountConfirmedByShow(ctx context.Context, showID uint64) (int, error)
}

// Stores bundles one implementation of every store.
type Stores struct {
	Users    UserStore
	Tokens   TokenStore
	Movies   MovieStore
	Shows    ShowStore
	Theatres TheatreStore
	Cineasts CineastStore
	Bookings BookingStore
}

// BookingPublisher announces confirmed bookings. Publishing is best effort.
type BookingPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// Actor is the authenticated caller of a privileged operation.
type Actor struct {
	ID   uint64
	Role model.Role
}

// ErrForbidden is returned when the actor's role lacks a capability.
var ErrForbidden = apperr.Forbidden("insufficient permissions")

func (a Actor) require(c model.Capability) error {
	if !a.Role.Can(c) {
		return ErrForbidden
	}
	return nil
}

// Options configures New.
type Options struct {
	Auth      AuthConfig
	SiteURL   string
	Publisher BookingPublisher // may be nil
	Logger    *zap.Logger
}

// Service groups the domain services.
type Service struct {
	Users    *UserService
	Movies   *MovieService
	Shows    *ShowService
	Theatres *TheatreService
	Cineasts *CineastService
	Bookings *BookingService
}

// New wires every domain service over st.
func New(st Stores, opt Options) *Service {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	credits := creditResolver{cineasts: st.Cineasts}
	return &Service{
		Users:    NewUserService(st.Users, st.Tokens, st.Movies, opt.Auth, log),
		Movies:   NewMovieService(st.Movies, credits, log),
		Shows:    NewShowService(st.Shows, st.Theatres, st.Bookings, credits, log),
		Theatres: NewTheatreService(st.Theatres, st.Shows, log),
		Cineasts: NewCineastService(st.Cineasts, log),
		Bookings: NewBookingService(st.Bookings, st.Shows, st.Theatres, st.Users, opt.Publisher, opt.SiteURL, log),
	}
}
