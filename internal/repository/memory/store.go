// Package memory is a mutex-guarded, process-local implementation of every
// persistence store. It backs APP_STORAGE=memory and the service tests, and
// mirrors the sentinel errors of the MySQL repositories.
package memory

import (
	"sync"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

type token struct {
	userID  uint64
	exp     time.Time
	revoked *time.Time
}

// Store holds all tables behind a single lock so that cross-table writes
// (a booking and its show's seat counter) stay atomic.
type Store struct {
	mu sync.RWMutex

	seq map[string]uint64

	users    map[uint64]model.User
	tokens   map[string]token
	movies   map[uint64]model.Movie
	reviews  map[uint64]model.Review
	shows    map[uint64]model.Show
	theatres map[uint64]model.Theatre
	cineasts map[uint64]model.Cineast
	bookings map[uint64]model.Booking
}

// New returns an empty store.
func New() *Store {
	return &Store{
		seq:      map[string]uint64{},
		users:    map[uint64]model.User{},
		tokens:   map[string]token{},
		movies:   map[uint64]model.Movie{},
		reviews:  map[uint64]model.Review{},
		shows:    map[uint64]model.Show{},
		theatres: map[uint64]model.Theatre{},
		cineasts: map[uint64]model.Cineast{},
		bookings: map[uint64]model.Booking{},
	}
}

func (s *Store) next(table string) uint64 {
	s.seq[table]++
	return s.seq[table]
}

func now() time.Time { return time.Now().UTC().Truncate(time.Second) }

// Users returns the user store view.
func (s *Store) Users() *UserRepo { return &UserRepo{s} }

// Tokens returns the refresh token store view.
func (s *Store) Tokens() *TokenRepo { return &TokenRepo{s} }

// Movies returns the movie store view.
func (s *Store) Movies() *MovieRepo { return &MovieRepo{s} }

// Shows returns the show store view.
func (s *Store) Shows() *ShowRepo { return &ShowRepo{s} }

// Theatres returns the theatre store view.
func (s *Store) Theatres() *TheatreRepo { return &TheatreRepo{s} }

// Cineasts returns the cineast store view.
func (s *Store) Cineasts() *CineastRepo { return &CineastRepo{s} }

// Bookings returns the booking store view.
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s} }

func cloneIDs(ids []uint64) []uint64 {
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

func cloneStrings(v []string) []string {
	out := make([]string, len(v))
	copy(out, v)
	return out
}

func cloneCredits(v []model.Credit) []model.Credit {
	out := make([]model.Credit, 0, len(v))
	for _, c := range v {
		out = append(out, model.Credit{PersonID: c.PersonID, Role: c.Role})
	}
	return out
}
