package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type UserRepo struct{ s *Store }

func (r *UserRepo) emailTaken(email string, except uint64) bool {
	for id, u := range r.s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = repository.NormalizeEmail(u.Email)
	if r.emailTaken(u.Email, 0) {
		return repository.ErrEmailExists
	}
	u.ID = r.s.next("users")
	u.CreatedAt, u.UpdatedAt = now(), now()
	u.LikedMovies = []uint64{}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) get(id uint64) (model.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	u.LikedMovies = cloneIDs(u.LikedMovies)
	return u, nil
}

func (r *UserRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.get(id)
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = repository.NormalizeEmail(email)
	for id, u := range r.s.users {
		if u.Email == email {
			return r.get(id)
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (r *UserRepo) List(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u.LikedMovies = nil
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepo) update(id uint64, fn func(*model.User) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	u.UpdatedAt = now()
	r.s.users[id] = u
	return nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, u *model.User) error {
	u.Email = repository.NormalizeEmail(u.Email)
	return r.update(u.ID, func(cur *model.User) error {
		if r.emailTaken(u.Email, u.ID) {
			return repository.ErrEmailExists
		}
		cur.FullName, cur.Email, cur.Image = u.FullName, u.Email, u.Image
		u.UpdatedAt = now()
		return nil
	})
}

func (r *UserRepo) UpdatePassword(_ context.Context, id uint64, hash string) error {
	return r.update(id, func(u *model.User) error { u.PasswordHash = hash; return nil })
}

func (r *UserRepo) SetRole(_ context.Context, id uint64, role model.Role) error {
	return r.update(id, func(u *model.User) error { u.Role = role; return nil })
}

// Delete removes the user along with the rows MySQL would cascade.
func (r *UserRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.s.users, id)
	for h, t := range r.s.tokens {
		if t.userID == id {
			delete(r.s.tokens, h)
		}
	}
	for bid, b := range r.s.bookings {
		if b.UserID == id {
			if b.Status == model.BookingConfirmed {
				releaseSeats(r.s, b)
			}
			delete(r.s.bookings, bid)
		}
	}
	for rid, rv := range r.s.reviews {
		if rv.UserID == id {
			delete(r.s.reviews, rid)
			recomputeRating(r.s, rv.MovieID)
		}
	}
	return nil
}

func (r *UserRepo) LikedIDs(_ context.Context, userID uint64) ([]uint64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, err := r.get(userID)
	if err != nil {
		return nil, err
	}
	return u.LikedMovies, nil
}

func (r *UserRepo) AddLiked(_ context.Context, userID, movieID uint64) error {
	return r.update(userID, func(u *model.User) error {
		if _, ok := r.s.movies[movieID]; !ok {
			return repository.ErrMovieNotFound
		}
		for _, id := range u.LikedMovies {
			if id == movieID {
				return repository.ErrAlreadyLiked
			}
		}
		u.LikedMovies = append(cloneIDs(u.LikedMovies), movieID)
		return nil
	})
}

func (r *UserRepo) RemoveLiked(_ context.Context, userID, movieID uint64) error {
	return r.update(userID, func(u *model.User) error {
		for i, id := range u.LikedMovies {
			if id == movieID {
				kept := cloneIDs(u.LikedMovies[:i])
				u.LikedMovies = append(kept, u.LikedMovies[i+1:]...)
				return nil
			}
		}
		return repository.ErrNotLiked
	})
}

func (r *UserRepo) ClearLiked(_ context.Context, userID uint64) error {
	err := r.update(userID, func(u *model.User) error { u.LikedMovies = []uint64{}; return nil })
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	return err
}

type TokenRepo struct{ s *Store }

func (r *TokenRepo) StoreRefresh(_ context.Context, userID uint64, hash string, exp time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[hash] = token{userID: userID, exp: exp}
	return nil
}

func (r *TokenRepo) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tokens[hash]
	if !ok || t.revoked != nil || time.Now().UTC().After(t.exp) {
		return 0, repository.ErrTokenInvalid
	}
	return t.userID, nil
}

func (r *TokenRepo) RevokeByHash(_ context.Context, hash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[hash]
	if !ok || t.revoked != nil {
		return false, nil
	}
	at := now()
	t.revoked = &at
	r.s.tokens[hash] = t
	return true, nil
}

func (r *TokenRepo) RevokeAllForUser(_ context.Context, userID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	at := now()
	for h, t := range r.s.tokens {
		if t.userID == userID && t.revoked == nil {
			t.revoked = &at
			r.s.tokens[h] = t
		}
	}
	return nil
}

func (r *TokenRepo) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for h, t := range r.s.tokens {
		if t.exp.Before(cutoff) || (t.revoked != nil && t.revoked.Before(cutoff)) {
			delete(r.s.tokens, h)
			n++
		}
	}
	return n, nil
}
