package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const userColumns = "id, full_name, email, password_hash, image, role, created_at, updated_at"

// UserRepo persists accounts and their favourite movies.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts u and assigns its ID and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (full_name, email, password_hash, image, role, created_at, updated_at) VALUES (?,?,?,?,?,?,?)",
		u.FullName, u.Email, u.PasswordHash, u.Image, string(u.Role), now, now)
	if err != nil {
		if isMySQLErr(err, errDupEntry) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.CreatedAt, u.UpdatedAt = now, now
	if u.LikedMovies == nil {
		u.LikedMovies = []uint64{}
	}
	return nil
}

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Image, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	return u, nil
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.LikedMovies, err = r.LikedIDs(ctx, u.ID)
	return u, err
}

// GetByID fetches a user with its favourites.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "id=?", id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "email=?", NormalizeEmail(email))
}

// List returns every user ordered by id. Favourites are not loaded.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile writes name, email and image.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=?, email=?, image=?, updated_at=? WHERE id=?",
		u.FullName, u.Email, u.Image, now, u.ID)
	if err != nil {
		if isMySQLErr(err, errDupEntry) {
			return ErrEmailExists
		}
		return err
	}
	if err := mustAffect(res, ErrUserNotFound); err != nil {
		return err
	}
	u.UpdatedAt = now
	return nil
}

// UpdatePassword replaces the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=? WHERE id=?",
		hash, time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return err
	}
	return mustAffect(res, ErrUserNotFound)
}

// SetRole changes the user's role.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role model.Role) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, updated_at=? WHERE id=?",
		string(role), time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return err
	}
	return mustAffect(res, ErrUserNotFound)
}

// Delete removes the user. Tokens, favourites, reviews and bookings cascade.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return mustAffect(res, ErrUserNotFound)
}

// LikedIDs lists the user's favourite movie IDs in the order they were added.
func (r *UserRepo) LikedIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT movie_id FROM user_liked_movies WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddLiked appends movieID to the favourites. A duplicate yields
// ErrAlreadyLiked; an unknown movie yields ErrMovieNotFound.
func (r *UserRepo) AddLiked(ctx context.Context, userID, movieID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_liked_movies (user_id, movie_id) VALUES (?,?)", userID, movieID)
	switch {
	case err == nil:
		return nil
	case isMySQLErr(err, errDupEntry):
		return ErrAlreadyLiked
	case isMySQLErr(err, errNoReferencedRow):
		return ErrMovieNotFound
	default:
		return err
	}
}

// RemoveLiked drops one favourite.
func (r *UserRepo) RemoveLiked(ctx context.Context, userID, movieID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_liked_movies WHERE user_id=? AND movie_id=?", userID, movieID)
	if err != nil {
		return err
	}
	return mustAffect(res, ErrNotLiked)
}

// ClearLiked empties the favourites.
func (r *UserRepo) ClearLiked(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM user_liked_movies WHERE user_id=?", userID)
	return err
}

// mustAffect maps a zero-row result to notFound.
func mustAffect(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
