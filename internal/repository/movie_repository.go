package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const movieColumns = `id, title, slug, description, genres, language, release_date, duration,
	cover_image, poster, video, casts, crews, average_rating, number_of_reviews, created_at, updated_at`

// MovieRepo persists movies and their reviews.
type MovieRepo struct{ db *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

func scanMovie(row interface{ Scan(...any) error }) (model.Movie, error) {
	var (
		m                    model.Movie
		genres, casts, crews []byte
	)
	err := row.Scan(&m.ID, &m.Title, &m.Slug, &m.Description, &genres, &m.Language, &m.ReleaseDate,
		&m.Duration, &m.CoverImage, &m.Poster, &m.Video, &casts, &crews, &m.AverageRating,
		&m.NumberOfReviews, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Movie{}, err
	}
	if m.Genres, err = decodeStrings(genres); err != nil {
		return model.Movie{}, err
	}
	if m.Casts, err = decodeCredits(casts); err != nil {
		return model.Movie{}, err
	}
	if m.Crews, err = decodeCredits(crews); err != nil {
		return model.Movie{}, err
	}
	return m, nil
}

func movieJSON(m *model.Movie) (genres, casts, crews []byte, err error) {
	if genres, err = encodeStrings(m.Genres); err != nil {
		return
	}
	if casts, err = encodeCredits(m.Casts); err != nil {
		return
	}
	crews, err = encodeCredits(m.Crews)
	return
}

// Create inserts m and assigns its ID and timestamps.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	genres, casts, crews, err := movieJSON(m)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (title, slug, description, genres, language, release_date, duration,
			cover_image, poster, video, casts, crews, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.Title, m.Slug, m.Description, genres, m.Language, m.ReleaseDate, m.Duration,
		m.CoverImage, m.Poster, m.Video, casts, crews, now, now)
	if err != nil {
		if isMySQLErr(err, errDupEntry) {
			return ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	m.CreatedAt, m.UpdatedAt = now, now
	return nil
}

// Update rewrites every editable column of m. Ratings are owned by AddReview.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	genres, casts, crews, err := movieJSON(m)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`UPDATE movies SET title=?, slug=?, description=?, genres=?, language=?, release_date=?,
			duration=?, cover_image=?, poster=?, video=?, casts=?, crews=?, updated_at=?
		 WHERE id=?`,
		m.Title, m.Slug, m.Description, genres, m.Language, m.ReleaseDate, m.Duration,
		m.CoverImage, m.Poster, m.Video, casts, crews, now, m.ID)
	if err != nil {
		if isMySQLErr(err, errDupEntry) {
			return ErrSlugExists
		}
		return err
	}
	if err := mustAffect(res, ErrMovieNotFound); err != nil {
		return err
	}
	m.UpdatedAt = now
	return nil
}

// Delete removes a movie; favourites and reviews cascade.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id=?", id)
	if err != nil {
		return err
	}
	return mustAffect(res, ErrMovieNotFound)
}

func (r *MovieRepo) getOne(ctx context.Context, where string, arg any) (model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, err
}

func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	return r.getOne(ctx, "id=?", id)
}

func (r *MovieRepo) GetBySlug(ctx context.Context, slug string) (model.Movie, error) {
	return r.getOne(ctx, "slug=?", slug)
}

// SlugExists reports whether another movie than exceptID already uses slug.
func (r *MovieRepo) SlugExists(ctx context.Context, slug string, exceptID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM movies WHERE slug=? AND id<>?", slug, exceptID).Scan(&n)
	return n > 0, err
}

func (r *MovieRepo) query(ctx context.Context, q string, args ...any) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// List returns all movies, newest first.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	return r.query(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY created_at DESC, id DESC")
}

// ListByIDs returns the movies with the given ids in the order of ids.
// Unknown ids are skipped.
func (r *MovieRepo) ListByIDs(ctx context.Context, ids []uint64) ([]model.Movie, error) {
	if len(ids) == 0 {
		return []model.Movie{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := "SELECT " + movieColumns + " FROM movies WHERE id IN (" + placeholders(len(ids)) + ")"
	found, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.Movie, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	out := make([]model.Movie, 0, len(found))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// AddReview stores rv and recomputes the movie's rating aggregates in the
// same transaction.
func (r *MovieRepo) AddReview(ctx context.Context, rv *model.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx,
		"INSERT INTO reviews (movie_id, user_id, rating, comment, created_at) VALUES (?,?,?,?,?)",
		rv.MovieID, rv.UserID, rv.Rating, rv.Comment, now)
	switch {
	case isMySQLErr(err, errDupEntry):
		return ErrAlreadyReviewed
	case isMySQLErr(err, errNoReferencedRow):
		return ErrMovieNotFound
	case err != nil:
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE movies SET
			average_rating=(SELECT COALESCE(AVG(rating),0) FROM reviews WHERE movie_id=?),
			number_of_reviews=(SELECT COUNT(*) FROM reviews WHERE movie_id=?)
		 WHERE id=?`,
		rv.MovieID, rv.MovieID, rv.MovieID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	rv.ID = uint64(id)
	rv.CreatedAt = now
	return nil
}

// ListReviews returns a movie's reviews, newest first.
func (r *MovieRepo) ListReviews(ctx context.Context, movieID uint64) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, movie_id, user_id, rating, comment, created_at FROM reviews WHERE movie_id=? ORDER BY id DESC",
		movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.MovieID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
