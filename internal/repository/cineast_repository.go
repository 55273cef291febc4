package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const cineastColumns = "id, name, image, biography, created_at, updated_at"

// CineastRepo persists cineasts and answers credit lookups against the
// JSON credit columns of movies and shows.
type CineastRepo struct{ db *sql.DB }

func NewCineastRepo(db *sql.DB) *CineastRepo { return &CineastRepo{db: db} }

func scanCineast(row interface{ Scan(...any) error }) (model.Cineast, error) {
	var c model.Cineast
	err := row.Scan(&c.ID, &c.Name, &c.Image, &c.Biography, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *CineastRepo) Create(ctx context.Context, c *model.Cineast) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO cineasts (name, image, biography, created_at, updated_at) VALUES (?,?,?,?,?)",
		c.Name, c.Image, c.Biography, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (r *CineastRepo) Update(ctx context.Context, c *model.Cineast) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"UPDATE cineasts SET name=?, image=?, biography=?, updated_at=? WHERE id=?",
		c.Name, c.Image, c.Biography, now, c.ID)
	if err != nil {
		return err
	}
	if err := mustAffect(res, ErrCineastNotFound); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

func (r *CineastRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cineasts WHERE id=?", id)
	if err != nil {
		return err
	}
	return mustAffect(res, ErrCineastNotFound)
}

func (r *CineastRepo) GetByID(ctx context.Context, id uint64) (model.Cineast, error) {
	c, err := scanCineast(r.db.QueryRowContext(ctx, "SELECT "+cineastColumns+" FROM cineasts WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Cineast{}, ErrCineastNotFound
	}
	return c, err
}

func (r *CineastRepo) List(ctx context.Context) ([]model.Cineast, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+cineastColumns+" FROM cineasts ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Cineast{}
	for rows.Next() {
		c, err := scanCineast(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Summaries returns name and image for each known id.
func (r *CineastRepo) Summaries(ctx context.Context, ids []uint64) (map[uint64]model.CineastSummary, error) {
	out := make(map[uint64]model.CineastSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, image FROM cineasts WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s model.CineastSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Image); err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}

// IsCredited reports whether any movie or show lists the cineast in its
// cast or crew.
func (r *CineastRepo) IsCredited(ctx context.Context, id uint64) (bool, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM movies WHERE JSON_CONTAINS(casts, JSON_OBJECT('person', ?)) OR JSON_CONTAINS(crews, JSON_OBJECT('person', ?))) +
		(SELECT COUNT(*) FROM shows  WHERE JSON_CONTAINS(casts, JSON_OBJECT('person', ?)) OR JSON_CONTAINS(crews, JSON_OBJECT('person', ?)))`
	var n int
	if err := r.db.QueryRowContext(ctx, q, id, id, id, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
