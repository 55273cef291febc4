package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const theatreColumns = "id, name, address, seat_rows, seat_cols, created_at, updated_at"

// TheatreRepo persists theatres.
type TheatreRepo struct{ db *sql.DB }

func NewTheatreRepo(db *sql.DB) *TheatreRepo { return &TheatreRepo{db: db} }

func scanTheatre(row interface{ Scan(...any) error }) (model.Theatre, error) {
	var (
		t          model.Theatre
		rows, cols sql.NullInt32
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Address, &rows, &cols, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return model.Theatre{}, err
	}
	t.SeatRows = fromNullInt(rows)
	t.SeatCols = fromNullInt(cols)
	return t, nil
}

func fromNullInt(n sql.NullInt32) *uint32 {
	if !n.Valid {
		return nil
	}
	v := uint32(n.Int32)
	return &v
}

func toNullInt(v *uint32) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func (r *TheatreRepo) Create(ctx context.Context, t *model.Theatre) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO theatres (name, address, seat_rows, seat_cols, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		t.Name, t.Address, toNullInt(t.SeatRows), toNullInt(t.SeatCols), now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.CreatedAt, t.UpdatedAt = now, now
	return nil
}

func (r *TheatreRepo) Update(ctx context.Context, t *model.Theatre) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"UPDATE theatres SET name=?, address=?, seat_rows=?, seat_cols=?, updated_at=? WHERE id=?",
		t.Name, t.Address, toNullInt(t.SeatRows), toNullInt(t.SeatCols), now, t.ID)
	if err != nil {
		return err
	}
	if err := mustAffect(res, ErrTheatreNotFound); err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

// Delete removes a theatre. Shows still pointing at it make the foreign key
// refuse the delete, reported as ErrConflict.
func (r *TheatreRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM theatres WHERE id=?", id)
	if err != nil {
		if isMySQLErr(err, errRowIsReferenced) {
			return ErrConflict
		}
		return err
	}
	return mustAffect(res, ErrTheatreNotFound)
}

func (r *TheatreRepo) GetByID(ctx context.Context, id uint64) (model.Theatre, error) {
	t, err := scanTheatre(r.db.QueryRowContext(ctx, "SELECT "+theatreColumns+" FROM theatres WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Theatre{}, ErrTheatreNotFound
	}
	return t, err
}

// List returns all theatres ordered by name.
func (r *TheatreRepo) List(ctx context.Context) ([]model.Theatre, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+theatreColumns+" FROM theatres ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Theatre{}
	for rows.Next() {
		t, err := scanTheatre(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
