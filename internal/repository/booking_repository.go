package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const bookingColumns = "id, code, user_id, show_id, seats, total_price, status, created_at, updated_at"

// BookingRepo persists bookings together with the show seat counters.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.Code, &b.UserID, &b.ShowID, &b.Seats, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create reserves b.Seats on the show and inserts the booking in one
// transaction. The seat counter only moves when the show still has room, so
// concurrent bookings can never oversell. TotalPrice is computed from the
// show's current ticket price.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var price float64
	err = tx.QueryRowContext(ctx, "SELECT ticket_price FROM shows WHERE id=? FOR UPDATE", b.ShowID).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrShowNotFound
	}
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE shows SET seats_booked=seats_booked+? WHERE id=? AND seats_booked+?<=total_seats",
		b.Seats, b.ShowID, b.Seats)
	if err != nil {
		return err
	}
	if err := mustAffect(res, ErrSoldOut); err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Second)
	b.TotalPrice = price * float64(b.Seats)
	b.Status = model.BookingConfirmed
	res, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (code, user_id, show_id, seats, total_price, status, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		b.Code, b.UserID, b.ShowID, b.Seats, b.TotalPrice, b.Status, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	b.ID = uint64(id)
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

// Cancel marks a confirmed booking cancelled and returns its seats to the
// show.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) (model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	defer func() { _ = tx.Rollback() }()

	b, err := scanBooking(tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=? FOR UPDATE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	if b.Status == model.BookingCancelled {
		return model.Booking{}, ErrAlreadyCancelled
	}

	now := time.Now().UTC().Truncate(time.Second)
	if _, err := tx.ExecContext(ctx,
		"UPDATE bookings SET status=?, updated_at=? WHERE id=?", model.BookingCancelled, now, id); err != nil {
		return model.Booking{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE shows SET seats_booked=seats_booked-? WHERE id=? AND seats_booked>=?",
		b.Seats, b.ShowID, b.Seats); err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	b.Status = model.BookingCancelled
	b.UpdatedAt = now
	return b, nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.list(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY id DESC", userID)
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, "SELECT "+bookingColumns+" FROM bookings ORDER BY id DESC")
}

// CountConfirmedByShow counts confirmed bookings for a show.
func (r *BookingRepo) CountConfirmedByShow(ctx context.Context, showID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE show_id=? AND status=?", showID, model.BookingConfirmed).Scan(&n)
	return n, err
}
