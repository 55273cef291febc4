package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const showColumns = `id, title, description, poster, language, show_date, show_time, ticket_price,
	total_seats, seats_booked, theatre_id, casts, crews, created_at, updated_at`

// ShowRepo persists shows. Seat counters are changed only through
// BookingRepo so that inventory and bookings move together.
type ShowRepo struct{ db *sql.DB }

func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

func scanShow(row interface{ Scan(...any) error }) (model.Show, error) {
	var (
		s            model.Show
		casts, crews []byte
	)
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Poster, &s.Language, &s.Date, &s.Time,
		&s.TicketPrice, &s.TotalSeats, &s.SeatsBooked, &s.TheatreID, &casts, &crews,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.Show{}, err
	}
	if s.Casts, err = decodeCredits(casts); err != nil {
		return model.Show{}, err
	}
	if s.Crews, err = decodeCredits(crews); err != nil {
		return model.Show{}, err
	}
	return s, nil
}

// Create inserts s. A dangling theatre reference yields ErrTheatreNotFound.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	casts, err := encodeCredits(s.Casts)
	if err != nil {
		return err
	}
	crews, err := encodeCredits(s.Crews)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shows (title, description, poster, language, show_date, show_time, ticket_price,
			total_seats, seats_booked, theatre_id, casts, crews, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,0,?,?,?,?,?)`,
		s.Title, s.Description, s.Poster, s.Language, s.Date, s.Time, s.TicketPrice,
		s.TotalSeats, s.TheatreID, casts, crews, now, now)
	if err != nil {
		if isMySQLErr(err, errNoReferencedRow) {
			return ErrTheatreNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.SeatsBooked = 0
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

// Update rewrites the editable columns of s. The write is refused with
// ErrSeatsBelowBooked when TotalSeats would drop below the booked count.
func (r *ShowRepo) Update(ctx context.Context, s *model.Show) error {
	casts, err := encodeCredits(s.Casts)
	if err != nil {
		return err
	}
	crews, err := encodeCredits(s.Crews)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`UPDATE shows SET title=?, description=?, poster=?, language=?, show_date=?, show_time=?,
			ticket_price=?, total_seats=?, theatre_id=?, casts=?, crews=?, updated_at=?
		 WHERE id=? AND seats_booked<=?`,
		s.Title, s.Description, s.Poster, s.Language, s.Date, s.Time, s.TicketPrice,
		s.TotalSeats, s.TheatreID, casts, crews, now, s.ID, s.TotalSeats)
	if err != nil {
		if isMySQLErr(err, errNoReferencedRow) {
			return ErrTheatreNotFound
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var booked int
		err := r.db.QueryRowContext(ctx, "SELECT seats_booked FROM shows WHERE id=?", s.ID).Scan(&booked)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShowNotFound
		}
		if err != nil {
			return err
		}
		return ErrSeatsBelowBooked
	}
	s.UpdatedAt = now
	return nil
}

// Delete removes a show. Bookings cascade, so callers check for confirmed
// bookings first.
func (r *ShowRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM shows WHERE id=?", id)
	if err != nil {
		return err
	}
	return mustAffect(res, ErrShowNotFound)
}

// GetByID retrieves a show or ErrShowNotFound.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (model.Show, error) {
	s, err := scanShow(r.db.QueryRowContext(ctx, "SELECT "+showColumns+" FROM shows WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Show{}, ErrShowNotFound
	}
	return s, err
}

// List returns shows matching f ordered by date and time.
func (r *ShowRepo) List(ctx context.Context, f model.ShowFilter) ([]model.Show, error) {
	var (
		where []string
		args  []any
	)
	if f.TheatreID != 0 {
		where = append(where, "theatre_id=?")
		args = append(args, f.TheatreID)
	}
	if f.Date != "" {
		where = append(where, "show_date=?")
		args = append(args, f.Date)
	}
	if t := strings.TrimSpace(f.Title); t != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(t))+"%")
	}
	q := "SELECT " + showColumns + " FROM shows"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY show_date, show_time, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Show{}
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountByTheatre counts the shows scheduled at a theatre.
func (r *ShowRepo) CountByTheatre(ctx context.Context, theatreID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM shows WHERE theatre_id=?", theatreID).Scan(&n)
	return n, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
