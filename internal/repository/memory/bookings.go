package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type BookingRepo struct{ s *Store }

// Create admits the booking only if the show still has b.Seats free.
func (r *BookingRepo) Create(_ context.Context, b *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shows[b.ShowID]
	if !ok {
		return repository.ErrShowNotFound
	}
	if sh.SeatsBooked+b.Seats > sh.TotalSeats {
		return repository.ErrSoldOut
	}
	sh.SeatsBooked += b.Seats
	r.s.shows[sh.ID] = sh

	b.ID = r.s.next("bookings")
	b.TotalPrice = sh.TicketPrice * float64(b.Seats)
	b.Status = model.BookingConfirmed
	b.CreatedAt, b.UpdatedAt = now(), now()
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *BookingRepo) Cancel(_ context.Context, id uint64) (model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrBookingNotFound
	}
	if b.Status == model.BookingCancelled {
		return model.Booking{}, repository.ErrAlreadyCancelled
	}
	releaseSeats(r.s, b)
	b.Status = model.BookingCancelled
	b.UpdatedAt = now()
	r.s.bookings[id] = b
	return b, nil
}

// releaseSeats returns a booking's seats to its show. Caller holds the lock.
func releaseSeats(s *Store, b model.Booking) {
	sh, ok := s.shows[b.ShowID]
	if !ok || sh.SeatsBooked < b.Seats {
		return
	}
	sh.SeatsBooked -= b.Seats
	s.shows[sh.ID] = sh
}

func (r *BookingRepo) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrBookingNotFound
	}
	return b, nil
}

func (r *BookingRepo) collect(keep func(model.Booking) bool) []model.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []model.Booking{}
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *BookingRepo) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	return r.collect(func(b model.Booking) bool { return b.UserID == userID }), nil
}

func (r *BookingRepo) ListAll(_ context.Context) ([]model.Booking, error) {
	return r.collect(func(model.Booking) bool { return true }), nil
}

func (r *BookingRepo) CountConfirmedByShow(_ context.Context, showID uint64) (int, error) {
	return len(r.collect(func(b model.Booking) bool {
		return b.ShowID == showID && b.Status == model.BookingConfirmed
	})), nil
}
