package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

func seedShow(t *testing.T, s *Store, seats int, price float64) model.Show {
	t.Helper()
	ctx := context.Background()
	th := &model.Theatre{Name: "Roxy"}
	require.NoError(t, s.Theatres().Create(ctx, th))
	sh := &model.Show{Title: "Late", Date: "2024-06-01", Time: "21:00", TotalSeats: seats, TicketPrice: price, TheatreID: th.ID}
	require.NoError(t, s.Shows().Create(ctx, sh))
	return *sh
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	s := New()
	sh := seedShow(t, s, 10, 5)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		soldOut int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			err := s.Bookings().Create(context.Background(), &model.Booking{UserID: uid, ShowID: sh.ID, Seats: 1})
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				ok++
			case repository.ErrSoldOut:
				soldOut++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(uint64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, soldOut)
	got, err := s.Shows().GetByID(context.Background(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.SeatsBooked)
}

func TestCancelReleasesSeats(t *testing.T) {
	s := New()
	ctx := context.Background()
	sh := seedShow(t, s, 4, 7.5)

	b := &model.Booking{UserID: 1, ShowID: sh.ID, Seats: 3}
	require.NoError(t, s.Bookings().Create(ctx, b))
	assert.Equal(t, 22.5, b.TotalPrice)

	_, err := s.Bookings().Cancel(ctx, b.ID)
	require.NoError(t, err)
	_, err = s.Bookings().Cancel(ctx, b.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyCancelled)

	got, _ := s.Shows().GetByID(ctx, sh.ID)
	assert.Equal(t, 0, got.SeatsBooked)
}

func TestShowUpdateGuards(t *testing.T) {
	s := New()
	ctx := context.Background()
	sh := seedShow(t, s, 5, 1)
	require.NoError(t, s.Bookings().Create(ctx, &model.Booking{UserID: 1, ShowID: sh.ID, Seats: 4}))

	sh.TotalSeats = 3
	assert.ErrorIs(t, s.Shows().Update(ctx, &sh), repository.ErrSeatsBelowBooked)

	sh.TotalSeats = 6
	sh.TheatreID = 999
	assert.ErrorIs(t, s.Shows().Update(ctx, &sh), repository.ErrTheatreNotFound)
}

func TestTheatreDeleteWithShows(t *testing.T) {
	s := New()
	sh := seedShow(t, s, 1, 1)
	assert.ErrorIs(t, s.Theatres().Delete(context.Background(), sh.TheatreID), repository.ErrConflict)
}

func TestFavouritesKeepOrderAndRejectDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := &model.User{Email: "A@x.io", Role: model.RoleUser}
	require.NoError(t, s.Users().Create(ctx, u))
	assert.Equal(t, "a@x.io", u.Email)

	var ids []uint64
	for _, title := range []string{"one", "two", "three"} {
		m := &model.Movie{Title: title, Slug: title}
		require.NoError(t, s.Movies().Create(ctx, m))
		ids = append(ids, m.ID)
	}
	users := s.Users()
	require.NoError(t, users.AddLiked(ctx, u.ID, ids[2]))
	require.NoError(t, users.AddLiked(ctx, u.ID, ids[0]))
	assert.ErrorIs(t, users.AddLiked(ctx, u.ID, ids[0]), repository.ErrAlreadyLiked)
	assert.ErrorIs(t, users.AddLiked(ctx, u.ID, 404), repository.ErrMovieNotFound)

	got, err := users.LikedIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{ids[2], ids[0]}, got)

	require.NoError(t, s.Movies().Delete(ctx, ids[2]))
	got, _ = users.LikedIDs(ctx, u.ID)
	assert.Equal(t, []uint64{ids[0]}, got)
}

func TestReviewsRecomputeRating(t *testing.T) {
	s := New()
	ctx := context.Background()
	m := &model.Movie{Title: "x", Slug: "x"}
	require.NoError(t, s.Movies().Create(ctx, m))

	require.NoError(t, s.Movies().AddReview(ctx, &model.Review{MovieID: m.ID, UserID: 1, Rating: 4}))
	require.NoError(t, s.Movies().AddReview(ctx, &model.Review{MovieID: m.ID, UserID: 2, Rating: 2}))
	assert.ErrorIs(t, s.Movies().AddReview(ctx, &model.Review{MovieID: m.ID, UserID: 2, Rating: 5}), repository.ErrAlreadyReviewed)

	got, _ := s.Movies().GetByID(ctx, m.ID)
	assert.Equal(t, 3.0, got.AverageRating)
	assert.Equal(t, 2, got.NumberOfReviews)
}

func TestCineastIsCredited(t *testing.T) {
	s := New()
	ctx := context.Background()
	c := &model.Cineast{Name: "Keanu"}
	require.NoError(t, s.Cineasts().Create(ctx, c))

	credited, _ := s.Cineasts().IsCredited(ctx, c.ID)
	assert.False(t, credited)

	require.NoError(t, s.Movies().Create(ctx, &model.Movie{Title: "m", Slug: "m", Crews: []model.Credit{{PersonID: c.ID, Role: "Stunts"}}}))
	credited, _ = s.Cineasts().IsCredited(ctx, c.ID)
	assert.True(t, credited)
}

func TestRevokeByHashOnlyOnce(t *testing.T) {
	ctx := context.Background()
	tokens := New().Tokens()
	require.NoError(t, tokens.StoreRefresh(ctx, 3, "h", time.Now().UTC().Add(time.Hour)))

	ok, err := tokens.RevokeByHash(ctx, "h")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tokens.RevokeByHash(ctx, "h")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tokens.RevokeByHash(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
