package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO users")).
		WithArgs("Ann", "ann@example.com", "hash", "", "USER", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	u := &model.User{FullName: "Ann", Email: "  Ann@Example.COM ", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, []uint64{}, u.LikedMovies)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewUserRepo(db).Create(context.Background(), &model.User{Email: "a@b.c", Role: model.RoleUser})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserGetByIDLoadsFavourites(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(q("FROM users WHERE id=?")).WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "password_hash", "image", "role", "created_at", "updated_at"}).
			AddRow(3, "Bo", "bo@example.com", "h", "", "ADMIN", now, now))
	mock.ExpectQuery(q("SELECT movie_id FROM user_liked_movies")).WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"movie_id"}).AddRow(9).AddRow(4))

	u, err := NewUserRepo(db).GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, []uint64{9, 4}, u.LikedMovies)
}

func TestUserGetByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE email=?")).WithArgs("x@y.z").WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepo(db).GetByEmail(context.Background(), "X@y.z")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddLikedErrors(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	mock.ExpectExec(q("INSERT INTO user_liked_movies")).WithArgs(uint64(1), uint64(2)).
		WillReturnError(&mysql.MySQLError{Number: 1062})
	mock.ExpectExec(q("INSERT INTO user_liked_movies")).WithArgs(uint64(1), uint64(99)).
		WillReturnError(&mysql.MySQLError{Number: 1452})

	assert.ErrorIs(t, repo.AddLiked(context.Background(), 1, 2), ErrAlreadyLiked)
	assert.ErrorIs(t, repo.AddLiked(context.Background(), 1, 99), ErrMovieNotFound)
}

func TestRemoveLikedMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM user_liked_movies WHERE user_id=? AND movie_id=?")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewUserRepo(db).RemoveLiked(context.Background(), 1, 2), ErrNotLiked)
}

func TestValidateRefresh(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	future := time.Now().UTC().Add(time.Hour)
	past := time.Now().UTC().Add(-time.Hour)
	cols := []string{"user_id", "expires_at", "revoked_at"}

	mock.ExpectQuery(q("FROM refresh_tokens")).WithArgs("good").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, future, nil))
	mock.ExpectQuery(q("FROM refresh_tokens")).WithArgs("old").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, past, nil))
	mock.ExpectQuery(q("FROM refresh_tokens")).WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, future, past))
	mock.ExpectQuery(q("FROM refresh_tokens")).WithArgs("none").WillReturnError(sql.ErrNoRows)

	id, err := repo.ValidateRefresh(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
	for _, h := range []string{"old", "revoked", "none"} {
		_, err := repo.ValidateRefresh(context.Background(), h)
		assert.ErrorIs(t, err, ErrTokenInvalid, h)
	}
}

func TestRevokeByHashReportsRevocation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	mock.ExpectExec(q("UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs("h").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs("h").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.RevokeByHash(context.Background(), "h")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.RevokeByHash(context.Background(), "h")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPurgeExpired(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM refresh_tokens")).WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewTokenRepo(db).PurgeExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

var movieCols = []string{"id", "title", "slug", "description", "genres", "language", "release_date", "duration",
	"cover_image", "poster", "video", "casts", "crews", "average_rating", "number_of_reviews", "created_at", "updated_at"}

func movieRow(rows *sqlmock.Rows, id int, title string) *sqlmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(id, title, title, "", `["Comedy"]`, "en", "2020-01-01", 100, "", "", "",
		`[{"person":1,"role":"Lead"}]`, `[]`, 4.5, 2, now, now)
}

func TestMovieGetDecodesJSONColumns(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM movies WHERE slug=?")).WithArgs("matrix").
		WillReturnRows(movieRow(sqlmock.NewRows(movieCols), 1, "matrix"))

	m, err := NewMovieRepo(db).GetBySlug(context.Background(), "matrix")
	require.NoError(t, err)
	assert.Equal(t, []string{"Comedy"}, m.Genres)
	require.Len(t, m.Casts, 1)
	assert.Equal(t, uint64(1), m.Casts[0].PersonID)
	assert.Empty(t, m.Crews)
}

func TestMovieListByIDsKeepsRequestedOrder(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows(movieCols)
	movieRow(rows, 1, "a")
	movieRow(rows, 2, "b")
	mock.ExpectQuery(q("FROM movies WHERE id IN (?,?,?)")).WithArgs(uint64(2), uint64(5), uint64(1)).
		WillReturnRows(rows)

	ms, err := NewMovieRepo(db).ListByIDs(context.Background(), []uint64{2, 5, 1})
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, uint64(2), ms[0].ID)
	assert.Equal(t, uint64(1), ms[1].ID)
}

func TestMovieCreateStripsPersonDetails(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO movies")).
		WithArgs("T", "t", "", []byte(`["Drama"]`), "", "", 0, "", "", "",
			[]byte(`[{"person":4,"role":"Lead"}]`), []byte(`[]`), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	m := &model.Movie{Title: "T", Slug: "t", Genres: []string{"Drama"},
		Casts: []model.Credit{{PersonID: 4, Role: "Lead", PersonDetails: &model.CineastSummary{ID: 4, Name: "X"}}}}
	require.NoError(t, NewMovieRepo(db).Create(context.Background(), m))
	assert.Equal(t, uint64(11), m.ID)
}

func TestAddReviewDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO reviews")).WillReturnError(&mysql.MySQLError{Number: 1062})
	mock.ExpectRollback()

	err := NewMovieRepo(db).AddReview(context.Background(), &model.Review{MovieID: 1, UserID: 2, Rating: 4})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestShowUpdateBelowBooked(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("UPDATE shows SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT seats_booked FROM shows WHERE id=?")).WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"seats_booked"}).AddRow(10))

	err := NewShowRepo(db).Update(context.Background(), &model.Show{ID: 3, TotalSeats: 5, TheatreID: 1})
	assert.ErrorIs(t, err, ErrSeatsBelowBooked)
}

func TestShowListBuildsFilters(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM shows WHERE theatre_id=? AND show_date=? AND LOWER(title) LIKE ? ORDER BY")).
		WithArgs(uint64(2), "2024-05-01", `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewShowRepo(db).List(context.Background(), model.ShowFilter{TheatreID: 2, Date: "2024-05-01", Title: "50%"})
	require.NoError(t, err)
}

func TestTheatreDeleteReferenced(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM theatres")).WillReturnError(&mysql.MySQLError{Number: 1451})

	assert.ErrorIs(t, NewTheatreRepo(db).Delete(context.Background(), 1), ErrConflict)
}

func TestBookingCreate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT ticket_price FROM shows WHERE id=? FOR UPDATE")).WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_price"}).AddRow(12.5))
	mock.ExpectExec(q("UPDATE shows SET seats_booked=seats_booked+? WHERE id=? AND seats_booked+?<=total_seats")).
		WithArgs(2, uint64(4), 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO bookings")).
		WithArgs("BK-1", uint64(9), uint64(4), 2, 25.0, model.BookingConfirmed, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(30, 1))
	mock.ExpectCommit()

	b := &model.Booking{Code: "BK-1", UserID: 9, ShowID: 4, Seats: 2}
	require.NoError(t, NewBookingRepo(db).Create(context.Background(), b))
	assert.Equal(t, uint64(30), b.ID)
	assert.Equal(t, 25.0, b.TotalPrice)
	assert.Equal(t, model.BookingConfirmed, b.Status)
}

func TestBookingCreateSoldOut(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT ticket_price FROM shows")).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_price"}).AddRow(10.0))
	mock.ExpectExec(q("UPDATE shows SET seats_booked=seats_booked+?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewBookingRepo(db).Create(context.Background(), &model.Booking{ShowID: 1, Seats: 3})
	assert.ErrorIs(t, err, ErrSoldOut)
}

func TestBookingCreateUnknownShow(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT ticket_price FROM shows")).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := NewBookingRepo(db).Create(context.Background(), &model.Booking{ShowID: 1, Seats: 1})
	assert.ErrorIs(t, err, ErrShowNotFound)
}

func TestBookingCancelTwice(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM bookings WHERE id=? FOR UPDATE")).WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "user_id", "show_id", "seats", "total_price", "status", "created_at", "updated_at"}).
			AddRow(5, "BK-5", 1, 2, 3, 30.0, model.BookingCancelled, now, now))
	mock.ExpectRollback()

	_, err := NewBookingRepo(db).Cancel(context.Background(), 5)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestBookingCancelReleasesSeats(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM bookings WHERE id=? FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "user_id", "show_id", "seats", "total_price", "status", "created_at", "updated_at"}).
			AddRow(5, "BK-5", 1, 2, 3, 30.0, model.BookingConfirmed, now, now))
	mock.ExpectExec(q("UPDATE bookings SET status=?")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE shows SET seats_booked=seats_booked-?")).WithArgs(3, uint64(2), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := NewBookingRepo(db).Cancel(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, b.Status)
}
