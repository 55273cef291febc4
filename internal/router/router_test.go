package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/repository/memory"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

const secret = "router-secret"

type api struct {
	t   *testing.T
	e   *echo.Echo
	svc *service.Service
}

func newAPI(t *testing.T) *api {
	t.Helper()
	st := memory.New()
	svc := service.New(service.Stores{
		Users: st.Users(), Tokens: st.Tokens(), Movies: st.Movies(), Shows: st.Shows(),
		Theatres: st.Theatres(), Cineasts: st.Cineasts(), Bookings: st.Bookings(),
	}, service.Options{
		Auth:   service.AuthConfig{Secret: secret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: bcrypt.MinCost},
		Logger: zap.NewNop(),
	})

	e := echo.New()
	e.Validator = handler.Validator{}
	e.HTTPErrorHandler = handler.ErrorHandler(zap.NewNop())
	router.Register(e, router.Deps{
		JWTSecret: secret,
		Users:     handler.NewUserHandler(svc.Users),
		Movies:    handler.NewMovieHandler(svc.Movies),
		Shows:     handler.NewShowHandler(svc.Shows),
		Theatres:  handler.NewTheatreHandler(svc.Theatres),
		Cineasts:  handler.NewCineastHandler(svc.Cineasts),
		Bookings:  handler.NewBookingHandler(svc.Bookings),
	})
	return &api{t: t, e: e, svc: svc}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

type session struct {
	ID      uint64 `json:"_id"`
	Token   string `json:"token"`
	Refresh string `json:"refreshToken"`
	IsAdmin bool   `json:"isAdmin"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]any](t, rec)["message"].(string)
}

func (a *api) register(email string) session {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/users", "", map[string]any{
		"fullName": "Test " + email, "email": email, "password": "secret1",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[session](a.t, rec)
}

func (a *api) owner() session {
	a.t.Helper()
	require.NoError(a.t, a.svc.Users.EnsureOwner(context.Background(), "owner@example.com", "ownerpass"))
	rec := a.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "owner@example.com", "password": "ownerpass"})
	require.Equal(a.t, http.StatusOK, rec.Code)
	return decode[session](a.t, rec)
}

func TestRootAndHealth(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is running...", rec.Body.String())

	rec = a.do(http.MethodGet, "/healthz", "", nil)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRegisterLoginAndProfile(t *testing.T) {
	a := newAPI(t)
	s := a.register("ann@example.com")
	assert.NotEmpty(t, s.Token)

	rec := a.do(http.MethodPost, "/api/users", "", map[string]any{"fullName": "x", "email": "ann@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email already registered", message(t, rec))

	rec = a.do(http.MethodPost, "/api/users", "", `{"fullName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/users", "", map[string]any{"fullName": "x", "email": "bad", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "ann@example.com", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid password", message(t, rec))

	rec = a.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "nobody@example.com", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "user does not exist", message(t, rec))

	rec = a.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPut, "/api/users", s.Token, map[string]string{"fullName": "Ann B"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "Ann B", updated["fullName"])
	assert.Equal(t, "ann@example.com", updated["email"])

	rec = a.do(http.MethodPut, "/api/users/password", s.Token, map[string]string{"oldPassword": "nope!!", "newPassword": "secret2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid old password", message(t, rec))

	rec = a.do(http.MethodPost, "/api/users/refresh", "", map[string]string{"refreshToken": s.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodPost, "/api/users/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminGrantAndProtection(t *testing.T) {
	a := newAPI(t)
	owner := a.owner()
	user := a.register("u@example.com")

	rec := a.do(http.MethodPost, "/api/users", "", map[string]any{"fullName": "x", "email": "x@example.com", "password": "secret1", "isAdmin": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/api/users", owner.Token, map[string]any{"fullName": "Ad", "email": "ad@example.com", "password": "secret1", "isAdmin": true})
	require.Equal(t, http.StatusCreated, rec.Code)
	admin := decode[session](t, rec)
	assert.True(t, admin.IsAdmin)

	rec = a.do(http.MethodGet, "/api/users", user.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(http.MethodGet, "/api/users", admin.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 3)

	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), owner.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "can't delete admin user", message(t, rec))

	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), admin.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), owner.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodPut, fmt.Sprintf("/api/users/%d", admin.ID), owner.Token, map[string]any{"isAdmin": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["isAdmin"])
	rec = a.do(http.MethodPut, fmt.Sprintf("/api/users/%d", admin.ID), owner.Token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogBrowseAndFavourites(t *testing.T) {
	a := newAPI(t)
	owner := a.owner()
	user := a.register("fan@example.com")

	rec := a.do(http.MethodPost, "/api/movies", user.Token, map[string]any{"title": "Heat"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var ids []uint64
	for _, title := range []string{"Heat", "Heathers", "Up"} {
		rec = a.do(http.MethodPost, "/api/movies", owner.Token, map[string]any{"title": title, "genres": []string{"Drama"}})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		ids = append(ids, uint64(decode[map[string]any](t, rec)["_id"].(float64)))
	}

	rec = a.do(http.MethodGet, "/api/movies?search=heat&genre=Drama", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, res["total"])

	rec = a.do(http.MethodGet, "/api/movies?sort=title", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/api/movies/heathers", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodGet, "/api/movies/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, "/api/users/favourites", user.Token, map[string]any{"movieId": ids[1]})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodPost, "/api/users/favourites", user.Token, map[string]any{"movieId": ids[1]})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/api/users/favourites", user.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = a.do(http.MethodPost, fmt.Sprintf("/api/movies/%d/reviews", ids[0]), user.Token, map[string]any{"rating": 4})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = a.do(http.MethodGet, fmt.Sprintf("/api/movies/%d/reviews", ids[0]), "", nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = a.do(http.MethodDelete, "/api/users/favourites", user.Token, nil)
	assert.JSONEq(t, `{"likedMovies":[]}`, rec.Body.String())
}

func TestShowsAndBookings(t *testing.T) {
	a := newAPI(t)
	owner := a.owner()
	user := a.register("gil@example.com")
	other := a.register("hal@example.com")

	rec := a.do(http.MethodPost, "/api/shows", owner.Token, map[string]any{
		"title": "Late show", "date": "2024-07-01", "time": "22:00", "totalSeats": 2, "ticketPrice": 7.5, "theatre": 99,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "theatre does not exist", message(t, rec))

	rec = a.do(http.MethodPost, "/api/theatres", owner.Token, map[string]any{"name": "Grand"})
	require.Equal(t, http.StatusCreated, rec.Code)
	theatreID := uint64(decode[map[string]any](t, rec)["_id"].(float64))

	rec = a.do(http.MethodPost, "/api/shows", owner.Token, map[string]any{
		"title": "Late show", "date": "2024-07-01", "time": "22:00", "totalSeats": 2, "ticketPrice": 7.5, "theatre": theatreID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	showID := uint64(decode[map[string]any](t, rec)["_id"].(float64))

	rec = a.do(http.MethodGet, fmt.Sprintf("/api/shows?theatre=%d&title=LATE", theatreID), "", nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = a.do(http.MethodPost, "/api/bookings", "", map[string]any{"show": showID, "seats": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/api/bookings", user.Token, map[string]any{"show": showID, "seats": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[map[string]any](t, rec)
	assert.EqualValues(t, 15, booking["totalPrice"])
	bookingID := uint64(booking["_id"].(float64))

	rec = a.do(http.MethodPost, "/api/bookings", other.Token, map[string]any{"show": showID, "seats": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, fmt.Sprintf("/api/bookings/%d/qr", bookingID), user.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	rec = a.do(http.MethodGet, fmt.Sprintf("/api/bookings/%d", bookingID), other.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(http.MethodGet, "/api/bookings/all", user.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(http.MethodGet, "/api/bookings/all", owner.Token, nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/theatres/%d", theatreID), owner.Token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/shows/%d", showID), owner.Token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/bookings/%d", bookingID), user.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CANCELLED", decode[map[string]any](t, rec)["status"])

	rec = a.do(http.MethodPost, "/api/bookings", other.Token, map[string]any{"show": showID, "seats": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUploadWithoutMediaProvider(t *testing.T) {
	a := newAPI(t)
	owner := a.owner()
	rec := a.do(http.MethodPost, "/api/upload", owner.Token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "media uploads are not configured", message(t, rec))
}
