package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

func cloneMovie(m model.Movie) model.Movie {
	m.Genres = cloneStrings(m.Genres)
	m.Casts = cloneCredits(m.Casts)
	m.Crews = cloneCredits(m.Crews)
	return m
}

type MovieRepo struct{ s *Store }

func (r *MovieRepo) slugTaken(slug string, except uint64) bool {
	for id, m := range r.s.movies {
		if id != except && m.Slug == slug {
			return true
		}
	}
	return false
}

func (r *MovieRepo) Create(_ context.Context, m *model.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.slugTaken(m.Slug, 0) {
		return repository.ErrSlugExists
	}
	m.ID = r.s.next("movies")
	m.CreatedAt, m.UpdatedAt = now(), now()
	m.AverageRating, m.NumberOfReviews = 0, 0
	r.s.movies[m.ID] = cloneMovie(*m)
	return nil
}

func (r *MovieRepo) Update(_ context.Context, m *model.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.movies[m.ID]
	if !ok {
		return repository.ErrMovieNotFound
	}
	if r.slugTaken(m.Slug, m.ID) {
		return repository.ErrSlugExists
	}
	next := cloneMovie(*m)
	next.AverageRating, next.NumberOfReviews = cur.AverageRating, cur.NumberOfReviews
	next.CreatedAt, next.UpdatedAt = cur.CreatedAt, now()
	r.s.movies[m.ID] = next
	m.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *MovieRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movies[id]; !ok {
		return repository.ErrMovieNotFound
	}
	delete(r.s.movies, id)
	for rid, rv := range r.s.reviews {
		if rv.MovieID == id {
			delete(r.s.reviews, rid)
		}
	}
	for uid, u := range r.s.users {
		kept := make([]uint64, 0, len(u.LikedMovies))
		for _, mid := range u.LikedMovies {
			if mid != id {
				kept = append(kept, mid)
			}
		}
		u.LikedMovies = kept
		r.s.users[uid] = u
	}
	return nil
}

func (r *MovieRepo) GetByID(_ context.Context, id uint64) (model.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movies[id]
	if !ok {
		return model.Movie{}, repository.ErrMovieNotFound
	}
	return cloneMovie(m), nil
}

func (r *MovieRepo) GetBySlug(_ context.Context, slug string) (model.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movies {
		if m.Slug == slug {
			return cloneMovie(m), nil
		}
	}
	return model.Movie{}, repository.ErrMovieNotFound
}

func (r *MovieRepo) SlugExists(_ context.Context, slug string, exceptID uint64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.slugTaken(slug, exceptID), nil
}

// List returns all movies, newest first.
func (r *MovieRepo) List(_ context.Context) ([]model.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Movie, 0, len(r.s.movies))
	for _, m := range r.s.movies {
		out = append(out, cloneMovie(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MovieRepo) ListByIDs(_ context.Context, ids []uint64) ([]model.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Movie, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.s.movies[id]; ok {
			out = append(out, cloneMovie(m))
		}
	}
	return out, nil
}

func (r *MovieRepo) AddReview(_ context.Context, rv *model.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movies[rv.MovieID]; !ok {
		return repository.ErrMovieNotFound
	}
	for _, have := range r.s.reviews {
		if have.MovieID == rv.MovieID && have.UserID == rv.UserID {
			return repository.ErrAlreadyReviewed
		}
	}
	rv.ID = r.s.next("reviews")
	rv.CreatedAt = now()
	r.s.reviews[rv.ID] = *rv
	recomputeRating(r.s, rv.MovieID)
	return nil
}

func (r *MovieRepo) ListReviews(_ context.Context, movieID uint64) ([]model.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []model.Review{}
	for _, rv := range r.s.reviews {
		if rv.MovieID == movieID {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// recomputeRating refreshes a movie's aggregates. Caller holds the lock.
func recomputeRating(s *Store, movieID uint64) {
	m, ok := s.movies[movieID]
	if !ok {
		return
	}
	var (
		sum float64
		n   int
	)
	for _, rv := range s.reviews {
		if rv.MovieID == movieID {
			sum += rv.Rating
			n++
		}
	}
	m.NumberOfReviews = n
	m.AverageRating = 0
	if n > 0 {
		m.AverageRating = sum / float64(n)
	}
	s.movies[movieID] = m
}

type TheatreRepo struct{ s *Store }

func (r *TheatreRepo) Create(_ context.Context, t *model.Theatre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.next("theatres")
	t.CreatedAt, t.UpdatedAt = now(), now()
	r.s.theatres[t.ID] = *t
	return nil
}

func (r *TheatreRepo) Update(_ context.Context, t *model.Theatre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.theatres[t.ID]
	if !ok {
		return repository.ErrTheatreNotFound
	}
	t.CreatedAt, t.UpdatedAt = cur.CreatedAt, now()
	r.s.theatres[t.ID] = *t
	return nil
}

func (r *TheatreRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.theatres[id]; !ok {
		return repository.ErrTheatreNotFound
	}
	for _, sh := range r.s.shows {
		if sh.TheatreID == id {
			return repository.ErrConflict
		}
	}
	delete(r.s.theatres, id)
	return nil
}

func (r *TheatreRepo) GetByID(_ context.Context, id uint64) (model.Theatre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.theatres[id]
	if !ok {
		return model.Theatre{}, repository.ErrTheatreNotFound
	}
	return t, nil
}

func (r *TheatreRepo) List(_ context.Context) ([]model.Theatre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Theatre, 0, len(r.s.theatres))
	for _, t := range r.s.theatres {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type CineastRepo struct{ s *Store }

func (r *CineastRepo) Create(_ context.Context, c *model.Cineast) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.next("cineasts")
	c.CreatedAt, c.UpdatedAt = now(), now()
	r.s.cineasts[c.ID] = *c
	return nil
}

func (r *CineastRepo) Update(_ context.Context, c *model.Cineast) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.cineasts[c.ID]
	if !ok {
		return repository.ErrCineastNotFound
	}
	c.CreatedAt, c.UpdatedAt = cur.CreatedAt, now()
	r.s.cineasts[c.ID] = *c
	return nil
}

func (r *CineastRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cineasts[id]; !ok {
		return repository.ErrCineastNotFound
	}
	delete(r.s.cineasts, id)
	return nil
}

func (r *CineastRepo) GetByID(_ context.Context, id uint64) (model.Cineast, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cineasts[id]
	if !ok {
		return model.Cineast{}, repository.ErrCineastNotFound
	}
	return c, nil
}

func (r *CineastRepo) List(_ context.Context) ([]model.Cineast, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Cineast, 0, len(r.s.cineasts))
	for _, c := range r.s.cineasts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CineastRepo) Summaries(_ context.Context, ids []uint64) (map[uint64]model.CineastSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[uint64]model.CineastSummary, len(ids))
	for _, id := range ids {
		if c, ok := r.s.cineasts[id]; ok {
			out[id] = model.CineastSummary{ID: c.ID, Name: c.Name, Image: c.Image}
		}
	}
	return out, nil
}

func (r *CineastRepo) IsCredited(_ context.Context, id uint64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	credited := func(lists ...[]model.Credit) bool {
		for _, l := range lists {
			for _, c := range l {
				if c.PersonID == id {
					return true
				}
			}
		}
		return false
	}
	for _, m := range r.s.movies {
		if credited(m.Casts, m.Crews) {
			return true, nil
		}
	}
	for _, sh := range r.s.shows {
		if credited(sh.Casts, sh.Crews) {
			return true, nil
		}
	}
	return false, nil
}

func cloneShow(sh model.Show) model.Show {
	sh.Casts = cloneCredits(sh.Casts)
	sh.Crews = cloneCredits(sh.Crews)
	sh.Theatre = nil
	return sh
}

type ShowRepo struct{ s *Store }

func (r *ShowRepo) Create(_ context.Context, sh *model.Show) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.theatres[sh.TheatreID]; !ok {
		return repository.ErrTheatreNotFound
	}
	sh.ID = r.s.next("shows")
	sh.SeatsBooked = 0
	sh.CreatedAt, sh.UpdatedAt = now(), now()
	r.s.shows[sh.ID] = cloneShow(*sh)
	return nil
}

func (r *ShowRepo) Update(_ context.Context, sh *model.Show) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.shows[sh.ID]
	if !ok {
		return repository.ErrShowNotFound
	}
	if _, ok := r.s.theatres[sh.TheatreID]; !ok {
		return repository.ErrTheatreNotFound
	}
	if sh.TotalSeats < cur.SeatsBooked {
		return repository.ErrSeatsBelowBooked
	}
	next := cloneShow(*sh)
	next.SeatsBooked = cur.SeatsBooked
	next.CreatedAt, next.UpdatedAt = cur.CreatedAt, now()
	r.s.shows[sh.ID] = next
	sh.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *ShowRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.shows[id]; !ok {
		return repository.ErrShowNotFound
	}
	delete(r.s.shows, id)
	for bid, b := range r.s.bookings {
		if b.ShowID == id {
			delete(r.s.bookings, bid)
		}
	}
	return nil
}

func (r *ShowRepo) GetByID(_ context.Context, id uint64) (model.Show, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sh, ok := r.s.shows[id]
	if !ok {
		return model.Show{}, repository.ErrShowNotFound
	}
	return cloneShow(sh), nil
}

func (r *ShowRepo) List(_ context.Context, f model.ShowFilter) ([]model.Show, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	title := strings.ToLower(strings.TrimSpace(f.Title))
	out := []model.Show{}
	for _, sh := range r.s.shows {
		if f.TheatreID != 0 && sh.TheatreID != f.TheatreID {
			continue
		}
		if f.Date != "" && sh.Date != f.Date {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(sh.Title), title) {
			continue
		}
		out = append(out, cloneShow(sh))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *ShowRepo) CountByTheatre(_ context.Context, theatreID uint64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, sh := range r.s.shows {
		if sh.TheatreID == theatreID {
			n++
		}
	}
	return n, nil
}
