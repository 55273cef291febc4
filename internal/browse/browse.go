// Package browse filters, sorts and windows a movie collection for the
// catalog listing. Apply is pure: the same input and query always produce
// the same output.
package browse

import (
	"sort"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const (
	DefaultVisible = 8
	Step           = 8
)

// SortKey selects the ordering field. The zero value keeps source order.
type SortKey string

const (
	SortNone        SortKey = ""
	SortRating      SortKey = "rating"
	SortPopularity  SortKey = "popularity"
	SortReleaseDate SortKey = "releaseDate"
)

// ParseSort accepts the query string spelling of a sort key.
func ParseSort(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case SortNone, SortRating, SortPopularity, SortReleaseDate:
		return k, true
	}
	return "", false
}

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder accepts "asc", "desc" or empty (ascending).
func ParseOrder(s string) (Order, bool) {
	switch strings.ToLower(s) {
	case "", "asc":
		return Asc, true
	case "desc":
		return Desc, true
	}
	return "", false
}

// Query holds the listing parameters. Visible <= 0 means DefaultVisible.
type Query struct {
	Genre   string
	Search  string
	Sort    SortKey
	Order   Order
	Visible int
}

// Result is one window over the filtered, sorted collection.
type Result struct {
	Items   []model.Movie `json:"items"`
	Total   int           `json:"total"`
	Visible int           `json:"visible"`
	HasMore bool          `json:"hasMore"`
}

// LoadMore grows the window by Step.
func LoadMore(q Query) Query {
	q.Visible = q.window() + Step
	return q
}

func (q Query) window() int {
	if q.Visible <= 0 {
		return DefaultVisible
	}
	return q.Visible
}

// Apply filters movies by genre inclusion and case-insensitive title
// substring, stable-sorts by q.Sort in q.Order and returns the first
// q.Visible matches. The input slice is not modified.
func Apply(movies []model.Movie, q Query) Result {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	matched := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if q.Genre != "" && !m.HasGenre(q.Genre) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Title), search) {
			continue
		}
		matched = append(matched, m)
	}

	if less := lessFor(q.Sort); less != nil {
		desc := q.Order == Desc
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return less(matched[j], matched[i])
			}
			return less(matched[i], matched[j])
		})
	}

	n := q.window()
	if n > len(matched) {
		n = len(matched)
	}
	return Result{
		Items:   matched[:n],
		Total:   len(matched),
		Visible: n,
		HasMore: n < len(matched),
	}
}

func lessFor(k SortKey) func(a, b model.Movie) bool {
	switch k {
	case SortRating:
		return func(a, b model.Movie) bool { return a.AverageRating < b.AverageRating }
	case SortPopularity:
		return func(a, b model.Movie) bool { return a.NumberOfReviews < b.NumberOfReviews }
	case SortReleaseDate:
		// YYYY-MM-DD compares correctly as a string.
		return func(a, b model.Movie) bool { return a.ReleaseDate < b.ReleaseDate }
	}
	return nil
}
