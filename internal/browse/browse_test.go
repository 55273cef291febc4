package browse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

func catalog() []model.Movie {
	return []model.Movie{
		{ID: 1, Title: "The Matrix", Genres: []string{"Action", "Science-Fiction"}, AverageRating: 4.7, NumberOfReviews: 90, ReleaseDate: "1999-03-31"},
		{ID: 2, Title: "Dumb and Dumber", Genres: []string{"Comedy"}, AverageRating: 3.1, NumberOfReviews: 40, ReleaseDate: "1994-12-16"},
		{ID: 3, Title: "Matilda", Genres: []string{"Comedy", "Drama"}, AverageRating: 3.9, NumberOfReviews: 12, ReleaseDate: "1996-08-02"},
		{ID: 4, Title: "Heat", Genres: []string{"Crime"}, AverageRating: 4.4, NumberOfReviews: 55, ReleaseDate: "1995-12-15"},
		{ID: 5, Title: "Hot Fuzz", Genres: []string{"Comedy", "Action"}, AverageRating: 3.9, NumberOfReviews: 30, ReleaseDate: "2007-02-14"},
	}
}

func ids(ms []model.Movie) []uint64 {
	out := make([]uint64, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestGenreFilterOnlyIncludesGenre(t *testing.T) {
	res := Apply(catalog(), Query{Genre: "Comedy"})
	require.Equal(t, 3, res.Total)
	for _, m := range res.Items {
		assert.True(t, m.HasGenre("Comedy"), m.Title)
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	res := Apply(catalog(), Query{Search: "mat"})
	assert.Equal(t, []uint64{1, 3}, ids(res.Items))

	res = Apply(catalog(), Query{Search: "  MAT "})
	assert.Equal(t, []uint64{1, 3}, ids(res.Items))
}

func TestSortRatingAscendingIsNonDecreasing(t *testing.T) {
	res := Apply(catalog(), Query{Sort: SortRating, Order: Asc})
	for i := 1; i < len(res.Items); i++ {
		assert.LessOrEqual(t, res.Items[i-1].AverageRating, res.Items[i].AverageRating)
	}
	// Ties keep source order.
	assert.Equal(t, []uint64{2, 3, 5, 4, 1}, ids(res.Items))
}

func TestSortDescending(t *testing.T) {
	res := Apply(catalog(), Query{Sort: SortPopularity, Order: Desc})
	assert.Equal(t, []uint64{1, 4, 2, 5, 3}, ids(res.Items))

	res = Apply(catalog(), Query{Sort: SortReleaseDate, Order: Desc, Genre: "Comedy"})
	assert.Equal(t, []uint64{5, 3, 2}, ids(res.Items))
}

func TestNoSortKeepsSourceOrder(t *testing.T) {
	res := Apply(catalog(), Query{Order: Desc})
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ids(res.Items))
}

func TestWindowAndLoadMore(t *testing.T) {
	var many []model.Movie
	for i := 1; i <= 20; i++ {
		many = append(many, model.Movie{ID: uint64(i), Title: fmt.Sprintf("m%d", i)})
	}

	q := Query{}
	res := Apply(many, q)
	assert.Equal(t, DefaultVisible, res.Visible)
	assert.Len(t, res.Items, DefaultVisible)
	assert.True(t, res.HasMore)

	q = LoadMore(q)
	assert.Equal(t, 16, q.Visible)
	res = Apply(many, q)
	assert.Len(t, res.Items, 16)

	q = LoadMore(q)
	res = Apply(many, q)
	assert.Equal(t, 20, res.Visible)
	assert.False(t, res.HasMore)
}

func TestApplyIsDeterministicAndDoesNotMutateInput(t *testing.T) {
	src := catalog()
	q := Query{Sort: SortRating, Order: Desc, Genre: "Comedy"}
	a := Apply(src, q)
	b := Apply(src, q)
	assert.Equal(t, ids(a.Items), ids(b.Items))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ids(src))
}

func TestParse(t *testing.T) {
	k, ok := ParseSort("releaseDate")
	assert.True(t, ok)
	assert.Equal(t, SortReleaseDate, k)
	_, ok = ParseSort("title")
	assert.False(t, ok)

	o, ok := ParseOrder("DESC")
	assert.True(t, ok)
	assert.Equal(t, Desc, o)
	_, ok = ParseOrder("sideways")
	assert.False(t, ok)
}
