// Package ranking derives list positions from ratings.
package ranking

import (
	"sort"

	"github.com/iliyamo/top-movies/internal/model"
)

// Assign sets Ranking on every movie so that the best rated movie is 1 and
// the worst is len(movies).  Equal ratings are ordered by id, the lower id
// ranking worse, mirroring the store's ascending listing.  The order of the
// input slice is left untouched so callers can display any ordering.
func Assign(movies []*model.Movie) {
	asc := make([]*model.Movie, len(movies))
	copy(asc, movies)
	sort.SliceStable(asc, func(i, j int) bool {
		if asc[i].Rating != asc[j].Rating {
			return asc[i].Rating < asc[j].Rating
		}
		return asc[i].ID < asc[j].ID
	})
	n := len(asc)
	for i, m := range asc {
		m.Ranking = n - i
	}
}
