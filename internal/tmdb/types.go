package tmdb

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Candidate is one search result.  It is shown to the user as-is and is not
// persisted.
type Candidate struct {
	ID           uint64  `json:"id"`
	Title        string  `json:"title"`
	ReleaseDate  string  `json:"release_date"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	BackdropPath string  `json:"backdrop_path"`
	PosterPath   string  `json:"poster_path"`
}

// Detail is the full record returned by the movie endpoint.  It has the same
// shape as a Candidate.
type Detail Candidate

// searchResponse is the envelope of /search/movie.
type searchResponse struct {
	Page         int         `json:"page"`
	Results      []Candidate `json:"results"`
	TotalResults int         `json:"total_results"`
}

const releaseDateLayout = "2006-01-02"

// Year extracts the four-digit release year from ReleaseDate.  Empty or
// malformed dates are reported as an upstream failure.
func (d *Detail) Year() (int, error) {
	t, err := time.Parse(releaseDateLayout, d.ReleaseDate)
	if err != nil {
		return 0, fmt.Errorf("%w: release_date %q: %v", ErrUpstream, d.ReleaseDate, err)
	}
	return t.Year(), nil
}

// Rating is VoteAverage rounded to one decimal place and clamped to [0, 10].
func (d *Detail) Rating() float64 {
	r := math.Round(d.VoteAverage*10) / 10
	return math.Max(0, math.Min(10, r))
}

// ImageURL joins the CDN prefix with the backdrop path, or with the poster
// path when the movie has no backdrop.
func (d *Detail) ImageURL(prefix string) (string, error) {
	p := d.BackdropPath
	if p == "" {
		p = d.PosterPath
	}
	if p == "" {
		return "", fmt.Errorf("%w: movie %d has no image", ErrUpstream, d.ID)
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(p, "/"), nil
}
