package model

// Movie is one entry of the personal movie list.  It corresponds to a row in
// the `movies` table, except Ranking which is derived from the rating order
// each time the list is read and is never stored.
//
// Fields:
//  ID          – primary key identifier, never reused.
//  Title       – unique title.
//  Year        – four-digit release year.
//  Description – unique synopsis.
//  Rating      – score in [0, 10].
//  Ranking     – 1 for the best rated movie, N for the worst.
//  Review      – the user's review; empty until the first edit.
//  ImgURL      – unique poster/backdrop image URL.
type Movie struct {
	ID          uint64  // movies.id
	Title       string  // movies.title
	Year        int     // movies.year
	Description string  // movies.description
	Rating      float64 // movies.rating
	Ranking     int     // computed, not persisted
	Review      string  // movies.review
	ImgURL      string  // movies.img_url
}

// Rating bounds accepted by the store and the rating form.
const (
	MinRating = 0.0
	MaxRating = 10.0
)
