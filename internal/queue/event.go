// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// ActivityQueueName is the durable queue movie activity is published to.
const ActivityQueueName = "movie.activity"

// Event types.
const (
	MovieAdded   = "movie.added"
	MovieRated   = "movie.rated"
	MovieDeleted = "movie.deleted"
)

// MovieEvent is published after a movie is added, rated or deleted.  It
// carries enough information for a consumer to record the change without
// querying the database.
type MovieEvent struct {
	Type       string  `json:"type"`
	MovieID    uint64  `json:"movie_id"`
	Title      string  `json:"title"`
	Year       int     `json:"year,omitempty"`
	Rating     float64 `json:"rating"`
	Review     string  `json:"review,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}

// NewMovieEvent stamps an event with the current UTC time.
func NewMovieEvent(typ string, id uint64, title string, year int, rating float64, review string) MovieEvent {
	return MovieEvent{
		Type:       typ,
		MovieID:    id,
		Title:      title,
		Year:       year,
		Rating:     rating,
		Review:     review,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
