// Package repository contains data access logic separated from HTTP handlers.
// This file implements the movie store: the single table behind the ranked
// list.  Queries use `?` placeholders so the same statements run on MySQL
// and SQLite.
package repository

import (
	"context"      // context carries request deadlines into DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors matches sentinel values such as sql.ErrNoRows

	"github.com/iliyamo/top-movies/internal/model"
)

// MovieRepo encapsulates all database queries related to movies.  It
// depends on a sql.DB connection which is opened at startup and closed at
// shutdown by the caller.
type MovieRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = "id, title, year, description, rating, review, img_url"

// Create inserts a new movie.  On success the movie's ID field is populated
// with the auto-generated value.  A title, description or image URL that is
// already stored yields ErrDuplicateMovie and nothing is written.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, year, description, rating, review, img_url)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Year, m.Description, m.Rating, m.Review, m.ImgURL)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMovie
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID fetches a movie by its ID.  It returns ErrMovieNotFound if no row
// is found.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	q := "SELECT " + movieColumns + " FROM movies WHERE id = ?"
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListByRating returns every movie ordered by ascending rating.  Equal
// ratings keep insertion order.
func (r *MovieRepo) ListByRating(ctx context.Context) ([]*model.Movie, error) {
	return r.list(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY rating ASC, id ASC")
}

// ListRecent returns every movie, most recently added first.
func (r *MovieRepo) ListRecent(ctx context.Context) ([]*model.Movie, error) {
	return r.list(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY id DESC")
}

func (r *MovieRepo) list(ctx context.Context, q string) ([]*model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRatingReview changes exactly the rating and review of a movie.
// It returns ErrMovieNotFound when no row has the given id.
func (r *MovieRepo) UpdateRatingReview(ctx context.Context, id uint64, rating float64, review string) error {
	const q = `UPDATE movies SET rating = ?, review = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, rating, review, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows when the values are unchanged,
		// so confirm the row is really missing before failing.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a movie.  Deleting an id that does not exist (including
// one that was already deleted) returns ErrMovieNotFound.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(s rowScanner) (*model.Movie, error) {
	m := new(model.Movie)
	if err := s.Scan(&m.ID, &m.Title, &m.Year, &m.Description, &m.Rating, &m.Review, &m.ImgURL); err != nil {
		return nil, err
	}
	return m, nil
}
