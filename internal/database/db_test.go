package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteAndEnsureSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "movies.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, EnsureSchema(ctx, db, SQLite))
	require.NoError(t, EnsureSchema(ctx, db, SQLite))

	var name string
	err = db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'movies'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "movies", name)
}

func TestEnsureSchemaRejectsOutOfRangeRating(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "movies.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, EnsureSchema(ctx, db, SQLite))

	_, err = db.ExecContext(ctx,
		`INSERT INTO movies (title, year, description, rating, img_url) VALUES (?, ?, ?, ?, ?)`,
		"Too Good", 2020, "desc", 11.0, "img")
	assert.Error(t, err)
}

func TestEnsureSchemaMySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS movies").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db, MySQL))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaUnknownDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, EnsureSchema(context.Background(), db, "oracle"))
}
