package database

import (
	"context"
	"database/sql"
	"fmt"
)

// The ranking is derived at read time and deliberately has no column.
// MySQL cannot index a TEXT column without a prefix length, so description
// uniqueness is enforced on its first 500 characters there.
const mysqlSchema = `CREATE TABLE IF NOT EXISTS movies (
	id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	title       VARCHAR(250) NOT NULL,
	year        INT NOT NULL,
	description TEXT NOT NULL,
	rating      DOUBLE NOT NULL,
	review      VARCHAR(250) NOT NULL DEFAULT '',
	img_url     VARCHAR(250) NOT NULL,
	PRIMARY KEY (id),
	UNIQUE KEY uq_movies_title (title),
	UNIQUE KEY uq_movies_description (description(500)),
	UNIQUE KEY uq_movies_img_url (img_url),
	CONSTRAINT chk_movies_rating CHECK (rating >= 0 AND rating <= 10)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// AUTOINCREMENT keeps SQLite from reusing the id of a deleted row.
const sqliteSchema = `CREATE TABLE IF NOT EXISTS movies (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL UNIQUE,
	year        INTEGER NOT NULL,
	description TEXT NOT NULL UNIQUE,
	rating      REAL NOT NULL CHECK (rating >= 0 AND rating <= 10),
	review      TEXT NOT NULL DEFAULT '',
	img_url     TEXT NOT NULL UNIQUE
)`

// EnsureSchema creates the movies table if it does not exist yet.  It is
// called once at startup, before the first request is served.
func EnsureSchema(ctx context.Context, db *sql.DB, dialect string) error {
	var ddl string
	switch dialect {
	case MySQL:
		ddl = mysqlSchema
	case SQLite:
		ddl = sqliteSchema
	default:
		return fmt.Errorf("unsupported database dialect %q", dialect)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create movies table: %w", err)
	}
	return nil
}
