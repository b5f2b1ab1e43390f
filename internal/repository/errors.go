// Package repository defines error types shared by the data access layer.
// These sentinel values allow higher layers such as handlers to
// distinguish between failure scenarios without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrMovieNotFound is returned when no movie has the requested id.
// Handlers should translate this into an HTTP 404 response.
var ErrMovieNotFound = errors.New("movie not found")

// ErrDuplicateMovie is returned when a movie with the same title,
// description or image URL is already stored.  Handlers should
// translate this into an HTTP 409 response.
var ErrDuplicateMovie = errors.New("movie already exists")

// mysqlDuplicateEntry is the MySQL server error number for a unique key
// violation.
const mysqlDuplicateEntry = 1062

// isUniqueViolation reports whether err is a unique constraint failure from
// either supported driver.
func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE"))
	}
	return false
}
