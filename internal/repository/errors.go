package repository

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrActiveSessionExists is returned when creating or reopening a
	// session would leave a user with two running sessions.
	ErrActiveSessionExists = errors.New("user already has an active session")

	// ErrDuplicate is returned when a unique attribute is already taken.
	ErrDuplicate = errors.New("duplicate")
)

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
