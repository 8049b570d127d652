package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("db: record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("db: duplicate key")

	// ErrForeignKeyViolation is returned when a referenced row is missing.
	ErrForeignKeyViolation = errors.New("db: foreign key violation")
)

func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool        { return errors.Is(err, ErrDuplicateKey) }
func IsForeignKeyViolation(err error) bool { return errors.Is(err, ErrForeignKeyViolation) }

// Error keeps the original driver error behind a sentinel so callers can use
// errors.Is for the category and errors.As for the driver detail.
type Error struct {
	Sentinel error
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *Error) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *Error) Unwrap() error        { return e.Cause }

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Sentinel: ErrNotFound, Cause: err}
	}

	var mapped *Error
	if errors.As(err, &mapped) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return &Error{Sentinel: ErrDuplicateKey, Cause: err}
		case "23503": // foreign_key_violation
			return &Error{Sentinel: ErrForeignKeyViolation, Cause: err}
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &Error{Sentinel: ErrDuplicateKey, Cause: err}
		case sqlite3.ErrConstraintForeignKey:
			return &Error{Sentinel: ErrForeignKeyViolation, Cause: err}
		}
	}
	return err
}
