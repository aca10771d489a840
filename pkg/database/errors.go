package database

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

const pgUniqueViolation = "23505"

// BackendError is a failed statement, tagged with the backend's own diagnostic code.
type BackendError struct {
	Backend Backend
	Code    string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Backend, e.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Backend, e.Code, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// AsBackendError extracts a *BackendError from err's chain.
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsUniqueViolation reports whether err is a uniqueness violation on either backend.
func IsUniqueViolation(err error) bool {
	be, ok := AsBackendError(err)
	if !ok {
		return false
	}
	switch be.Backend {
	case BackendPostgres:
		return be.Code == pgUniqueViolation
	case BackendSQLite:
		return be.Code == strconv.Itoa(int(sqlite3.ErrConstraintUnique)) ||
			be.Code == strconv.Itoa(int(sqlite3.ErrConstraintPrimaryKey))
	}
	return false
}

func wrapPostgres(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsBackendError(err); ok {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &BackendError{Backend: BackendPostgres, Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}
	return &BackendError{Backend: BackendPostgres, Message: err.Error(), Err: err}
}

func wrapSQLite(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsBackendError(err); ok {
		return err
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return &BackendError{
			Backend: BackendSQLite,
			Code:    strconv.Itoa(int(liteErr.ExtendedCode)),
			Message: liteErr.Error(),
			Err:     err,
		}
	}
	return &BackendError{Backend: BackendSQLite, Message: err.Error(), Err: err}
}
