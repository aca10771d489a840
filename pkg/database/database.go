package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hardwarestore/pkg/logger"
)

// Backend names the storage engine behind a Store.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// ErrNoRows is returned by Row.Scan when the statement produced no record.
var ErrNoRows = errors.New("database: no rows in result set")

// TimeLayout is the textual timestamp form shared by both backends.
const TimeLayout = "2006-01-02 15:04:05"

// Rows is a forward-only cursor over a result set.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Row is a single optional record.
type Row interface {
	Scan(dest ...any) error
}

// Result is the uniform outcome of a mutating statement.
type Result struct {
	RowsAffected int64
	// InsertedID is the generated key of an INSERT, zero otherwise.
	InsertedID int64
}

// Querier executes statements written with positional ? placeholders.
type Querier interface {
	All(ctx context.Context, query string, args ...any) (Rows, error)
	Get(ctx context.Context, query string, args ...any) Row
	Run(ctx context.Context, query string, args ...any) (Result, error)
	Backend() Backend
}

// Store is the process-wide persistence handle.
type Store interface {
	Querier
	// WithTx runs fn inside one atomic unit. A non-nil error from fn rolls the unit back.
	WithTx(ctx context.Context, fn func(q Querier) error) error
	// SyncSequence realigns the id generator of table after explicit-id inserts.
	SyncSequence(ctx context.Context, table string) error
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures the backend.
type Options struct {
	// DatabaseURL selects the hosted backend when non-empty.
	DatabaseURL string
	SQLitePath  string
	MaxConns    int32
}

// Open connects to the backend chosen by opts. The choice is fixed for the
// lifetime of the returned Store.
func Open(ctx context.Context, opts Options, log *logger.Logger) (Store, error) {
	if strings.TrimSpace(opts.DatabaseURL) != "" {
		store, err := OpenPostgres(ctx, opts.DatabaseURL, opts.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info(ctx, "connected to hosted database")
		return store, nil
	}

	path := opts.SQLitePath
	if path == "" {
		path = "hardware_inventory.db"
	}
	store, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	log.Info(log.WithField(ctx, "path", path), "opened embedded database")
	return store, nil
}

// FormatTime renders t in the shared timestamp layout, in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func isInsert(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT")
}
