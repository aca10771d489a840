package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// OpenSQLite opens the embedded database file at path (":memory:" for a
// private in-memory database) with foreign keys enforced.
func OpenSQLite(ctx context.Context, path string) (Store, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	if strings.Contains(path, "?") {
		dsn = path + "&_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps an in-memory database alive on a single connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{sqliteQuerier: sqliteQuerier{ext: db}, db: db}, nil
}

type sqliteQuerier struct {
	ext sqlx.ExtContext
}

type sqliteStore struct {
	sqliteQuerier
	db *sqlx.DB
}

func (q *sqliteQuerier) Backend() Backend {
	return BackendSQLite
}

func (q *sqliteQuerier) All(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := q.ext.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, wrapSQLite(err)
	}
	return &sqliteRows{rows: rows}, nil
}

func (q *sqliteQuerier) Get(ctx context.Context, query string, args ...any) Row {
	return sqliteRow{q.ext.QueryRowxContext(ctx, query, args...)}
}

func (q *sqliteQuerier) Run(ctx context.Context, query string, args ...any) (Result, error) {
	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, wrapSQLite(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, wrapSQLite(err)
	}
	out := Result{RowsAffected: affected}
	if isInsert(query) && affected > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return Result{}, wrapSQLite(err)
		}
		out.InsertedID = id
	}
	return out, nil
}

func (s *sqliteStore) WithTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapSQLite(err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&sqliteQuerier{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return multierr.Append(err, wrapSQLite(rbErr))
		}
		return err
	}
	return wrapSQLite(tx.Commit())
}

// SyncSequence is a no-op: AUTOINCREMENT follows the largest stored id.
func (s *sqliteStore) SyncSequence(context.Context, string) error {
	return nil
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	return wrapSQLite(s.db.PingContext(ctx))
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

type sqliteRows struct {
	rows *sqlx.Rows
}

func (r *sqliteRows) Next() bool { return r.rows.Next() }

func (r *sqliteRows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return wrapSQLite(err)
	}
	roundMoney(dest)
	return nil
}

func (r *sqliteRows) Err() error { return wrapSQLite(r.rows.Err()) }

func (r *sqliteRows) Close() { _ = r.rows.Close() }

type sqliteRow struct {
	row *sqlx.Row
}

func (r sqliteRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoRows
	}
	if err != nil {
		return wrapSQLite(err)
	}
	roundMoney(dest)
	return nil
}

// MoneyPlaces is the scale of every DECIMAL column.
const MoneyPlaces = 2

// roundMoney snaps scanned decimals back to cents. SQLite keeps DECIMAL
// columns as REAL, so sums and increments carry binary fractions.
func roundMoney(dest []any) {
	for _, d := range dest {
		switch v := d.(type) {
		case *decimal.Decimal:
			*v = v.Round(MoneyPlaces)
		case **decimal.Decimal:
			if *v != nil {
				rounded := (*v).Round(MoneyPlaces)
				*v = &rounded
			}
		case *decimal.NullDecimal:
			if v.Valid {
				v.Decimal = v.Decimal.Round(MoneyPlaces)
			}
		}
	}
}
