package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"
)

type pgxConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxPool is the subset of *pgxpool.Pool the hosted store needs; pgxmock satisfies it too.
type PgxPool interface {
	pgxConn
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// OpenPostgres connects a pool to dsn and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string, maxConns int32) (Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return newPostgresStore(pool), nil
}

type pgQuerier struct {
	conn pgxConn
}

type pgStore struct {
	pgQuerier
	pool PgxPool
}

// NewPostgresStore wraps an already connected pool.
func NewPostgresStore(pool PgxPool) Store {
	return newPostgresStore(pool)
}

func newPostgresStore(pool PgxPool) *pgStore {
	return &pgStore{pgQuerier: pgQuerier{conn: pool}, pool: pool}
}

// rewriteForHosted numbers the placeholders of query and, for INSERT
// statements, makes sure the generated id comes back as the first column.
func rewriteForHosted(query string) (string, bool) {
	stmt := sqlx.Rebind(sqlx.DOLLAR, query)
	if !isInsert(stmt) {
		return stmt, false
	}
	if strings.Contains(strings.ToUpper(stmt), "RETURNING") {
		return stmt, true
	}
	stmt = strings.TrimRight(strings.TrimSpace(stmt), ";")
	return stmt + " RETURNING id", true
}

func (q *pgQuerier) Backend() Backend {
	return BackendPostgres
}

func (q *pgQuerier) All(ctx context.Context, query string, args ...any) (Rows, error) {
	stmt, _ := rewriteForHosted(query)
	rows, err := q.conn.Query(ctx, stmt, args...)
	if err != nil {
		return nil, wrapPostgres(err)
	}
	return pgRows{rows}, nil
}

func (q *pgQuerier) Get(ctx context.Context, query string, args ...any) Row {
	stmt, _ := rewriteForHosted(query)
	return pgRow{q.conn.QueryRow(ctx, stmt, args...)}
}

func (q *pgQuerier) Run(ctx context.Context, query string, args ...any) (Result, error) {
	stmt, returning := rewriteForHosted(query)
	if returning {
		var id int64
		err := q.conn.QueryRow(ctx, stmt, args...).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			// conflict or NOT EXISTS guard: nothing was written
			return Result{}, nil
		}
		if err != nil {
			return Result{}, wrapPostgres(err)
		}
		return Result{RowsAffected: 1, InsertedID: id}, nil
	}

	tag, err := q.conn.Exec(ctx, stmt, args...)
	if err != nil {
		return Result{}, wrapPostgres(err)
	}
	return Result{RowsAffected: tag.RowsAffected()}, nil
}

func (s *pgStore) WithTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapPostgres(err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&pgQuerier{conn: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return multierr.Append(err, wrapPostgres(rbErr))
		}
		return err
	}
	return wrapPostgres(tx.Commit(ctx))
}

func (s *pgStore) SyncSequence(ctx context.Context, table string) error {
	if !identPattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	query := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`,
		table, table)
	_, err := s.pool.Exec(ctx, query)
	return wrapPostgres(err)
}

func (s *pgStore) Ping(ctx context.Context) error {
	return wrapPostgres(s.pool.Ping(ctx))
}

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

type pgRows struct {
	pgx.Rows
}

func (r pgRows) Err() error {
	return wrapPostgres(r.Rows.Err())
}

type pgRow struct {
	row pgx.Row
}

func (r pgRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoRows
	}
	return wrapPostgres(err)
}
