package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PostgresStoreTestSuite struct {
	suite.Suite
	mock  pgxmock.PgxPoolIface
	store *pgStore
	ctx   context.Context
}

func (suite *PostgresStoreTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.store = newPostgresStore(mock)
	suite.ctx = context.Background()
}

func (suite *PostgresStoreTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestPostgresStoreTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreTestSuite))
}

func (suite *PostgresStoreTestSuite) TestRewriteNumbersPlaceholders() {
	stmt, returning := rewriteForHosted(`UPDATE inventory SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	assert.Equal(suite.T(), `UPDATE inventory SET quantity = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, stmt)
	assert.False(suite.T(), returning)
}

func (suite *PostgresStoreTestSuite) TestRewriteAppendsReturningToInsert() {
	stmt, returning := rewriteForHosted("INSERT INTO sales (item_id, quantity) VALUES (?, ?);")
	assert.Equal(suite.T(), "INSERT INTO sales (item_id, quantity) VALUES ($1, $2) RETURNING id", stmt)
	assert.True(suite.T(), returning)

	stmt, returning = rewriteForHosted("INSERT INTO users (username) VALUES (?) RETURNING id")
	assert.Equal(suite.T(), "INSERT INTO users (username) VALUES ($1) RETURNING id", stmt)
	assert.True(suite.T(), returning)
}

func (suite *PostgresStoreTestSuite) TestRunInsertReportsInsertedID() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id`)).
		WithArgs("Tools", "Hand tools").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	res, err := suite.store.Run(suite.ctx, `INSERT INTO categories (name, description) VALUES (?, ?)`, "Tools", "Hand tools")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), Result{RowsAffected: 1, InsertedID: 42}, res)
}

func (suite *PostgresStoreTestSuite) TestRunGuardedInsertWithoutRow() {
	suite.mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs("Tools", "Tools").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	res, err := suite.store.Run(suite.ctx,
		`INSERT INTO categories (name) SELECT ? WHERE NOT EXISTS (SELECT 1 FROM categories WHERE name = ?)`, "Tools", "Tools")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), res.RowsAffected)
	assert.Equal(suite.T(), int64(0), res.InsertedID)
}

func (suite *PostgresStoreTestSuite) TestRunUpdateReportsAffectedRows() {
	suite.mock.ExpectExec(regexp.QuoteMeta(`UPDATE inventory SET quantity = quantity - $1 WHERE id = $2 AND quantity >= $3`)).
		WithArgs(3, int64(7), 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	res, err := suite.store.Run(suite.ctx, `UPDATE inventory SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`, 3, int64(7), 3)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), res.RowsAffected)
}

func (suite *PostgresStoreTestSuite) TestRunWrapsBackendError() {
	suite.mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs("Tools").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := suite.store.Run(suite.ctx, `INSERT INTO categories (name) VALUES (?)`, "Tools")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), IsUniqueViolation(err))

	be, ok := AsBackendError(err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), BackendPostgres, be.Backend)
	assert.Equal(suite.T(), "23505", be.Code)
}

func (suite *PostgresStoreTestSuite) TestGetWithoutRowReturnsErrNoRows() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT quantity FROM inventory WHERE id = $1`)).
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}))

	var qty int
	err := suite.store.Get(suite.ctx, `SELECT quantity FROM inventory WHERE id = ?`, int64(99)).Scan(&qty)
	assert.ErrorIs(suite.T(), err, ErrNoRows)
}

func (suite *PostgresStoreTestSuite) TestAllIteratesRows() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM categories WHERE id > $1 ORDER BY id`)).
		WithArgs(0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "Tools").
			AddRow(int64(2), "Valves"))

	rows, err := suite.store.All(suite.ctx, `SELECT id, name FROM categories WHERE id > ? ORDER BY id`, 0)
	assert.NoError(suite.T(), err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var id int64
		var name string
		assert.NoError(suite.T(), rows.Scan(&id, &name))
		names = append(names, name)
	}
	assert.NoError(suite.T(), rows.Err())
	assert.Equal(suite.T(), []string{"Tools", "Valves"}, names)
}

func (suite *PostgresStoreTestSuite) TestWithTxCommits() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sales WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectCommit()

	err := suite.store.WithTx(suite.ctx, func(q Querier) error {
		_, err := q.Run(suite.ctx, `DELETE FROM sales WHERE id = ?`, int64(1))
		return err
	})
	assert.NoError(suite.T(), err)
}

func (suite *PostgresStoreTestSuite) TestWithTxRollsBackOnError() {
	failure := errors.New("insufficient stock")
	suite.mock.ExpectBegin()
	suite.mock.ExpectRollback()

	err := suite.store.WithTx(suite.ctx, func(q Querier) error {
		return failure
	})
	assert.ErrorIs(suite.T(), err, failure)
}

func (suite *PostgresStoreTestSuite) TestSyncSequence() {
	suite.mock.ExpectExec(`SELECT setval\(pg_get_serial_sequence\('sales', 'id'\)`).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	assert.NoError(suite.T(), suite.store.SyncSequence(suite.ctx, "sales"))
	assert.Error(suite.T(), suite.store.SyncSequence(suite.ctx, "sales; DROP TABLE users"))
}
