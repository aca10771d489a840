package database

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardwarestore/pkg/logger"
)

func openMemory(t *testing.T) Store {
	t.Helper()
	store, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteRunReportsInsertedIDAndAffectedRows(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)

	_, err := store.Run(ctx, `CREATE TABLE things (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)

	res, err := store.Run(ctx, `INSERT INTO things (name) VALUES (?)`, "hammer")
	require.NoError(t, err)
	assert.Equal(t, Result{RowsAffected: 1, InsertedID: 1}, res)

	res, err = store.Run(ctx, `INSERT INTO things (name) VALUES (?)`, "wrench")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.InsertedID)

	res, err = store.Run(ctx, `UPDATE things SET name = name || '!'`)
	require.NoError(t, err)
	assert.Equal(t, Result{RowsAffected: 2}, res)

	_, err = store.Run(ctx, `INSERT INTO things (name) VALUES (?)`, "hammer!")
	assert.True(t, IsUniqueViolation(err))
	be, ok := AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, BackendSQLite, be.Backend)
}

func TestSQLiteGetWithoutRow(t *testing.T) {
	store := openMemory(t)
	var n int
	err := store.Get(context.Background(), `SELECT 1 WHERE 1 = ?`, 0).Scan(&n)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestSQLiteScanRoundsMoneyToCents(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	_, err := store.Run(ctx, `CREATE TABLE ledger (id INTEGER PRIMARY KEY AUTOINCREMENT, amount DECIMAL(10,2))`)
	require.NoError(t, err)
	_, err = store.Run(ctx, `INSERT INTO ledger (amount) VALUES (0.1), (0.2), (NULL)`)
	require.NoError(t, err)

	var total decimal.Decimal
	require.NoError(t, store.Get(ctx, `SELECT SUM(amount) FROM ledger`).Scan(&total))
	assert.Equal(t, "0.3", total.String())

	rows, err := store.All(ctx, `SELECT amount, amount + 0.2 FROM ledger ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var amount decimal.NullDecimal
		var shifted *decimal.Decimal
		require.NoError(t, rows.Scan(&amount, &shifted))
		if !amount.Valid {
			assert.Nil(t, shifted)
			continue
		}
		got = append(got, amount.Decimal.String()+"/"+shifted.String())
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"0.1/0.3", "0.2/0.4"}, got)
}

func TestSQLiteWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	_, err := store.Run(ctx, `CREATE TABLE things (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)`)
	require.NoError(t, err)

	failure := errors.New("stop")
	err = store.WithTx(ctx, func(q Querier) error {
		if _, err := q.Run(ctx, `INSERT INTO things (name) VALUES (?)`, "saw"); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)

	var count int
	require.NoError(t, store.Get(ctx, `SELECT COUNT(*) FROM things`).Scan(&count))
	assert.Equal(t, 0, count)

	require.NoError(t, store.WithTx(ctx, func(q Querier) error {
		_, err := q.Run(ctx, `INSERT INTO things (name) VALUES (?)`, "saw")
		return err
	}))
	require.NoError(t, store.Get(ctx, `SELECT COUNT(*) FROM things`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	log := logger.Nop()
	seed := SeedOptions{AdminUsername: "admin", AdminPassword: "admin123"}

	require.NoError(t, InitSchema(ctx, store, seed, log))
	require.NoError(t, InitSchema(ctx, store, seed, log))

	var categories, users int
	require.NoError(t, store.Get(ctx, `SELECT COUNT(*) FROM categories`).Scan(&categories))
	require.NoError(t, store.Get(ctx, `SELECT COUNT(*) FROM users`).Scan(&users))
	assert.Equal(t, len(DefaultCategories), categories)
	assert.Equal(t, 1, users)

	var password, role string
	require.NoError(t, store.Get(ctx, `SELECT password, role FROM users WHERE username = ?`, "admin").Scan(&password, &role))
	assert.NotEqual(t, "admin123", password)
	assert.Equal(t, "admin", role)
}

func TestInitSchemaRejectsCaseInsensitiveDuplicateCategory(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	require.NoError(t, InitSchema(ctx, store, SeedOptions{}, logger.Nop()))

	_, err := store.Run(ctx, `INSERT INTO categories (name) VALUES (?)`, " tools ")
	assert.True(t, IsUniqueViolation(err))
}

func TestInitSchemaUpgradesLegacyFile(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)

	_, err := store.Run(ctx, `CREATE TABLE inventory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category_id INTEGER,
		quantity INTEGER NOT NULL DEFAULT 0,
		unit_price DECIMAL(10,2) NOT NULL DEFAULT 0,
		supplier TEXT,
		location TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	require.NoError(t, InitSchema(ctx, store, SeedOptions{}, logger.Nop()))

	_, err = store.Run(ctx, `INSERT INTO inventory (name, sku, description, min_quantity) VALUES (?, ?, ?, ?)`,
		"Ball valve", "BV-1", "brass", 2)
	assert.NoError(t, err)
}
