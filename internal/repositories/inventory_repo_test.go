package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardwarestore/internal/common"
	"hardwarestore/testhelpers"
)

func TestDecrementIfAvailableGuardsStock(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	id := testhelpers.SetupTestItem(t, db, testhelpers.ItemFixture{Name: "Hose Clamp", Quantity: 3})
	repo := NewInventoryRepo(db.Store)

	ok, err := repo.DecrementIfAvailable(ctx, id, 4)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, testhelpers.ItemQuantity(t, db, id))

	ok, err = repo.DecrementIfAvailable(ctx, id, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, testhelpers.ItemQuantity(t, db, id))

	require.NoError(t, repo.Increment(ctx, id, 5))
	assert.Equal(t, 5, testhelpers.ItemQuantity(t, db, id))

	err = repo.Increment(ctx, 999, 1)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestGetQuantityMissingItem(t *testing.T) {
	db := testhelpers.SetupTestDB(t)

	_, err := NewInventoryRepo(db.Store).GetQuantity(context.Background(), 42)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestDuplicateSKURejected(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	testhelpers.SetupTestItem(t, db, testhelpers.ItemFixture{Name: "Gate Valve", SKU: testhelpers.StringPtr("GV-1")})

	_, err := db.Store.Run(context.Background(), `INSERT INTO inventory (name, sku) VALUES ('Copy', 'GV-1')`)
	assert.Error(t, err)
}

func TestCategoryFindByNameIgnoresCaseAndSpaces(t *testing.T) {
	db := testhelpers.SetupTestDB(t)

	category, err := NewCategoryRepo(db.Store).FindByName(context.Background(), "  safety equipment ")
	require.NoError(t, err)
	assert.Equal(t, "Safety Equipment", category.Name)

	_, err = NewCategoryRepo(db.Store).FindByName(context.Background(), "Garden")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestBackupRepoRejectsUnknownTable(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewBackupRepo(db.Store)

	_, err := repo.Count(context.Background(), "users")
	assert.Error(t, err)
	assert.Error(t, repo.Clear(context.Background(), "users; DROP TABLE sales"))
}
