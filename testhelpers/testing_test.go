package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupTestDBSeedsReferenceData(t *testing.T) {
	db := SetupTestDB(t)

	assert.Equal(t, 9, CountRows(t, db, "categories"))
	assert.Equal(t, 1, CountRows(t, db, "users"))
	assert.Equal(t, 0, CountRows(t, db, "inventory"))
}

func TestFixturesInsertRows(t *testing.T) {
	db := SetupTestDB(t)

	categoryID := SetupTestCategory(t, db, "Garden")
	itemID := SetupTestItem(t, db, ItemFixture{Name: "Hose", CategoryID: &categoryID, Quantity: 4})
	SetupTestStaff(t, db, "Dana")
	SetupTestBudget(t, db, "Tools", "2024-06", "500")

	assert.Equal(t, 4, ItemQuantity(t, db, itemID))
	assert.Equal(t, 1, CountRows(t, db, "staff"))
	assert.Equal(t, 1, CountRows(t, db, "budget"))
}
