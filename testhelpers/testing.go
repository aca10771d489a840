package testhelpers

import (
	"context"
	"testing"

	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

// TestDB holds an initialized store for testing
type TestDB struct {
	Store   database.Store
	Cleanup func() error
}

// SetupTestDB opens a private in-memory embedded database with the full schema and seed data
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()
	store, err := database.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.InitSchema(ctx, store, database.SeedOptions{AdminUsername: "admin", AdminPassword: "admin123"}, logger.Nop()); err != nil {
		store.Close()
		t.Fatalf("Failed to initialize test schema: %v", err)
	}

	db := &TestDB{Store: store, Cleanup: store.Close}
	t.Cleanup(func() { _ = db.Cleanup() })
	return db
}

// ItemFixture describes an inventory row to insert
type ItemFixture struct {
	Name        string
	CategoryID  *int64
	SKU         *string
	Quantity    int
	MinQuantity int
	UnitPrice   string
	Supplier    *string
}

// SetupTestCategory creates a category and returns its id
func SetupTestCategory(t *testing.T, db *TestDB, name string) int64 {
	t.Helper()

	res, err := db.Store.Run(context.Background(), `INSERT INTO categories (name, description) VALUES (?, ?)`, name, "Test description")
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return res.InsertedID
}

// SetupTestItem creates an inventory item and returns its id
func SetupTestItem(t *testing.T, db *TestDB, item ItemFixture) int64 {
	t.Helper()

	if item.Name == "" {
		item.Name = "Test Item"
	}
	if item.UnitPrice == "" {
		item.UnitPrice = "9.99"
	}
	query := `
		INSERT INTO inventory (name, category_id, sku, quantity, min_quantity, unit_price, supplier)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := db.Store.Run(context.Background(), query, item.Name, item.CategoryID, item.SKU, item.Quantity,
		item.MinQuantity, item.UnitPrice, item.Supplier)
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}
	return res.InsertedID
}

// SetupTestStaff creates an active staff member and returns its id
func SetupTestStaff(t *testing.T, db *TestDB, name string) int64 {
	t.Helper()

	res, err := db.Store.Run(context.Background(), `INSERT INTO staff (name, position, department) VALUES (?, ?, ?)`,
		name, "Clerk", "Sales")
	if err != nil {
		t.Fatalf("Failed to create test staff: %v", err)
	}
	return res.InsertedID
}

// SetupTestBudget creates a budget row for category and a YYYY-MM period
func SetupTestBudget(t *testing.T, db *TestDB, category, period, amount string) int64 {
	t.Helper()

	res, err := db.Store.Run(context.Background(), `INSERT INTO budget (category, amount, spent, month_year) VALUES (?, ?, 0, ?)`,
		category, amount, period)
	if err != nil {
		t.Fatalf("Failed to create test budget: %v", err)
	}
	return res.InsertedID
}

// ItemQuantity reads the current quantity of an item
func ItemQuantity(t *testing.T, db *TestDB, id int64) int {
	t.Helper()

	var quantity int
	if err := db.Store.Get(context.Background(), `SELECT quantity FROM inventory WHERE id = ?`, id).Scan(&quantity); err != nil {
		t.Fatalf("Failed to read item quantity: %v", err)
	}
	return quantity
}

// CountRows counts the rows of table
func CountRows(t *testing.T, db *TestDB, table string) int {
	t.Helper()

	var n int
	if err := db.Store.Get(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

func StringPtr(s string) *string {
	return &s
}

func Int64Ptr(v int64) *int64 {
	return &v
}
