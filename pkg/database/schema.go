package database

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"hardwarestore/pkg/logger"
)

// DefaultCategories are seeded on first start.
var DefaultCategories = []struct {
	Name        string
	Description string
}{
	{"Plumbing Supplies", "Pipes, fittings, fixtures and plumbing tools"},
	{"Electrical Supplies", "Wire, switches, outlets and breakers"},
	{"Tools", "Hand and power tools"},
	{"Fasteners", "Screws, bolts, nuts, anchors and nails"},
	{"Pipes & Fittings", "PVC, copper and galvanized pipe with fittings"},
	{"Valves", "Ball, gate, check and shutoff valves"},
	{"Pumps", "Water, sump and transfer pumps"},
	{"Safety Equipment", "Gloves, glasses, masks and protective gear"},
	{"Other", "Miscellaneous items"},
}

// SeedOptions controls the administrator account created on first start.
type SeedOptions struct {
	AdminUsername string
	AdminPassword string
}

// Tables lists every table in reference order.
var Tables = []string{"users", "staff", "categories", "inventory", "sales", "budget", "transactions"}

var sqliteTables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'staff')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS staff (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		position TEXT,
		department TEXT,
		hire_date DATE,
		salary DECIMAL(12,2),
		status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'terminated')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
		sku TEXT,
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		min_quantity INTEGER NOT NULL DEFAULT 0,
		unit_price DECIMAL(10,2) NOT NULL DEFAULT 0,
		supplier TEXT,
		location TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL REFERENCES inventory(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price DECIMAL(10,2) NOT NULL,
		total_price DECIMAL(12,2) NOT NULL,
		customer_name TEXT NOT NULL,
		customer_phone TEXT,
		staff_id INTEGER REFERENCES staff(id) ON DELETE SET NULL,
		payment_method TEXT,
		notes TEXT,
		sale_date DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS budget (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		spent DECIMAL(12,2) NOT NULL DEFAULT 0,
		month_year TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL CHECK (type IN ('expense', 'income')),
		amount DECIMAL(12,2) NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		date DATETIME DEFAULT CURRENT_TIMESTAMP,
		staff_id INTEGER REFERENCES staff(id) ON DELETE SET NULL
	)`,
}

// sqliteEvolutions bring files created by older releases up to date.
// Most fail with "duplicate column" on a current file.
var sqliteEvolutions = []string{
	`ALTER TABLE inventory ADD COLUMN description TEXT`,
	`ALTER TABLE inventory ADD COLUMN sku TEXT`,
	`ALTER TABLE inventory ADD COLUMN min_quantity INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE sales ADD COLUMN customer_phone TEXT`,
	`ALTER TABLE sales ADD COLUMN notes TEXT`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name ON categories (LOWER(TRIM(name)))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_sku ON inventory (sku)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_budget_period ON budget (category, month_year)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (sale_date)`,
}

var postgresTables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'staff')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS staff (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255),
		phone VARCHAR(50),
		position VARCHAR(100),
		department VARCHAR(100),
		hire_date DATE,
		salary NUMERIC(12,2),
		status VARCHAR(20) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'terminated')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		unit_price NUMERIC(10,2) NOT NULL DEFAULT 0,
		supplier VARCHAR(255),
		location VARCHAR(255),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id SERIAL PRIMARY KEY,
		item_id INTEGER NOT NULL REFERENCES inventory(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(10,2) NOT NULL,
		total_price NUMERIC(12,2) NOT NULL,
		customer_name VARCHAR(255) NOT NULL,
		staff_id INTEGER REFERENCES staff(id) ON DELETE SET NULL,
		payment_method VARCHAR(50),
		sale_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS budget (
		id SERIAL PRIMARY KEY,
		category VARCHAR(255) NOT NULL,
		allocated_amount NUMERIC(12,2) NOT NULL,
		spent_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		year INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (category, month, year)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id SERIAL PRIMARY KEY,
		type VARCHAR(20) NOT NULL CHECK (type IN ('expense', 'income')),
		amount NUMERIC(12,2) NOT NULL,
		description TEXT NOT NULL,
		category VARCHAR(255) NOT NULL,
		date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		staff_id INTEGER REFERENCES staff(id) ON DELETE SET NULL
	)`,
}

// postgresEvolutions cover databases created by the first hosted schema,
// which named the threshold column minimum_stock and lacked the later columns.
var postgresEvolutions = []string{
	`ALTER TABLE inventory RENAME COLUMN minimum_stock TO min_quantity`,
	`ALTER TABLE inventory ADD COLUMN IF NOT EXISTS description TEXT`,
	`ALTER TABLE inventory ADD COLUMN IF NOT EXISTS sku VARCHAR(100)`,
	`ALTER TABLE inventory ADD COLUMN IF NOT EXISTS min_quantity INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE sales ADD COLUMN IF NOT EXISTS customer_phone VARCHAR(50)`,
	`ALTER TABLE sales ADD COLUMN IF NOT EXISTS notes TEXT`,
	`ALTER TABLE users ALTER COLUMN email DROP NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name ON categories (LOWER(TRIM(name)))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_sku ON inventory (sku)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (sale_date)`,
}

// InitSchema creates missing tables, applies column evolutions and seeds
// reference data. It is safe to run on every start.
func InitSchema(ctx context.Context, store Store, seed SeedOptions, log *logger.Logger) error {
	tables, evolutions := sqliteTables, sqliteEvolutions
	if store.Backend() == BackendPostgres {
		tables, evolutions = postgresTables, postgresEvolutions
	}

	for i, ddl := range tables {
		if _, err := store.Run(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", Tables[i], err)
		}
	}

	for _, stmt := range evolutions {
		if _, err := store.Run(ctx, stmt); err != nil {
			log.Debug(log.WithField(ctx, "statement", stmt), "schema evolution skipped: "+err.Error())
		}
	}

	seeded := 0
	for _, c := range DefaultCategories {
		res, err := store.Run(ctx, `
			INSERT INTO categories (name, description)
			SELECT ?, ?
			WHERE NOT EXISTS (SELECT 1 FROM categories WHERE LOWER(TRIM(name)) = LOWER(TRIM(?)))`,
			c.Name, c.Description, c.Name)
		if err != nil {
			log.Warn(log.WithField(ctx, "category", c.Name), "seed category failed: "+err.Error())
			continue
		}
		seeded += int(res.RowsAffected)
	}
	if seeded > 0 {
		log.Info(log.WithField(ctx, "count", seeded), "seeded default categories")
	}

	return seedAdmin(ctx, store, seed, log)
}

func seedAdmin(ctx context.Context, store Store, seed SeedOptions, log *logger.Logger) error {
	if seed.AdminUsername == "" {
		seed.AdminUsername = "admin"
	}
	if seed.AdminPassword == "" {
		seed.AdminPassword = "admin123"
	}

	var id int64
	err := store.Get(ctx, `SELECT id FROM users WHERE username = ?`, seed.AdminUsername).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNoRows) {
		return fmt.Errorf("look up admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := store.Run(ctx, `INSERT INTO users (username, password, role) VALUES (?, ?, 'admin')`,
		seed.AdminUsername, string(hash)); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info(log.WithField(ctx, "username", seed.AdminUsername), "created default admin user")
	return nil
}
