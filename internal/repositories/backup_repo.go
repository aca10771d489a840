package repositories

import (
	"context"
	"fmt"
	"time"

	"hardwarestore/internal/models"
	"hardwarestore/pkg/database"
)

// BackupTables lists backed-up tables in the order they are restored.
// Clearing runs in the reverse order.
var BackupTables = []string{"categories", "staff", "inventory", "sales", "budget"}

// BackupRepository writes rows with their original ids, for restore and migration.
type BackupRepository interface {
	Count(ctx context.Context, table string) (int64, error)
	Clear(ctx context.Context, table string) error
	InsertCategory(ctx context.Context, c *models.Category) error
	InsertStaff(ctx context.Context, s *models.Staff) error
	InsertItem(ctx context.Context, i *models.InventoryItem) error
	InsertSale(ctx context.Context, s *models.Sale) error
	InsertBudget(ctx context.Context, b *models.Budget) error
	SyncSequence(ctx context.Context, table string) error
}

type backupRepo struct {
	db     database.Store
	layout budgetLayout
}

func NewBackupRepo(db database.Store) BackupRepository {
	layout := sqliteBudgetLayout
	if db.Backend() == database.BackendPostgres {
		layout = postgresBudgetLayout
	}
	return &backupRepo{db: db, layout: layout}
}

func checkTable(table string) error {
	for _, t := range BackupTables {
		if t == table {
			return nil
		}
	}
	return fmt.Errorf("table %q is not part of backups", table)
}

func timeArg(t time.Time) any {
	if t.IsZero() {
		t = time.Now()
	}
	return database.FormatTime(t)
}

func (r *backupRepo) Count(ctx context.Context, table string) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	var n int64
	err := r.db.Get(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

func (r *backupRepo) Clear(ctx context.Context, table string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	_, err := r.db.Run(ctx, `DELETE FROM `+table)
	return err
}

func (r *backupRepo) InsertCategory(ctx context.Context, c *models.Category) error {
	_, err := r.db.Run(ctx, `INSERT INTO categories (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, timeArg(c.CreatedAt))
	return err
}

func (r *backupRepo) InsertStaff(ctx context.Context, s *models.Staff) error {
	status := s.Status
	if status == "" {
		status = models.StaffActive
	}
	_, err := r.db.Run(ctx, `
		INSERT INTO staff (id, name, email, phone, position, department, hire_date, salary, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Email, s.Phone, s.Position, s.Department, dateArg(s.HireDate), s.Salary, status, timeArg(s.CreatedAt))
	return err
}

func (r *backupRepo) InsertItem(ctx context.Context, i *models.InventoryItem) error {
	_, err := r.db.Run(ctx, `
		INSERT INTO inventory (id, name, description, category_id, sku, quantity, min_quantity, unit_price, supplier, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.Name, i.Description, i.CategoryID, i.SKU, i.Quantity, i.MinQuantity, i.UnitPrice, i.Supplier, i.Location,
		timeArg(i.CreatedAt), timeArg(i.UpdatedAt))
	return err
}

func (r *backupRepo) InsertSale(ctx context.Context, s *models.Sale) error {
	_, err := r.db.Run(ctx, `
		INSERT INTO sales (id, item_id, quantity, unit_price, total_price, customer_name, customer_phone, staff_id, payment_method, notes, sale_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.ItemID, s.Quantity, s.UnitPrice, s.TotalPrice, s.CustomerName, s.CustomerPhone, s.StaffID,
		s.PaymentMethod, s.Notes, timeArg(s.SaleDate))
	return err
}

func (r *backupRepo) InsertBudget(ctx context.Context, b *models.Budget) error {
	placeholders := "?"
	if !r.layout.combined {
		placeholders = "?, ?"
	}
	query := fmt.Sprintf(`INSERT INTO budget (id, category, %s, %s, %s, created_at) VALUES (?, ?, ?, ?, %s, ?)`,
		r.layout.amount, r.layout.spent, r.layout.period, placeholders)
	args := []any{b.ID, b.Category, b.Amount, b.Spent}
	args = append(args, r.layout.periodArgs(b.Period)...)
	args = append(args, timeArg(b.CreatedAt))
	_, err := r.db.Run(ctx, query, args...)
	return err
}

func (r *backupRepo) SyncSequence(ctx context.Context, table string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	return r.db.SyncSequence(ctx, table)
}
