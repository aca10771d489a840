package repositories

import (
	"context"
	"errors"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/pkg/database"
)

type InventoryRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	GetByID(ctx context.Context, id int64) (*models.InventoryItem, error)
	Update(ctx context.Context, id int64, update models.InventoryUpdate) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.InventoryItem, error)
	Search(ctx context.Context, term string) ([]*models.InventoryItem, error)
	LowStock(ctx context.Context) ([]*models.InventoryItem, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*models.InventoryItem, error)

	// Stock primitives used by the ledger and by sales.
	GetQuantity(ctx context.Context, id int64) (int, error)
	SetQuantity(ctx context.Context, id int64, quantity int) error
	DecrementIfAvailable(ctx context.Context, id int64, quantity int) (bool, error)
	Increment(ctx context.Context, id int64, quantity int) error
	CountSales(ctx context.Context, id int64) (int, error)
}

type inventoryRepo struct {
	db database.Querier
}

func NewInventoryRepo(db database.Querier) InventoryRepository {
	return &inventoryRepo{db: db}
}

const inventoryColumns = `
	i.id, i.name, i.description, i.category_id, c.name, i.sku, i.quantity, i.min_quantity,
	i.unit_price, i.supplier, i.location, i.created_at, i.updated_at
	FROM inventory i
	LEFT JOIN categories c ON c.id = i.category_id
`

// lowStockCondition is the single low-stock rule used by every query.
const lowStockCondition = `i.min_quantity > 0 AND i.quantity <= i.min_quantity`

func scanItem(row scanner, item *models.InventoryItem) error {
	return row.Scan(&item.ID, &item.Name, &item.Description, &item.CategoryID, &item.CategoryName,
		&item.SKU, &item.Quantity, &item.MinQuantity, &item.UnitPrice, &item.Supplier, &item.Location,
		&item.CreatedAt, &item.UpdatedAt)
}

func (r *inventoryRepo) listItems(ctx context.Context, query string, args ...any) ([]*models.InventoryItem, error) {
	rows, err := r.db.All(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		item := &models.InventoryItem{}
		if err := scanItem(rows, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *inventoryRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory (name, description, category_id, sku, quantity, min_quantity, unit_price, supplier, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.Run(ctx, query, item.Name, item.Description, item.CategoryID, item.SKU, item.Quantity,
		item.MinQuantity, item.UnitPrice, item.Supplier, item.Location)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return common.DuplicateName("sku", common.SafeString(item.SKU))
		}
		return err
	}
	item.ID = res.InsertedID
	return nil
}

func (r *inventoryRepo) GetByID(ctx context.Context, id int64) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	query := `SELECT ` + inventoryColumns + ` WHERE i.id = ?`
	if err := scanItem(r.db.Get(ctx, query, id), item); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, common.NotFound("inventory item")
		}
		return nil, err
	}
	return item, nil
}

func (r *inventoryRepo) Update(ctx context.Context, id int64, update models.InventoryUpdate) error {
	set := newSetClause()
	addField(set, "name", update.Name)
	addField(set, "description", update.Description)
	addField(set, "category_id", update.CategoryID)
	addField(set, "sku", update.SKU)
	addField(set, "quantity", update.Quantity)
	addField(set, "min_quantity", update.MinQuantity)
	addField(set, "unit_price", update.UnitPrice)
	addField(set, "supplier", update.Supplier)
	addField(set, "location", update.Location)
	if set.empty() {
		return common.ValidationError("body", "no fields to update")
	}
	set.raw("updated_at = CURRENT_TIMESTAMP")

	query := `UPDATE inventory SET ` + set.sql() + ` WHERE id = ?`
	res, err := r.db.Run(ctx, query, append(set.args, id)...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return common.DuplicateName("sku", common.SafeString(update.SKU))
		}
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("inventory item")
	}
	return nil
}

func (r *inventoryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Run(ctx, `DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("inventory item")
	}
	return nil
}

func (r *inventoryRepo) List(ctx context.Context) ([]*models.InventoryItem, error) {
	return r.listItems(ctx, `SELECT `+inventoryColumns+` ORDER BY i.name`)
}

// Search matches name, description and SKU case-insensitively.
func (r *inventoryRepo) Search(ctx context.Context, term string) ([]*models.InventoryItem, error) {
	pattern := likePattern(term)
	query := `SELECT ` + inventoryColumns + `
		WHERE LOWER(i.name) LIKE LOWER(?)
		   OR LOWER(COALESCE(i.description, '')) LIKE LOWER(?)
		   OR LOWER(COALESCE(i.sku, '')) LIKE LOWER(?)
		ORDER BY i.name`
	return r.listItems(ctx, query, pattern, pattern, pattern)
}

// LowStock lists items at or below their threshold, largest shortfall first.
func (r *inventoryRepo) LowStock(ctx context.Context) ([]*models.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + `
		WHERE ` + lowStockCondition + `
		ORDER BY (i.min_quantity - i.quantity) DESC, i.name`
	return r.listItems(ctx, query)
}

func (r *inventoryRepo) ListByCategory(ctx context.Context, categoryID int64) ([]*models.InventoryItem, error) {
	return r.listItems(ctx, `SELECT `+inventoryColumns+` WHERE i.category_id = ? ORDER BY i.name`, categoryID)
}

func (r *inventoryRepo) GetQuantity(ctx context.Context, id int64) (int, error) {
	var quantity int
	err := r.db.Get(ctx, `SELECT quantity FROM inventory WHERE id = ?`, id).Scan(&quantity)
	if errors.Is(err, database.ErrNoRows) {
		return 0, common.NotFound("inventory item")
	}
	return quantity, err
}

func (r *inventoryRepo) SetQuantity(ctx context.Context, id int64, quantity int) error {
	res, err := r.db.Run(ctx, `UPDATE inventory SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, quantity, id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("inventory item")
	}
	return nil
}

// DecrementIfAvailable subtracts quantity only while enough stock remains.
// It reports false when the guard rejected the update.
func (r *inventoryRepo) DecrementIfAvailable(ctx context.Context, id int64, quantity int) (bool, error) {
	query := `
		UPDATE inventory
		SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity >= ?
	`
	res, err := r.db.Run(ctx, query, quantity, id, quantity)
	if err != nil {
		return false, err
	}
	return res.RowsAffected == 1, nil
}

func (r *inventoryRepo) Increment(ctx context.Context, id int64, quantity int) error {
	res, err := r.db.Run(ctx, `UPDATE inventory SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, quantity, id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("inventory item")
	}
	return nil
}

func (r *inventoryRepo) CountSales(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.Get(ctx, `SELECT COUNT(*) FROM sales WHERE item_id = ?`, id).Scan(&count)
	return count, err
}
