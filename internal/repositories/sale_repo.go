package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/pkg/database"
)

type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, id int64) (*models.Sale, error)
	Update(ctx context.Context, id int64, update models.SaleUpdate, total decimal.Decimal) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit int) ([]*models.Sale, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.Sale, error)
	ListByPaymentMethod(ctx context.Context, method string) ([]*models.Sale, error)
	ListByCustomer(ctx context.Context, customer string) ([]*models.Sale, error)
	Summary(ctx context.Context) (*models.SalesSummary, error)
	TopItems(ctx context.Context, limit int) ([]models.TopItem, error)
}

type saleRepo struct {
	db database.Querier
}

func NewSaleRepo(db database.Querier) SaleRepository {
	return &saleRepo{db: db}
}

const saleColumns = `
	s.id, s.item_id, i.name, s.quantity, s.unit_price, s.total_price, s.customer_name, s.customer_phone,
	s.staff_id, st.name, s.payment_method, s.notes, s.sale_date
	FROM sales s
	LEFT JOIN inventory i ON i.id = s.item_id
	LEFT JOIN staff st ON st.id = s.staff_id
`

func scanSale(row scanner, sale *models.Sale) error {
	return row.Scan(&sale.ID, &sale.ItemID, &sale.ItemName, &sale.Quantity, &sale.UnitPrice, &sale.TotalPrice,
		&sale.CustomerName, &sale.CustomerPhone, &sale.StaffID, &sale.StaffName, &sale.PaymentMethod,
		&sale.Notes, &sale.SaleDate)
}

func (r *saleRepo) listSales(ctx context.Context, query string, args ...any) ([]*models.Sale, error) {
	rows, err := r.db.All(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		sale := &models.Sale{}
		if err := scanSale(rows, sale); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (r *saleRepo) Create(ctx context.Context, sale *models.Sale) error {
	query := `
		INSERT INTO sales (item_id, quantity, unit_price, total_price, customer_name, customer_phone, staff_id, payment_method, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.Run(ctx, query, sale.ItemID, sale.Quantity, sale.UnitPrice, sale.TotalPrice, sale.CustomerName,
		sale.CustomerPhone, sale.StaffID, sale.PaymentMethod, sale.Notes)
	if err != nil {
		return err
	}
	sale.ID = res.InsertedID
	return nil
}

func (r *saleRepo) GetByID(ctx context.Context, id int64) (*models.Sale, error) {
	sale := &models.Sale{}
	if err := scanSale(r.db.Get(ctx, `SELECT `+saleColumns+` WHERE s.id = ?`, id), sale); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, common.NotFound("sale")
		}
		return nil, err
	}
	return sale, nil
}

// Update writes the changed fields together with the recomputed total.
func (r *saleRepo) Update(ctx context.Context, id int64, update models.SaleUpdate, total decimal.Decimal) error {
	set := newSetClause()
	addField(set, "quantity", update.Quantity)
	addField(set, "unit_price", update.UnitPrice)
	addField(set, "customer_name", update.CustomerName)
	addField(set, "customer_phone", update.CustomerPhone)
	addField(set, "staff_id", update.StaffID)
	addField(set, "payment_method", update.PaymentMethod)
	addField(set, "notes", update.Notes)
	if set.empty() {
		return common.ValidationError("body", "no fields to update")
	}
	set.raw("total_price = ?", total)

	res, err := r.db.Run(ctx, `UPDATE sales SET `+set.sql()+` WHERE id = ?`, append(set.args, id)...)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("sale")
	}
	return nil
}

func (r *saleRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Run(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("sale")
	}
	return nil
}

// List returns the newest sales first; a non-positive limit returns all of them.
func (r *saleRepo) List(ctx context.Context, limit int) ([]*models.Sale, error) {
	if limit <= 0 {
		return r.listSales(ctx, `SELECT `+saleColumns+` ORDER BY s.sale_date DESC, s.id DESC`)
	}
	return r.listSales(ctx, `SELECT `+saleColumns+` ORDER BY s.sale_date DESC, s.id DESC LIMIT ?`, limit)
}

// ListByDateRange returns sales on the calendar days from through to, inclusive.
func (r *saleRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.Sale, error) {
	query := `SELECT ` + saleColumns + `
		WHERE s.sale_date >= ? AND s.sale_date < ?
		ORDER BY s.sale_date DESC, s.id DESC`
	return r.listSales(ctx, query, database.FormatDate(from), database.FormatDate(to.AddDate(0, 0, 1)))
}

func (r *saleRepo) ListByPaymentMethod(ctx context.Context, method string) ([]*models.Sale, error) {
	query := `SELECT ` + saleColumns + `
		WHERE LOWER(s.payment_method) = LOWER(?)
		ORDER BY s.sale_date DESC, s.id DESC`
	return r.listSales(ctx, query, method)
}

func (r *saleRepo) ListByCustomer(ctx context.Context, customer string) ([]*models.Sale, error) {
	query := `SELECT ` + saleColumns + `
		WHERE LOWER(s.customer_name) LIKE LOWER(?)
		ORDER BY s.sale_date DESC, s.id DESC`
	return r.listSales(ctx, query, likePattern(customer))
}

func (r *saleRepo) Summary(ctx context.Context) (*models.SalesSummary, error) {
	summary := &models.SalesSummary{}
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_price), 0), COALESCE(SUM(quantity), 0), COALESCE(AVG(total_price), 0)
		FROM sales
	`
	err := r.db.Get(ctx, query).Scan(&summary.TotalSales, &summary.TotalRevenue, &summary.TotalItemsSold, &summary.AverageSale)
	if err != nil {
		return nil, err
	}
	summary.AverageSale = summary.AverageSale.Round(2)
	return summary, nil
}

func (r *saleRepo) TopItems(ctx context.Context, limit int) ([]models.TopItem, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT s.item_id, COALESCE(i.name, ''), SUM(s.quantity), SUM(s.total_price), COUNT(*)
		FROM sales s
		LEFT JOIN inventory i ON i.id = s.item_id
		GROUP BY s.item_id, i.name
		ORDER BY SUM(s.quantity) DESC
		LIMIT ?
	`
	rows, err := r.db.All(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.TopItem
	for rows.Next() {
		var item models.TopItem
		if err := rows.Scan(&item.ItemID, &item.ItemName, &item.QuantitySold, &item.Revenue, &item.SaleCount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
