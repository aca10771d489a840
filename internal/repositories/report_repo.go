package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"hardwarestore/internal/models"
	"hardwarestore/pkg/database"
)

// SalePoint is one sale reduced to when it happened and what it earned.
type SalePoint struct {
	Date  time.Time
	Total decimal.Decimal
}

type ReportRepository interface {
	InventorySummary(ctx context.Context) (*models.InventorySummary, error)
	InventoryByCategory(ctx context.Context) ([]models.CategoryInventory, error)
	SalesByDate(ctx context.Context, from, to time.Time) ([]models.DailySales, error)
	SalesRevenue(ctx context.Context, since time.Time) (decimal.Decimal, error)
	SalePoints(ctx context.Context, from, to time.Time) ([]SalePoint, error)
	CustomerHistory(ctx context.Context, limit int) ([]models.CustomerHistory, error)
	ProfitMargins(ctx context.Context) ([]models.ProfitMargin, error)
	SupplierPerformance(ctx context.Context) ([]models.SupplierPerformance, error)
	SalesByCategory(ctx context.Context) ([]models.CategorySales, error)
}

type reportRepo struct {
	db database.Querier
}

func NewReportRepo(db database.Querier) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) InventorySummary(ctx context.Context) (*models.InventorySummary, error) {
	s := &models.InventorySummary{}
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(i.quantity), 0),
			COALESCE(SUM(i.quantity * i.unit_price), 0),
			COALESCE(SUM(CASE WHEN ` + lowStockCondition + ` THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN i.quantity = 0 THEN 1 ELSE 0 END), 0)
		FROM inventory i
	`
	err := r.db.Get(ctx, query).Scan(&s.TotalItems, &s.TotalQuantity, &s.TotalValue, &s.LowStockCount, &s.OutOfStock)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *reportRepo) InventoryByCategory(ctx context.Context) ([]models.CategoryInventory, error) {
	query := `
		SELECT COALESCE(c.name, 'Uncategorized'), COUNT(i.id),
			COALESCE(SUM(i.quantity), 0), COALESCE(SUM(i.quantity * i.unit_price), 0)
		FROM inventory i
		LEFT JOIN categories c ON c.id = i.category_id
		GROUP BY COALESCE(c.name, 'Uncategorized')
		ORDER BY COALESCE(c.name, 'Uncategorized')
	`
	rows, err := r.db.All(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CategoryInventory
	for rows.Next() {
		var c models.CategoryInventory
		if err := rows.Scan(&c.Category, &c.ItemCount, &c.TotalQuantity, &c.TotalValue); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SalesByDate groups sales between the calendar days from and to, inclusive.
func (r *reportRepo) SalesByDate(ctx context.Context, from, to time.Time) ([]models.DailySales, error) {
	query := `
		SELECT CAST(DATE(sale_date) AS TEXT), COUNT(*), COALESCE(SUM(quantity), 0), COALESCE(SUM(total_price), 0)
		FROM sales
		WHERE sale_date >= ? AND sale_date < ?
		GROUP BY CAST(DATE(sale_date) AS TEXT)
		ORDER BY CAST(DATE(sale_date) AS TEXT)
	`
	rows, err := r.db.All(ctx, query, database.FormatDate(from), database.FormatDate(to.AddDate(0, 0, 1)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DailySales
	for rows.Next() {
		var d models.DailySales
		if err := rows.Scan(&d.Date, &d.SaleCount, &d.ItemsSold, &d.Revenue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *reportRepo) SalesRevenue(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(total_price), 0) FROM sales`
	var args []any
	if !since.IsZero() {
		query += ` WHERE sale_date >= ?`
		args = append(args, database.FormatTime(since))
	}
	err := r.db.Get(ctx, query, args...).Scan(&total)
	return total, err
}

// SalePoints returns every sale in [from, to); zero bounds are open.
func (r *reportRepo) SalePoints(ctx context.Context, from, to time.Time) ([]SalePoint, error) {
	query := `SELECT sale_date, total_price FROM sales WHERE 1 = 1`
	var args []any
	if !from.IsZero() {
		query += ` AND sale_date >= ?`
		args = append(args, database.FormatTime(from))
	}
	if !to.IsZero() {
		query += ` AND sale_date < ?`
		args = append(args, database.FormatTime(to))
	}
	query += ` ORDER BY sale_date`

	rows, err := r.db.All(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SalePoint
	for rows.Next() {
		var p SalePoint
		if err := rows.Scan(&p.Date, &p.Total); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *reportRepo) CustomerHistory(ctx context.Context, limit int) ([]models.CustomerHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT customer_name, MAX(customer_phone), COUNT(*), COALESCE(SUM(total_price), 0), CAST(MAX(sale_date) AS TEXT)
		FROM sales
		GROUP BY customer_name
		ORDER BY COALESCE(SUM(total_price), 0) DESC
		LIMIT ?
	`
	rows, err := r.db.All(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CustomerHistory
	for rows.Next() {
		var c models.CustomerHistory
		if err := rows.Scan(&c.CustomerName, &c.CustomerPhone, &c.PurchaseCount, &c.TotalSpent, &c.LastPurchase); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *reportRepo) ProfitMargins(ctx context.Context) ([]models.ProfitMargin, error) {
	query := `
		SELECT i.id, i.name, i.unit_price, COALESCE(AVG(s.unit_price), 0),
			COALESCE(SUM(s.quantity), 0), COALESCE(SUM(s.total_price), 0)
		FROM inventory i
		JOIN sales s ON s.item_id = i.id
		GROUP BY i.id, i.name, i.unit_price
		ORDER BY COALESCE(SUM(s.total_price), 0) DESC
	`
	rows, err := r.db.All(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hundred := decimal.NewFromInt(100)
	var out []models.ProfitMargin
	for rows.Next() {
		var m models.ProfitMargin
		if err := rows.Scan(&m.ItemID, &m.ItemName, &m.ListPrice, &m.AverageSold, &m.QuantitySold, &m.Revenue); err != nil {
			return nil, err
		}
		m.AverageSold = m.AverageSold.Round(2)
		if !m.AverageSold.IsZero() {
			m.MarginPercent = m.AverageSold.Sub(m.ListPrice).Div(m.AverageSold).Mul(hundred).Round(2)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *reportRepo) SupplierPerformance(ctx context.Context) ([]models.SupplierPerformance, error) {
	query := `
		SELECT COALESCE(i.supplier, 'Unknown'), COUNT(*), COALESCE(SUM(i.quantity * i.unit_price), 0),
			COALESCE(SUM(sq.qty), 0), COALESCE(SUM(sq.revenue), 0)
		FROM inventory i
		LEFT JOIN (
			SELECT item_id, SUM(quantity) AS qty, SUM(total_price) AS revenue
			FROM sales
			GROUP BY item_id
		) sq ON sq.item_id = i.id
		GROUP BY COALESCE(i.supplier, 'Unknown')
		ORDER BY COALESCE(SUM(sq.revenue), 0) DESC
	`
	rows, err := r.db.All(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SupplierPerformance
	for rows.Next() {
		var s models.SupplierPerformance
		if err := rows.Scan(&s.Supplier, &s.ItemCount, &s.StockValue, &s.QuantitySold, &s.Revenue); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *reportRepo) SalesByCategory(ctx context.Context) ([]models.CategorySales, error) {
	query := `
		SELECT COALESCE(c.name, 'Uncategorized'), COUNT(s.id), COALESCE(SUM(s.quantity), 0), COALESCE(SUM(s.total_price), 0)
		FROM sales s
		LEFT JOIN inventory i ON i.id = s.item_id
		LEFT JOIN categories c ON c.id = i.category_id
		GROUP BY COALESCE(c.name, 'Uncategorized')
		ORDER BY COALESCE(SUM(s.total_price), 0) DESC
	`
	rows, err := r.db.All(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CategorySales
	for rows.Next() {
		var c models.CategorySales
		if err := rows.Scan(&c.Category, &c.SaleCount, &c.QuantitySold, &c.Revenue); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
