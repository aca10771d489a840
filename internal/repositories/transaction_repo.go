package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"hardwarestore/internal/models"
	"hardwarestore/pkg/database"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	List(ctx context.Context, limit int) ([]*models.Transaction, error)
	ListByType(ctx context.Context, txType models.TransactionType) ([]*models.Transaction, error)
	ListByCategory(ctx context.Context, category string) ([]*models.Transaction, error)
	// Totals sums amounts of txType recorded from since onward; a zero since means all time.
	Totals(ctx context.Context, txType models.TransactionType, since time.Time) (decimal.Decimal, error)
}

type transactionRepo struct {
	db database.Querier
}

func NewTransactionRepo(db database.Querier) TransactionRepository {
	return &transactionRepo{db: db}
}

const transactionColumns = `
	t.id, t.type, t.amount, t.description, t.category, t.date, t.staff_id, st.name
	FROM transactions t
	LEFT JOIN staff st ON st.id = t.staff_id
`

func (r *transactionRepo) listTransactions(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.db.All(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		t := &models.Transaction{}
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Description, &t.Category, &t.Date, &t.StaffID, &t.StaffName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	query := `INSERT INTO transactions (type, amount, description, category, date, staff_id) VALUES (?, ?, ?, ?, ?, ?)`
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	res, err := r.db.Run(ctx, query, t.Type, t.Amount, t.Description, t.Category, database.FormatTime(t.Date), t.StaffID)
	if err != nil {
		return err
	}
	t.ID = res.InsertedID
	return nil
}

func (r *transactionRepo) List(ctx context.Context, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.listTransactions(ctx, `SELECT `+transactionColumns+` ORDER BY t.date DESC, t.id DESC LIMIT ?`, limit)
}

func (r *transactionRepo) ListByType(ctx context.Context, txType models.TransactionType) ([]*models.Transaction, error) {
	return r.listTransactions(ctx, `SELECT `+transactionColumns+` WHERE t.type = ? ORDER BY t.date DESC, t.id DESC`, txType)
}

func (r *transactionRepo) ListByCategory(ctx context.Context, category string) ([]*models.Transaction, error) {
	return r.listTransactions(ctx, `SELECT `+transactionColumns+` WHERE t.category = ? ORDER BY t.date DESC, t.id DESC`, category)
}

func (r *transactionRepo) Totals(ctx context.Context, txType models.TransactionType, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = ?`
	args := []any{txType}
	if !since.IsZero() {
		query += ` AND date >= ?`
		args = append(args, database.FormatTime(since))
	}
	err := r.db.Get(ctx, query, args...).Scan(&total)
	return total, err
}
