package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/pkg/database"
)

type BudgetRepository interface {
	Create(ctx context.Context, budget *models.Budget) error
	GetByID(ctx context.Context, id int64) (*models.Budget, error)
	Update(ctx context.Context, id int64, update models.BudgetUpdate) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Budget, error)
	ListByCategory(ctx context.Context, category string) ([]*models.Budget, error)
	ListByPeriod(ctx context.Context, period models.Period) ([]*models.Budget, error)
	Find(ctx context.Context, category string, period models.Period) (*models.Budget, error)
	// AddSpent increments spent on the row for category and period and reports
	// whether such a row existed.
	AddSpent(ctx context.Context, category string, period models.Period, amount decimal.Decimal) (bool, error)
	Summary(ctx context.Context) (*models.BudgetSummary, error)
}

// budgetLayout maps the budget entity onto one backend's columns. The embedded
// file stores the period as a "YYYY-MM" label, the hosted database as month and year.
type budgetLayout struct {
	amount   string
	spent    string
	period   string
	combined bool
}

var (
	sqliteBudgetLayout   = budgetLayout{amount: "amount", spent: "spent", period: "month_year", combined: true}
	postgresBudgetLayout = budgetLayout{amount: "allocated_amount", spent: "spent_amount", period: "month, year"}
)

func (l budgetLayout) periodWhere() string {
	if l.combined {
		return "month_year = ?"
	}
	return "month = ? AND year = ?"
}

func (l budgetLayout) periodArgs(p models.Period) []any {
	if l.combined {
		return []any{p.String()}
	}
	return []any{p.Month, p.Year}
}

func (l budgetLayout) periodOrder() string {
	if l.combined {
		return "month_year DESC"
	}
	return "year DESC, month DESC"
}

func (l budgetLayout) columns() string {
	return fmt.Sprintf("id, category, %s, %s, %s, created_at FROM budget", l.amount, l.spent, l.period)
}

type budgetRepo struct {
	db     database.Querier
	layout budgetLayout
}

func NewBudgetRepo(db database.Querier) BudgetRepository {
	layout := sqliteBudgetLayout
	if db.Backend() == database.BackendPostgres {
		layout = postgresBudgetLayout
	}
	return &budgetRepo{db: db, layout: layout}
}

func (r *budgetRepo) scan(row scanner, b *models.Budget) error {
	if r.layout.combined {
		var label string
		if err := row.Scan(&b.ID, &b.Category, &b.Amount, &b.Spent, &label, &b.CreatedAt); err != nil {
			return err
		}
		period, err := models.ParsePeriod(label)
		if err != nil {
			return fmt.Errorf("budget %d: %w", b.ID, err)
		}
		b.Period = period
		return nil
	}
	return row.Scan(&b.ID, &b.Category, &b.Amount, &b.Spent, &b.Period.Month, &b.Period.Year, &b.CreatedAt)
}

func (r *budgetRepo) listBudgets(ctx context.Context, query string, args ...any) ([]*models.Budget, error) {
	rows, err := r.db.All(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		b := &models.Budget{}
		if err := r.scan(rows, b); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *budgetRepo) Create(ctx context.Context, b *models.Budget) error {
	placeholders := "?"
	if !r.layout.combined {
		placeholders = "?, ?"
	}
	query := fmt.Sprintf(`INSERT INTO budget (category, %s, %s, %s) VALUES (?, ?, ?, %s)`,
		r.layout.amount, r.layout.spent, r.layout.period, placeholders)
	args := append([]any{b.Category, b.Amount, b.Spent}, r.layout.periodArgs(b.Period)...)

	res, err := r.db.Run(ctx, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return common.DuplicateName("budget", b.Category+" "+b.Period.String())
		}
		return err
	}
	b.ID = res.InsertedID
	return nil
}

func (r *budgetRepo) GetByID(ctx context.Context, id int64) (*models.Budget, error) {
	b := &models.Budget{}
	if err := r.scan(r.db.Get(ctx, `SELECT `+r.layout.columns()+` WHERE id = ?`, id), b); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, common.NotFound("budget")
		}
		return nil, err
	}
	return b, nil
}

func (r *budgetRepo) Update(ctx context.Context, id int64, update models.BudgetUpdate) error {
	set := newSetClause()
	addField(set, "category", update.Category)
	addField(set, r.layout.amount, update.Amount)
	addField(set, r.layout.spent, update.Spent)
	if update.Period != nil {
		if r.layout.combined {
			set.raw("month_year = ?", update.Period.String())
		} else {
			set.raw("month = ?", update.Period.Month)
			set.raw("year = ?", update.Period.Year)
		}
	}
	if set.empty() {
		return common.ValidationError("body", "no fields to update")
	}

	res, err := r.db.Run(ctx, `UPDATE budget SET `+set.sql()+` WHERE id = ?`, append(set.args, id)...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return common.NewError(common.CodeDuplicateName, "a budget for that category and period already exists")
		}
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("budget")
	}
	return nil
}

func (r *budgetRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Run(ctx, `DELETE FROM budget WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("budget")
	}
	return nil
}

func (r *budgetRepo) List(ctx context.Context) ([]*models.Budget, error) {
	return r.listBudgets(ctx, `SELECT `+r.layout.columns()+` ORDER BY `+r.layout.periodOrder()+`, category`)
}

func (r *budgetRepo) ListByCategory(ctx context.Context, category string) ([]*models.Budget, error) {
	query := `SELECT ` + r.layout.columns() + ` WHERE category = ? ORDER BY ` + r.layout.periodOrder()
	return r.listBudgets(ctx, query, category)
}

func (r *budgetRepo) ListByPeriod(ctx context.Context, period models.Period) ([]*models.Budget, error) {
	query := `SELECT ` + r.layout.columns() + ` WHERE ` + r.layout.periodWhere() + ` ORDER BY category`
	return r.listBudgets(ctx, query, r.layout.periodArgs(period)...)
}

func (r *budgetRepo) Find(ctx context.Context, category string, period models.Period) (*models.Budget, error) {
	b := &models.Budget{}
	query := `SELECT ` + r.layout.columns() + ` WHERE category = ? AND ` + r.layout.periodWhere()
	args := append([]any{category}, r.layout.periodArgs(period)...)
	if err := r.scan(r.db.Get(ctx, query, args...), b); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, common.NotFound("budget")
		}
		return nil, err
	}
	return b, nil
}

func (r *budgetRepo) AddSpent(ctx context.Context, category string, period models.Period, amount decimal.Decimal) (bool, error) {
	// rounded in SQL as well so the embedded backend stores whole cents
	query := fmt.Sprintf(`UPDATE budget SET %s = ROUND(%s + ?, 2) WHERE category = ? AND %s`,
		r.layout.spent, r.layout.spent, r.layout.periodWhere())
	args := append([]any{amount, category}, r.layout.periodArgs(period)...)
	res, err := r.db.Run(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return res.RowsAffected > 0, nil
}

func (r *budgetRepo) Summary(ctx context.Context) (*models.BudgetSummary, error) {
	summary := &models.BudgetSummary{}
	query := fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(%s), 0), COALESCE(SUM(%s), 0) FROM budget`,
		r.layout.amount, r.layout.spent)
	if err := r.db.Get(ctx, query).Scan(&summary.BudgetCount, &summary.TotalAllocated, &summary.TotalSpent); err != nil {
		return nil, err
	}
	summary.TotalRemaining = summary.TotalAllocated.Sub(summary.TotalSpent)
	return summary, nil
}
