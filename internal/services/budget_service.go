package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/repositories"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

// Clock returns the current time; tests substitute a fixed one.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

type BudgetService interface {
	List(ctx context.Context) ([]*models.Budget, error)
	Get(ctx context.Context, id int64) (*models.Budget, error)
	Create(ctx context.Context, budget *models.Budget) error
	Update(ctx context.Context, id int64, update models.BudgetUpdate) (*models.Budget, error)
	Delete(ctx context.Context, id int64) error
	ByCategory(ctx context.Context, category string) ([]*models.Budget, error)
	ByPeriod(ctx context.Context, period models.Period) ([]*models.Budget, error)
	Summary(ctx context.Context) (*models.BudgetSummary, error)
	VsActual(ctx context.Context, category string) (*models.BudgetVsActual, error)

	// RecordExpense adds amount to the spent total of the category's budget for period.
	// It is a no-op when no such budget exists.
	RecordExpense(ctx context.Context, category string, period models.Period, amount decimal.Decimal) error

	// RecordTransaction stores a ledger entry; an expense also counts against this month's budget.
	RecordTransaction(ctx context.Context, tx *models.Transaction) error
	Transactions(ctx context.Context, limit int) ([]*models.Transaction, error)
	TransactionsByType(ctx context.Context, txType models.TransactionType) ([]*models.Transaction, error)
	TransactionsByCategory(ctx context.Context, category string) ([]*models.Transaction, error)
}

type budgetService struct {
	store database.Store
	now   Clock
	log   *logger.Logger
}

func NewBudgetService(store database.Store, log *logger.Logger) BudgetService {
	return newBudgetService(store, systemClock, log)
}

func newBudgetService(store database.Store, now Clock, log *logger.Logger) *budgetService {
	return &budgetService{store: store, now: now, log: log}
}

func (s *budgetService) List(ctx context.Context) ([]*models.Budget, error) {
	return repositories.NewBudgetRepo(s.store).List(ctx)
}

func (s *budgetService) Get(ctx context.Context, id int64) (*models.Budget, error) {
	return repositories.NewBudgetRepo(s.store).GetByID(ctx, id)
}

func (s *budgetService) Create(ctx context.Context, budget *models.Budget) error {
	budget.Category = strings.TrimSpace(budget.Category)
	if budget.Category == "" {
		return common.ValidationError("category", "category is required")
	}
	if budget.Amount.IsNegative() {
		return common.ValidationError("amount", "amount must not be negative")
	}
	if budget.Spent.IsNegative() {
		return common.ValidationError("spent", "spent must not be negative")
	}
	if budget.Period.IsZero() {
		return common.ValidationError("period", "period is required")
	}

	repo := repositories.NewBudgetRepo(s.store)
	if err := repo.Create(ctx, budget); err != nil {
		return err
	}
	created, err := repo.GetByID(ctx, budget.ID)
	if err != nil {
		return err
	}
	*budget = *created
	return nil
}

func (s *budgetService) Update(ctx context.Context, id int64, update models.BudgetUpdate) (*models.Budget, error) {
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		if category == "" {
			return nil, common.ValidationError("category", "category must not be empty")
		}
		update.Category = &category
	}
	if update.Amount != nil && update.Amount.IsNegative() {
		return nil, common.ValidationError("amount", "amount must not be negative")
	}
	if update.Spent != nil && update.Spent.IsNegative() {
		return nil, common.ValidationError("spent", "spent must not be negative")
	}

	repo := repositories.NewBudgetRepo(s.store)
	if err := repo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

func (s *budgetService) Delete(ctx context.Context, id int64) error {
	return repositories.NewBudgetRepo(s.store).Delete(ctx, id)
}

func (s *budgetService) ByCategory(ctx context.Context, category string) ([]*models.Budget, error) {
	if err := common.ValidateRequiredString(category, "category"); err != nil {
		return nil, err
	}
	return repositories.NewBudgetRepo(s.store).ListByCategory(ctx, strings.TrimSpace(category))
}

func (s *budgetService) ByPeriod(ctx context.Context, period models.Period) ([]*models.Budget, error) {
	return repositories.NewBudgetRepo(s.store).ListByPeriod(ctx, period)
}

func (s *budgetService) Summary(ctx context.Context) (*models.BudgetSummary, error) {
	return repositories.NewBudgetRepo(s.store).Summary(ctx)
}

// VsActual compares the category's budget for the current month with what was spent against it.
func (s *budgetService) VsActual(ctx context.Context, category string) (*models.BudgetVsActual, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, common.ValidationError("category", "category is required")
	}
	period := models.PeriodOf(s.now())
	out := &models.BudgetVsActual{Category: category, Period: period}

	budget, err := repositories.NewBudgetRepo(s.store).Find(ctx, category, period)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return out, nil
		}
		return nil, err
	}
	out.HasBudget = true
	out.Budgeted = budget.Amount
	out.Spent = budget.Spent
	out.Remaining = budget.Remaining()
	out.PercentUsed = percentOf(budget.Spent, budget.Amount)
	return out, nil
}

func (s *budgetService) RecordExpense(ctx context.Context, category string, period models.Period, amount decimal.Decimal) error {
	return recordExpense(ctx, s.store, s.log, category, period, amount)
}

func recordExpense(ctx context.Context, q database.Querier, log *logger.Logger, category string, period models.Period, amount decimal.Decimal) error {
	matched, err := repositories.NewBudgetRepo(q).AddSpent(ctx, category, period, amount)
	if err != nil {
		return err
	}
	if !matched {
		log.Debug(log.WithFields(ctx, map[string]any{"category": category, "period": period.String()}),
			"no budget for expense")
	}
	return nil
}

func validateTransaction(tx *models.Transaction) error {
	if !tx.Type.Valid() {
		return common.ValidationError("type", "type must be expense or income")
	}
	if tx.Amount.IsNegative() {
		return common.ValidationError("amount", "amount must not be negative")
	}
	tx.Description = strings.TrimSpace(tx.Description)
	if tx.Description == "" {
		return common.ValidationError("description", "description is required")
	}
	tx.Category = strings.TrimSpace(tx.Category)
	if tx.Category == "" {
		return common.ValidationError("category", "category is required")
	}
	return nil
}

func (s *budgetService) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := validateTransaction(tx); err != nil {
		return err
	}
	now := s.now()
	if tx.Date.IsZero() {
		tx.Date = now
	}

	err := s.store.WithTx(ctx, func(q database.Querier) error {
		if err := repositories.NewTransactionRepo(q).Create(ctx, tx); err != nil {
			return err
		}
		if tx.Type != models.TransactionExpense {
			return nil
		}
		return recordExpense(ctx, q, s.log, tx.Category, models.PeriodOf(now), tx.Amount)
	})
	if err != nil {
		return err
	}
	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"transaction_id": tx.ID,
		"type":           tx.Type,
		"category":       tx.Category,
	}), "transaction recorded")
	return nil
}

func (s *budgetService) Transactions(ctx context.Context, limit int) ([]*models.Transaction, error) {
	return repositories.NewTransactionRepo(s.store).List(ctx, limit)
}

func (s *budgetService) TransactionsByType(ctx context.Context, txType models.TransactionType) ([]*models.Transaction, error) {
	if !txType.Valid() {
		return nil, common.ValidationError("type", "type must be expense or income")
	}
	return repositories.NewTransactionRepo(s.store).ListByType(ctx, txType)
}

func (s *budgetService) TransactionsByCategory(ctx context.Context, category string) ([]*models.Transaction, error) {
	if err := common.ValidateRequiredString(category, "category"); err != nil {
		return nil, err
	}
	return repositories.NewTransactionRepo(s.store).ListByCategory(ctx, strings.TrimSpace(category))
}
