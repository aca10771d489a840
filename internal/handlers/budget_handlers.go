package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/services"
)

// BudgetHandlers serves /api/budget, including the transaction ledger.
type BudgetHandlers struct {
	budgets services.BudgetService
}

func NewBudgetHandlers(budgets services.BudgetService) *BudgetHandlers {
	return &BudgetHandlers{budgets: budgets}
}

type CreateBudgetRequest struct {
	Category  string           `json:"category" validate:"required"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	Spent     *decimal.Decimal `json:"spent"`
	MonthYear string           `json:"month_year" validate:"required"`
}

type UpdateBudgetRequest struct {
	Category  *string          `json:"category"`
	Amount    *decimal.Decimal `json:"amount"`
	Spent     *decimal.Decimal `json:"spent"`
	MonthYear *string          `json:"month_year"`
}

type TransactionRequest struct {
	Type        models.TransactionType `json:"type" validate:"required,oneof=expense income"`
	Amount      *decimal.Decimal       `json:"amount" validate:"required"`
	Description string                 `json:"description" validate:"required"`
	Category    string                 `json:"category" validate:"required"`
	Date        *string                `json:"date"`
	StaffID     *int64                 `json:"staff_id"`
}

func parsePeriod(raw, field string) (models.Period, error) {
	period, err := models.ParsePeriod(raw)
	if err != nil {
		return models.Period{}, common.ValidationError(field, err.Error())
	}
	return period, nil
}

func (h *BudgetHandlers) ListBudgets(c echo.Context) error {
	budgets, err := h.budgets.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(budgets))
}

func (h *BudgetHandlers) GetBudget(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	budget, err := h.budgets.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, budget)
}

func (h *BudgetHandlers) CreateBudget(c echo.Context) error {
	var req CreateBudgetRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	period, err := parsePeriod(req.MonthYear, "month_year")
	if err != nil {
		return err
	}

	budget := &models.Budget{Category: req.Category, Amount: *req.Amount, Period: period}
	if req.Spent != nil {
		budget.Spent = *req.Spent
	}
	if err := h.budgets.Create(c.Request().Context(), budget); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, budget)
}

func (h *BudgetHandlers) UpdateBudget(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateBudgetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	update := models.BudgetUpdate{Category: req.Category, Amount: req.Amount, Spent: req.Spent}
	if req.MonthYear != nil {
		period, err := parsePeriod(*req.MonthYear, "month_year")
		if err != nil {
			return err
		}
		update.Period = &period
	}
	budget, err := h.budgets.Update(c.Request().Context(), id, update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, budget)
}

func (h *BudgetHandlers) DeleteBudget(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.budgets.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Budget deleted successfully"})
}

func (h *BudgetHandlers) ByCategory(c echo.Context) error {
	budgets, err := h.budgets.ByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(budgets))
}

func (h *BudgetHandlers) ByMonth(c echo.Context) error {
	period, err := parsePeriod(c.Param("monthYear"), "month_year")
	if err != nil {
		return err
	}
	budgets, err := h.budgets.ByPeriod(c.Request().Context(), period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(budgets))
}

func (h *BudgetHandlers) Summary(c echo.Context) error {
	summary, err := h.budgets.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *BudgetHandlers) VsActual(c echo.Context) error {
	comparison, err := h.budgets.VsActual(c.Request().Context(), c.Param("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comparison)
}

// RecordTransaction godoc
// @Summary Record income or an expense; expenses count against this month's budget
// @Tags budget
// @Accept json
// @Produce json
// @Param transaction body TransactionRequest true "Transaction"
// @Success 201 {object} models.Transaction
// @Router /budget/transaction [post]
func (h *BudgetHandlers) RecordTransaction(c echo.Context) error {
	var req TransactionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	tx := &models.Transaction{
		Type:        req.Type,
		Amount:      *req.Amount,
		Description: req.Description,
		Category:    req.Category,
		StaffID:     req.StaffID,
	}
	if date := common.OptionalString(req.Date); date != nil {
		parsed, err := common.ValidateDate(*date, "date")
		if err != nil {
			return err
		}
		tx.Date = parsed
	}
	if err := h.budgets.RecordTransaction(c.Request().Context(), tx); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tx)
}

func (h *BudgetHandlers) ListTransactions(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultSaleListLimit)
	if err != nil {
		return err
	}
	txs, err := h.budgets.Transactions(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(txs))
}

func (h *BudgetHandlers) TransactionsByType(c echo.Context) error {
	txs, err := h.budgets.TransactionsByType(c.Request().Context(), models.TransactionType(c.Param("type")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(txs))
}

func (h *BudgetHandlers) TransactionsByCategory(c echo.Context) error {
	txs, err := h.budgets.TransactionsByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(txs))
}
