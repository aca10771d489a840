package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var periodPattern = regexp.MustCompile(`^(\d{4})[-/](\d{2})`)

// Period is a calendar month. Its text form is "YYYY-MM".
type Period struct {
	Year  int
	Month int
}

// ParsePeriod accepts YYYY-MM, YYYY/MM or a YYYY-MM-DD date.
func ParsePeriod(s string) (Period, error) {
	m := periodPattern.FindStringSubmatch(s)
	if m == nil {
		return Period{}, fmt.Errorf("period %q must look like YYYY-MM", s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("period %q has month outside 01-12", s)
	}
	return Period{Year: year, Month: month}, nil
}

// PeriodOf returns the month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type Budget struct {
	ID        int64           `json:"id"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Spent     decimal.Decimal `json:"spent"`
	Period    Period          `json:"period"`
	CreatedAt time.Time       `json:"created_at"`
}

func (b *Budget) Remaining() decimal.Decimal {
	return b.Amount.Sub(b.Spent)
}

type BudgetUpdate struct {
	Category *string          `json:"category,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Spent    *decimal.Decimal `json:"spent,omitempty"`
	Period   *Period          `json:"period,omitempty"`
}

type BudgetSummary struct {
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	BudgetCount    int64           `json:"budget_count"`
}

// BudgetVsActual compares one category's budget with its spending for a period.
type BudgetVsActual struct {
	Category    string          `json:"category"`
	Period      Period          `json:"period"`
	Budgeted    decimal.Decimal `json:"budgeted"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed decimal.Decimal `json:"percent_used"`
	HasBudget   bool            `json:"has_budget"`
}
