package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionExpense TransactionType = "expense"
	TransactionIncome  TransactionType = "income"
)

func (t TransactionType) Valid() bool {
	return t == TransactionExpense || t == TransactionIncome
}

type Transaction struct {
	ID          int64           `json:"id" db:"id"`
	Type        TransactionType `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Date        time.Time       `json:"date" db:"date"`
	StaffID     *int64          `json:"staff_id" db:"staff_id"`
	StaffName   *string         `json:"staff_name" db:"-"`
}
