package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StaffStatus string

const (
	StaffActive     StaffStatus = "active"
	StaffInactive   StaffStatus = "inactive"
	StaffTerminated StaffStatus = "terminated"
)

func (s StaffStatus) Valid() bool {
	switch s {
	case StaffActive, StaffInactive, StaffTerminated:
		return true
	}
	return false
}

type Staff struct {
	ID         int64            `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	Email      *string          `json:"email" db:"email"`
	Phone      *string          `json:"phone" db:"phone"`
	Position   *string          `json:"position" db:"position"`
	Department *string          `json:"department" db:"department"`
	HireDate   *time.Time       `json:"hire_date" db:"hire_date"`
	Salary     *decimal.Decimal `json:"salary" db:"salary"`
	Status     StaffStatus      `json:"status" db:"status"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

type StaffUpdate struct {
	Name       *string          `json:"name,omitempty"`
	Email      *string          `json:"email,omitempty"`
	Phone      *string          `json:"phone,omitempty"`
	Position   *string          `json:"position,omitempty"`
	Department *string          `json:"department,omitempty"`
	HireDate   *time.Time       `json:"hire_date,omitempty"`
	Salary     *decimal.Decimal `json:"salary,omitempty"`
	Status     *StaffStatus     `json:"status,omitempty"`
}

// StaffPerformance aggregates the sales a staff member recorded.
type StaffPerformance struct {
	StaffID      int64           `json:"staff_id"`
	Name         string          `json:"name"`
	Position     *string         `json:"position"`
	TotalSales   int64           `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AverageSale  decimal.Decimal `json:"average_sale"`
}
