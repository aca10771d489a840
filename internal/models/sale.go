package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID            int64           `json:"id" db:"id"`
	ItemID        int64           `json:"item_id" db:"item_id"`
	ItemName      *string         `json:"item_name" db:"-"`
	Quantity      int             `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price" db:"total_price"`
	CustomerName  string          `json:"customer_name" db:"customer_name"`
	CustomerPhone *string         `json:"customer_phone" db:"customer_phone"`
	StaffID       *int64          `json:"staff_id" db:"staff_id"`
	StaffName     *string         `json:"staff_name" db:"-"`
	PaymentMethod *string         `json:"payment_method" db:"payment_method"`
	Notes         *string         `json:"notes" db:"notes"`
	SaleDate      time.Time       `json:"sale_date" db:"sale_date"`
}

// NewSale is the input for recording a sale.
type NewSale struct {
	ItemID        int64           `json:"item_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone *string         `json:"customer_phone,omitempty"`
	StaffID       *int64          `json:"staff_id,omitempty"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}

// SaleReceipt is returned after a sale is recorded.
type SaleReceipt struct {
	SaleID       int64           `json:"sale_id"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	RemainingQty int             `json:"remaining_quantity"`
}

// SaleUpdate holds the fields a sale update may change. Stock is never adjusted.
type SaleUpdate struct {
	Quantity      *int             `json:"quantity,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	CustomerName  *string          `json:"customer_name,omitempty"`
	CustomerPhone *string          `json:"customer_phone,omitempty"`
	StaffID       *int64           `json:"staff_id,omitempty"`
	PaymentMethod *string          `json:"payment_method,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

type SalesSummary struct {
	TotalSales     int64           `json:"total_sales"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalItemsSold int64           `json:"total_items_sold"`
	AverageSale    decimal.Decimal `json:"average_sale"`
}

type TopItem struct {
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	SaleCount    int64           `json:"sale_count"`
}
