package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockOperation is the kind of quantity adjustment applied to an item.
type StockOperation string

const (
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"
	StockSet      StockOperation = "set"
)

func (op StockOperation) Valid() bool {
	switch op {
	case StockAdd, StockSubtract, StockSet:
		return true
	}
	return false
}

type InventoryItem struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description" db:"description"`
	CategoryID   *int64          `json:"category_id" db:"category_id"`
	CategoryName *string         `json:"category_name" db:"-"`
	SKU          *string         `json:"sku" db:"sku"`
	Quantity     int             `json:"quantity" db:"quantity"`
	MinQuantity  int             `json:"min_quantity" db:"min_quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"unit_price"`
	Supplier     *string         `json:"supplier" db:"supplier"`
	Location     *string         `json:"location" db:"location"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// IsLowStock reports quantity at or below a positive threshold.
func (i *InventoryItem) IsLowStock() bool {
	return i.MinQuantity > 0 && i.Quantity <= i.MinQuantity
}

// InventoryUpdate holds the fields an item update may change. Nil means unchanged.
type InventoryUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	CategoryID  *int64           `json:"category_id,omitempty"`
	SKU         *string          `json:"sku,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	MinQuantity *int             `json:"min_quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Supplier    *string          `json:"supplier,omitempty"`
	Location    *string          `json:"location,omitempty"`
}

func (u InventoryUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.CategoryID == nil && u.SKU == nil &&
		u.Quantity == nil && u.MinQuantity == nil && u.UnitPrice == nil && u.Supplier == nil && u.Location == nil
}
