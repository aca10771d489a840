package models

import "github.com/shopspring/decimal"

type InventorySummary struct {
	TotalItems    int64           `json:"total_items"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockCount int64           `json:"low_stock_count"`
	OutOfStock    int64           `json:"out_of_stock_count"`
}

type CategoryInventory struct {
	Category      string          `json:"category"`
	ItemCount     int64           `json:"item_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

type DailySales struct {
	Date      string          `json:"date"`
	SaleCount int64           `json:"sale_count"`
	ItemsSold int64           `json:"items_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type FinancialSummary struct {
	SalesRevenue  decimal.Decimal `json:"sales_revenue"`
	OtherIncome   decimal.Decimal `json:"other_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	Budget        BudgetSummary   `json:"budget"`
}

type CustomerHistory struct {
	CustomerName  string          `json:"customer_name"`
	CustomerPhone *string         `json:"customer_phone"`
	PurchaseCount int64           `json:"purchase_count"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	LastPurchase  string          `json:"last_purchase"`
}

type MonthlyTrend struct {
	Month     int             `json:"month"`
	MonthName string          `json:"month_name"`
	SaleCount int64           `json:"sale_count"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type YearlyRevenue struct {
	Year      int             `json:"year"`
	SaleCount int64           `json:"sale_count"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ProfitMargin compares each item's sold price with its current list price.
type ProfitMargin struct {
	ItemID        int64           `json:"item_id"`
	ItemName      string          `json:"item_name"`
	ListPrice     decimal.Decimal `json:"list_price"`
	AverageSold   decimal.Decimal `json:"average_sold_price"`
	QuantitySold  int64           `json:"quantity_sold"`
	Revenue       decimal.Decimal `json:"revenue"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

type SupplierPerformance struct {
	Supplier     string          `json:"supplier"`
	ItemCount    int64           `json:"item_count"`
	StockValue   decimal.Decimal `json:"stock_value"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type CategorySales struct {
	Category     string          `json:"category"`
	SaleCount    int64           `json:"sale_count"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type ComprehensiveReport struct {
	Inventory        InventorySummary   `json:"inventory"`
	Sales            SalesSummary       `json:"sales"`
	Financial        FinancialSummary   `json:"financial"`
	TopItems         []TopItem          `json:"top_items"`
	LowStock         []*InventoryItem   `json:"low_stock"`
	StaffPerformance []StaffPerformance `json:"staff_performance"`
}

// LowStockAlert lists items at or below their restock threshold.
type LowStockAlert struct {
	Count int              `json:"count"`
	Items []*InventoryItem `json:"items"`
}
