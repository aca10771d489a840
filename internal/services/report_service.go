package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/repositories"
	"hardwarestore/pkg/database"
)

const dailySalesDays = 30

type ReportService interface {
	InventorySummary(ctx context.Context) (*models.InventorySummary, error)
	InventoryByCategory(ctx context.Context) ([]models.CategoryInventory, error)
	SalesSummary(ctx context.Context) (*models.SalesSummary, error)
	SalesByDate(ctx context.Context, from, to time.Time) ([]models.DailySales, error)
	StaffPerformance(ctx context.Context) ([]models.StaffPerformance, error)
	FinancialSummary(ctx context.Context) (*models.FinancialSummary, error)
	LowStockAlert(ctx context.Context) (*models.LowStockAlert, error)
	CustomerHistory(ctx context.Context, limit int) ([]models.CustomerHistory, error)
	MonthlyTrend(ctx context.Context, year int) ([]models.MonthlyTrend, error)
	ProfitMargins(ctx context.Context) ([]models.ProfitMargin, error)
	SupplierPerformance(ctx context.Context) ([]models.SupplierPerformance, error)
	Comprehensive(ctx context.Context) (*models.ComprehensiveReport, error)
	DailySales(ctx context.Context) ([]models.DailySales, error)
	YearlyRevenue(ctx context.Context) ([]models.YearlyRevenue, error)
	SalesByCategory(ctx context.Context) ([]models.CategorySales, error)
}

type reportService struct {
	store database.Store
	now   Clock
}

func NewReportService(store database.Store) ReportService {
	return newReportService(store, systemClock)
}

func newReportService(store database.Store, now Clock) *reportService {
	return &reportService{store: store, now: now}
}

func (s *reportService) reports() repositories.ReportRepository {
	return repositories.NewReportRepo(s.store)
}

func (s *reportService) InventorySummary(ctx context.Context) (*models.InventorySummary, error) {
	return s.reports().InventorySummary(ctx)
}

func (s *reportService) InventoryByCategory(ctx context.Context) ([]models.CategoryInventory, error) {
	return s.reports().InventoryByCategory(ctx)
}

func (s *reportService) SalesSummary(ctx context.Context) (*models.SalesSummary, error) {
	return repositories.NewSaleRepo(s.store).Summary(ctx)
}

func (s *reportService) SalesByDate(ctx context.Context, from, to time.Time) ([]models.DailySales, error) {
	if err := common.ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	return s.reports().SalesByDate(ctx, from, to)
}

func (s *reportService) StaffPerformance(ctx context.Context) ([]models.StaffPerformance, error) {
	return repositories.NewStaffRepo(s.store).Performance(ctx, nil)
}

// FinancialSummary nets sales and other income against recorded expenses, over all time.
func (s *reportService) FinancialSummary(ctx context.Context) (*models.FinancialSummary, error) {
	revenue, err := s.reports().SalesRevenue(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	ledger := repositories.NewTransactionRepo(s.store)
	income, err := ledger.Totals(ctx, models.TransactionIncome, time.Time{})
	if err != nil {
		return nil, err
	}
	expenses, err := ledger.Totals(ctx, models.TransactionExpense, time.Time{})
	if err != nil {
		return nil, err
	}
	budget, err := repositories.NewBudgetRepo(s.store).Summary(ctx)
	if err != nil {
		return nil, err
	}

	return &models.FinancialSummary{
		SalesRevenue:  revenue,
		OtherIncome:   income,
		TotalExpenses: expenses,
		NetProfit:     revenue.Add(income).Sub(expenses),
		Budget:        *budget,
	}, nil
}

func (s *reportService) LowStockAlert(ctx context.Context) (*models.LowStockAlert, error) {
	items, err := repositories.NewInventoryRepo(s.store).LowStock(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.InventoryItem{}
	}
	return &models.LowStockAlert{Count: len(items), Items: items}, nil
}

func (s *reportService) CustomerHistory(ctx context.Context, limit int) ([]models.CustomerHistory, error) {
	return s.reports().CustomerHistory(ctx, limit)
}

// MonthlyTrend returns all twelve months of year, including months without sales.
// A zero year means the current one.
func (s *reportService) MonthlyTrend(ctx context.Context, year int) ([]models.MonthlyTrend, error) {
	if year == 0 {
		year = s.now().Year()
	}
	if year < 1900 || year > 9999 {
		return nil, common.ValidationError("year", "year is out of range")
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	points, err := s.reports().SalePoints(ctx, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	trend := make([]models.MonthlyTrend, 12)
	for i := range trend {
		month := time.Month(i + 1)
		trend[i] = models.MonthlyTrend{Month: int(month), MonthName: month.String(), Revenue: decimal.Zero}
	}
	for _, p := range points {
		bucket := &trend[p.Date.Month()-1]
		bucket.SaleCount++
		bucket.Revenue = bucket.Revenue.Add(p.Total)
	}
	return trend, nil
}

func (s *reportService) ProfitMargins(ctx context.Context) ([]models.ProfitMargin, error) {
	return s.reports().ProfitMargins(ctx)
}

func (s *reportService) SupplierPerformance(ctx context.Context) ([]models.SupplierPerformance, error) {
	return s.reports().SupplierPerformance(ctx)
}

func (s *reportService) Comprehensive(ctx context.Context) (*models.ComprehensiveReport, error) {
	inventory, err := s.InventorySummary(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.SalesSummary(ctx)
	if err != nil {
		return nil, err
	}
	financial, err := s.FinancialSummary(ctx)
	if err != nil {
		return nil, err
	}
	top, err := repositories.NewSaleRepo(s.store).TopItems(ctx, 5)
	if err != nil {
		return nil, err
	}
	low, err := s.LowStockAlert(ctx)
	if err != nil {
		return nil, err
	}
	staff, err := s.StaffPerformance(ctx)
	if err != nil {
		return nil, err
	}

	return &models.ComprehensiveReport{
		Inventory:        *inventory,
		Sales:            *sales,
		Financial:        *financial,
		TopItems:         top,
		LowStock:         low.Items,
		StaffPerformance: staff,
	}, nil
}

// DailySales covers the last thirty calendar days, today included.
func (s *reportService) DailySales(ctx context.Context) ([]models.DailySales, error) {
	today := s.now()
	return s.reports().SalesByDate(ctx, today.AddDate(0, 0, -(dailySalesDays - 1)), today)
}

func (s *reportService) YearlyRevenue(ctx context.Context) ([]models.YearlyRevenue, error) {
	points, err := s.reports().SalePoints(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	byYear := map[int]*models.YearlyRevenue{}
	for _, p := range points {
		year := p.Date.Year()
		entry, ok := byYear[year]
		if !ok {
			entry = &models.YearlyRevenue{Year: year, Revenue: decimal.Zero}
			byYear[year] = entry
		}
		entry.SaleCount++
		entry.Revenue = entry.Revenue.Add(p.Total)
	}

	out := make([]models.YearlyRevenue, 0, len(byYear))
	for _, entry := range byYear {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (s *reportService) SalesByCategory(ctx context.Context) ([]models.CategorySales, error) {
	return s.reports().SalesByCategory(ctx)
}
