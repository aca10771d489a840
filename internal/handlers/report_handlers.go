package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"hardwarestore/internal/common"
	"hardwarestore/internal/services"
)

// ReportHandlers serves /api/reports.
type ReportHandlers struct {
	reports services.ReportService
	sales   services.SaleService
}

func NewReportHandlers(reports services.ReportService, sales services.SaleService) *ReportHandlers {
	return &ReportHandlers{reports: reports, sales: sales}
}

// respond renders a report result or passes its error on.
func respond[T any](c echo.Context, value T, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, value)
}

func (h *ReportHandlers) InventorySummary(c echo.Context) error {
	summary, err := h.reports.InventorySummary(c.Request().Context())
	return respond(c, summary, err)
}

func (h *ReportHandlers) InventoryByCategory(c echo.Context) error {
	rows, err := h.reports.InventoryByCategory(c.Request().Context())
	return respond(c, nonNil(rows), err)
}

func (h *ReportHandlers) SalesSummary(c echo.Context) error {
	summary, err := h.reports.SalesSummary(c.Request().Context())
	return respond(c, summary, err)
}

func (h *ReportHandlers) SalesByDate(c echo.Context) error {
	from, err := common.ValidateDate(c.Param("start"), "start")
	if err != nil {
		return err
	}
	to, err := common.ValidateDate(c.Param("end"), "end")
	if err != nil {
		return err
	}
	rows, err := h.reports.SalesByDate(c.Request().Context(), from, to)
	return respond(c, nonNil(rows), err)
}

func (h *ReportHandlers) StaffPerformance(c echo.Context) error {
	rows, err := h.reports.StaffPerformance(c.Request().Context())
	return respond(c, nonNil(rows), err)
}

func (h *ReportHandlers) FinancialSummary(c echo.Context) error {
	summary, err := h.reports.FinancialSummary(c.Request().Context())
	return respond(c, summary, err)
}

func (h *ReportHandlers) LowStockAlert(c echo.Context) error {
	alert, err := h.reports.LowStockAlert(c.Request().Context())
	return respond(c, alert, err)
}

func (h *ReportHandlers) CustomerHistory(c echo.Context) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return err
	}
	rows, err := h.reports.CustomerHistory(c.Request().Context(), limit)
	return respond(c, nonNil(rows), err)
}

func (h *ReportHandlers) CustomerPurchases(c echo.Context) error {
	sales, err := h.sales.ByCustomer(c.Request().Context(), c.Param("customerName"))
	return respond(c, nonNil(sales), err)
}

// MonthlyTrend godoc
// @Summary Revenue per month for a year, all twelve months included
// @Tags reports
// @Produce json
// @Param year path int true "Year"
// @Success 200 {array} models.MonthlyTrend
// @Router /reports/monthly-trend/{year} [get]
func (h *ReportHandlers) MonthlyTrend(c echo.Context) error {
	year := 0
	if raw := c.Param("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return common.ValidationError("year", "year must be a number")
		}
		year = parsed
	}
	rows, err := h.reports.MonthlyTrend(c.Request().Context(), year)
	return respond(c, rows, err)
}

func (h *ReportHandlers) ProfitMargins(c echo.Context) error {
	rows, err := h.reports.ProfitMargins(c.Request().Context())
	return respond(c, nonNil(rows), err)
}

func (h *ReportHandlers) SupplierPerformance(c echo.Context) error {
	rows, err := h.reports.SupplierPerformance(c.Request().Context())
	return respond(c, nonNil(rows), err)
}

func (h *ReportHandlers) Comprehensive(c echo.Context) error {
	report, err := h.reports.Comprehensive(c.Request().Context())
	return respond(c, report, err)
}

func (h *ReportHandlers) DailySales(c echo.Context) error {
	rows, err := h.reports.DailySales(c.Request().Context())
	return respond(c, nonNil(rows), err)
}

func (h *ReportHandlers) YearlyRevenue(c echo.Context) error {
	rows, err := h.reports.YearlyRevenue(c.Request().Context())
	return respond(c, nonNil(rows), err)
}

func (h *ReportHandlers) SalesByCategory(c echo.Context) error {
	rows, err := h.reports.SalesByCategory(c.Request().Context())
	return respond(c, nonNil(rows), err)
}
