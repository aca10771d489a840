package handlers

import (
	"github.com/labstack/echo/v4"

	"hardwarestore/internal/middleware"
	"hardwarestore/internal/models"
	"hardwarestore/internal/services"
	"hardwarestore/pkg/logger"
)

// API bundles the handler groups mounted under /api.
type API struct {
	Auth       *AuthHandlers
	Categories *CategoryHandlers
	Inventory  *InventoryHandlers
	Sales      *SaleHandlers
	Staff      *StaffHandlers
	Budget     *BudgetHandlers
	Reports    *ReportHandlers
	Backup     *BackupHandlers
	Health     *HealthHandlers
}

// RegisterRoutes mounts the health probes at the root and everything else
// under /api. Only login is reachable without a bearer token.
func RegisterRoutes(e *echo.Echo, api *API, auth services.AuthService, log *logger.Logger) {
	e.GET("/health", api.Health.Live)
	e.GET("/health/ready", api.Health.Ready)

	root := e.Group("/api")
	root.POST("/auth/login", api.Auth.Login)

	protected := root.Group("")
	protected.Use(middleware.JWTMiddleware(auth, log))
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	authGroup := protected.Group("/auth")
	authGroup.GET("/me", api.Auth.Me)
	authGroup.POST("/change-password", api.Auth.ChangePassword)
	authGroup.POST("/logout", api.Auth.Logout)
	authGroup.POST("/register", api.Auth.Register, adminOnly)
	authGroup.GET("/users", api.Auth.ListUsers, adminOnly)

	inventory := protected.Group("/inventory")
	inventory.GET("/categories", api.Categories.ListCategories)
	inventory.GET("/categories/:id", api.Categories.GetCategory)
	inventory.POST("/categories", api.Categories.CreateCategory)
	inventory.PUT("/categories/:id", api.Categories.UpdateCategory)
	inventory.DELETE("/categories/:id", api.Categories.DeleteCategory, adminOnly)
	inventory.GET("/categories/:id/items", api.Inventory.ItemsInCategory)
	inventory.GET("", api.Inventory.ListItems)
	inventory.GET("/low-stock", api.Inventory.LowStock)
	inventory.GET("/search/:term", api.Inventory.Search)
	inventory.GET("/:id", api.Inventory.GetItem)
	inventory.POST("", api.Inventory.CreateItem)
	inventory.PUT("/:id", api.Inventory.UpdateItem)
	inventory.PATCH("/:id/stock", api.Inventory.AdjustStock)
	inventory.DELETE("/:id", api.Inventory.DeleteItem, adminOnly)

	sales := protected.Group("/sales")
	sales.GET("", api.Sales.ListSales)
	sales.GET("/summary", api.Sales.Summary)
	sales.GET("/top-items", api.Sales.TopItems)
	sales.GET("/date-range/:start/:end", api.Sales.ByDateRange)
	sales.GET("/by-payment/:method", api.Sales.ByPaymentMethod)
	sales.GET("/customer/:name", api.Sales.ByCustomer)
	sales.GET("/:id", api.Sales.GetSale)
	sales.POST("", api.Sales.CreateSale)
	sales.PUT("/:id", api.Sales.UpdateSale)
	sales.DELETE("/:id", api.Sales.DeleteSale)

	staff := protected.Group("/staff")
	staff.GET("", api.Staff.ListStaff)
	staff.GET("/active", api.Staff.ActiveStaff)
	staff.GET("/department/:department", api.Staff.ByDepartment)
	staff.GET("/:id", api.Staff.GetStaff)
	staff.GET("/:id/performance", api.Staff.Performance)
	staff.POST("", api.Staff.CreateStaff, adminOnly)
	staff.PUT("/:id", api.Staff.UpdateStaff, adminOnly)
	staff.PATCH("/:id/status", api.Staff.UpdateStatus, adminOnly)
	staff.DELETE("/:id", api.Staff.DeleteStaff, adminOnly)

	budget := protected.Group("/budget")
	budget.GET("", api.Budget.ListBudgets)
	budget.GET("/summary", api.Budget.Summary)
	budget.GET("/category/:category", api.Budget.ByCategory)
	budget.GET("/month/:monthYear", api.Budget.ByMonth)
	budget.GET("/vs-actual/:category", api.Budget.VsActual)
	budget.POST("/transaction", api.Budget.RecordTransaction)
	budget.GET("/transactions", api.Budget.ListTransactions)
	budget.GET("/transactions/category/:category", api.Budget.TransactionsByCategory)
	budget.GET("/transactions/:type", api.Budget.TransactionsByType)
	budget.GET("/:id", api.Budget.GetBudget)
	budget.POST("", api.Budget.CreateBudget)
	budget.PUT("/:id", api.Budget.UpdateBudget)
	budget.DELETE("/:id", api.Budget.DeleteBudget, adminOnly)

	reports := protected.Group("/reports")
	reports.GET("/inventory-summary", api.Reports.InventorySummary)
	reports.GET("/inventory-by-category", api.Reports.InventoryByCategory)
	reports.GET("/sales-summary", api.Reports.SalesSummary)
	reports.GET("/sales-by-date/:start/:end", api.Reports.SalesByDate)
	reports.GET("/staff-performance", api.Reports.StaffPerformance)
	reports.GET("/financial-summary", api.Reports.FinancialSummary)
	reports.GET("/low-stock-alert", api.Reports.LowStockAlert)
	reports.GET("/customer-history", api.Reports.CustomerHistory)
	reports.GET("/customer-history/:customerName", api.Reports.CustomerPurchases)
	reports.GET("/monthly-trend", api.Reports.MonthlyTrend)
	reports.GET("/monthly-trend/:year", api.Reports.MonthlyTrend)
	reports.GET("/profit-margin", api.Reports.ProfitMargins)
	reports.GET("/supplier-performance", api.Reports.SupplierPerformance)
	reports.GET("/comprehensive", api.Reports.Comprehensive)
	reports.GET("/daily-sales", api.Reports.DailySales)
	reports.GET("/yearly-revenue", api.Reports.YearlyRevenue)
	reports.GET("/sales-by-category", api.Reports.SalesByCategory)

	backup := protected.Group("/backup")
	backup.GET("/download", api.Backup.Download)
	backup.GET("/info", api.Backup.Info)
	backup.GET("/view/:table", api.Backup.ViewTable)
	backup.POST("/restore", api.Backup.Restore, adminOnly)
	backup.POST("/upload", api.Backup.Upload, adminOnly)
}
