package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/services"
)

const defaultSaleListLimit = 100

// SaleHandlers serves /api/sales.
type SaleHandlers struct {
	sales services.SaleService
}

func NewSaleHandlers(sales services.SaleService) *SaleHandlers {
	return &SaleHandlers{sales: sales}
}

// CreateSaleRequest is the body of POST /api/sales.
type CreateSaleRequest struct {
	ItemID        int64            `json:"item_id" validate:"required,min=1"`
	Quantity      int              `json:"quantity" validate:"required,min=1"`
	UnitPrice     *decimal.Decimal `json:"unit_price" validate:"required"`
	CustomerName  string           `json:"customer_name" validate:"required"`
	CustomerPhone *string          `json:"customer_phone"`
	StaffID       *int64           `json:"staff_id"`
	PaymentMethod *string          `json:"payment_method"`
	Notes         *string          `json:"notes"`
}

// queryInt reads an optional integer query parameter.
func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.ValidationError(name, name+" must be a non-negative integer")
	}
	return n, nil
}

func (h *SaleHandlers) ListSales(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultSaleListLimit)
	if err != nil {
		return err
	}
	sales, err := h.sales.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(sales))
}

func (h *SaleHandlers) GetSale(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	sale, err := h.sales.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sale)
}

// CreateSale godoc
// @Summary Record a sale and take its quantity out of stock
// @Tags sales
// @Accept json
// @Produce json
// @Param sale body CreateSaleRequest true "Sale"
// @Success 201 {object} models.SaleReceipt
// @Failure 409 {object} common.ErrorResponse
// @Router /sales [post]
func (h *SaleHandlers) CreateSale(c echo.Context) error {
	var req CreateSaleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	receipt, err := h.sales.Create(c.Request().Context(), models.NewSale{
		ItemID:        req.ItemID,
		Quantity:      req.Quantity,
		UnitPrice:     *req.UnitPrice,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		StaffID:       req.StaffID,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":            "Sale recorded successfully",
		"sale_id":            receipt.SaleID,
		"total_price":        receipt.TotalPrice,
		"remaining_quantity": receipt.RemainingQty,
	})
}

func (h *SaleHandlers) UpdateSale(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var update models.SaleUpdate
	if err := bind(c, &update); err != nil {
		return err
	}
	sale, err := h.sales.Update(c.Request().Context(), id, update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sale)
}

func (h *SaleHandlers) DeleteSale(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.sales.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Sale deleted and stock restored"})
}

func (h *SaleHandlers) Summary(c echo.Context) error {
	summary, err := h.sales.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *SaleHandlers) TopItems(c echo.Context) error {
	limit, err := queryInt(c, "limit", 10)
	if err != nil {
		return err
	}
	items, err := h.sales.TopItems(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

func (h *SaleHandlers) ByDateRange(c echo.Context) error {
	from, err := common.ValidateDate(c.Param("start"), "start")
	if err != nil {
		return err
	}
	to, err := common.ValidateDate(c.Param("end"), "end")
	if err != nil {
		return err
	}
	sales, err := h.sales.ByDateRange(c.Request().Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(sales))
}

func (h *SaleHandlers) ByPaymentMethod(c echo.Context) error {
	sales, err := h.sales.ByPaymentMethod(c.Request().Context(), c.Param("method"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(sales))
}

func (h *SaleHandlers) ByCustomer(c echo.Context) error {
	sales, err := h.sales.ByCustomer(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(sales))
}
