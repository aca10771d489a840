package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"hardwarestore/internal/models"
	"hardwarestore/internal/services"
)

// InventoryHandlers serves /api/inventory.
type InventoryHandlers struct {
	inventory services.InventoryService
}

func NewInventoryHandlers(inventory services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{inventory: inventory}
}

// CreateItemRequest is the body of POST /api/inventory.
type CreateItemRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description *string          `json:"description"`
	CategoryID  *int64           `json:"category_id"`
	SKU         *string          `json:"sku"`
	Quantity    *int             `json:"quantity" validate:"required,min=0"`
	MinQuantity int              `json:"min_quantity" validate:"min=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"required"`
	Supplier    *string          `json:"supplier"`
	Location    *string          `json:"location"`
}

// StockRequest is the body of PATCH /api/inventory/:id/stock.
type StockRequest struct {
	Quantity  *int                  `json:"quantity" validate:"required,min=0"`
	Operation models.StockOperation `json:"operation" validate:"required,oneof=add subtract set"`
}

// ListItems godoc
// @Summary List inventory items
// @Tags inventory
// @Produce json
// @Success 200 {array} models.InventoryItem
// @Router /inventory [get]
func (h *InventoryHandlers) ListItems(c echo.Context) error {
	items, err := h.inventory.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

func (h *InventoryHandlers) GetItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	item, err := h.inventory.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// CreateItem godoc
// @Summary Create an inventory item
// @Tags inventory
// @Accept json
// @Produce json
// @Param item body CreateItemRequest true "Item"
// @Success 201 {object} models.InventoryItem
// @Router /inventory [post]
func (h *InventoryHandlers) CreateItem(c echo.Context) error {
	var req CreateItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item := &models.InventoryItem{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		SKU:         req.SKU,
		Quantity:    *req.Quantity,
		MinQuantity: req.MinQuantity,
		UnitPrice:   *req.UnitPrice,
		Supplier:    req.Supplier,
		Location:    req.Location,
	}
	if err := h.inventory.Create(c.Request().Context(), item); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *InventoryHandlers) UpdateItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var update models.InventoryUpdate
	if err := bind(c, &update); err != nil {
		return err
	}
	item, err := h.inventory.Update(c.Request().Context(), id, update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *InventoryHandlers) DeleteItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.inventory.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}

// AdjustStock godoc
// @Summary Add to, subtract from or set an item's quantity
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param body body StockRequest true "Adjustment"
// @Success 200 {object} map[string]interface{}
// @Router /inventory/{id}/stock [patch]
func (h *InventoryHandlers) AdjustStock(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req StockRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.inventory.Adjust(c.Request().Context(), id, req.Operation, *req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "Stock updated successfully",
		"new_quantity": item.Quantity,
		"item":         item,
	})
}

func (h *InventoryHandlers) LowStock(c echo.Context) error {
	items, err := h.inventory.LowStock(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

func (h *InventoryHandlers) Search(c echo.Context) error {
	items, err := h.inventory.Search(c.Request().Context(), c.Param("term"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

func (h *InventoryHandlers) ItemsInCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	items, err := h.inventory.ByCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

// nonNil keeps empty listings rendering as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
