package jobs

import (
	"context"

	"hardwarestore/internal/models"
	"hardwarestore/pkg/logger"
)

// LowStockSource lists items at or below their reorder level.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]*models.InventoryItem, error)
}

type InventoryAlertService struct {
	source LowStockSource
	log    *logger.Logger
}

type InventoryAlert struct {
	ItemID      int64
	ItemName    string
	SKU         string
	Supplier    string
	Quantity    int
	MinQuantity int
	Shortfall   int
}

func NewInventoryAlertService(source LowStockSource, log *logger.Logger) *InventoryAlertService {
	return &InventoryAlertService{source: source, log: log}
}

// CheckLowStock returns one alert per low item, out-of-stock items first.
func (a *InventoryAlertService) CheckLowStock(ctx context.Context) ([]InventoryAlert, error) {
	items, err := a.source.LowStock(ctx)
	if err != nil {
		return nil, err
	}

	var empty, low []InventoryAlert
	for _, item := range items {
		alert := InventoryAlert{
			ItemID:      item.ID,
			ItemName:    item.Name,
			SKU:         deref(item.SKU),
			Supplier:    deref(item.Supplier),
			Quantity:    item.Quantity,
			MinQuantity: item.MinQuantity,
			Shortfall:   item.MinQuantity - item.Quantity,
		}
		if item.Quantity == 0 {
			empty = append(empty, alert)
		} else {
			low = append(low, alert)
		}
	}
	return append(empty, low...), nil
}

func (a *InventoryAlertService) LogLowStockAlerts(ctx context.Context, alerts []InventoryAlert) {
	if len(alerts) == 0 {
		a.log.Debug(ctx, "no low stock items")
		return
	}

	for _, alert := range alerts {
		itemCtx := a.log.WithFields(ctx, map[string]interface{}{
			"item_id":      alert.ItemID,
			"item":         alert.ItemName,
			"sku":          alert.SKU,
			"supplier":     alert.Supplier,
			"quantity":     alert.Quantity,
			"min_quantity": alert.MinQuantity,
		})
		if alert.Quantity == 0 {
			a.log.Warn(itemCtx, "item out of stock")
		} else {
			a.log.Info(itemCtx, "item below reorder level")
		}
	}
}

// ScheduledLowStockCheck is the scheduler entry point.
func (a *InventoryAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		return err
	}
	a.LogLowStockAlerts(ctx, alerts)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
