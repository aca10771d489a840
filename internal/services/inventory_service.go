package services

import (
	"context"
	"strings"

	"hardwarestore/internal/common"
	"hardwarestore/internal/metrics"
	"hardwarestore/internal/models"
	"hardwarestore/internal/repositories"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

type InventoryService interface {
	List(ctx context.Context) ([]*models.InventoryItem, error)
	Get(ctx context.Context, id int64) (*models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, id int64, update models.InventoryUpdate) (*models.InventoryItem, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, term string) ([]*models.InventoryItem, error)
	LowStock(ctx context.Context) ([]*models.InventoryItem, error)
	ByCategory(ctx context.Context, categoryID int64) ([]*models.InventoryItem, error)

	// Adjust applies a stock operation and returns the updated item.
	Adjust(ctx context.Context, id int64, op models.StockOperation, amount int) (*models.InventoryItem, error)
}

type inventoryService struct {
	store   database.Store
	metrics *metrics.StoreMetrics
	log     *logger.Logger
}

func NewInventoryService(store database.Store, m *metrics.StoreMetrics, log *logger.Logger) InventoryService {
	return &inventoryService{store: store, metrics: m, log: log}
}

// applyStock computes the new on-hand quantity. The result never drops below zero.
func applyStock(current int, op models.StockOperation, amount int) (int, error) {
	var next int
	switch op {
	case models.StockAdd:
		next = current + amount
	case models.StockSubtract:
		next = current - amount
	case models.StockSet:
		next = amount
	default:
		return 0, common.ValidationError("operation", "operation must be one of add, subtract, set")
	}
	if next < 0 {
		next = 0
	}
	return next, nil
}

func validateItem(item *models.InventoryItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return common.ValidationError("name", "name is required")
	}
	if item.Quantity < 0 {
		return common.ValidationError("quantity", "quantity must not be negative")
	}
	if item.MinQuantity < 0 {
		return common.ValidationError("min_quantity", "min_quantity must not be negative")
	}
	if item.UnitPrice.IsNegative() {
		return common.ValidationError("unit_price", "unit_price must not be negative")
	}
	item.SKU = common.OptionalString(item.SKU)
	return nil
}

func validateItemUpdate(update *models.InventoryUpdate) error {
	if update.Empty() {
		return common.ValidationError("body", "no fields to update")
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return common.ValidationError("name", "name must not be empty")
		}
		update.Name = &name
	}
	if update.Quantity != nil && *update.Quantity < 0 {
		return common.ValidationError("quantity", "quantity must not be negative")
	}
	if update.MinQuantity != nil && *update.MinQuantity < 0 {
		return common.ValidationError("min_quantity", "min_quantity must not be negative")
	}
	if update.UnitPrice != nil && update.UnitPrice.IsNegative() {
		return common.ValidationError("unit_price", "unit_price must not be negative")
	}
	return nil
}

func checkCategory(ctx context.Context, q database.Querier, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := repositories.NewCategoryRepo(q).GetByID(ctx, *categoryID); err != nil {
		if common.AsError(err) != nil {
			return common.ValidationError("category_id", "category does not exist")
		}
		return err
	}
	return nil
}

func (s *inventoryService) List(ctx context.Context) ([]*models.InventoryItem, error) {
	return repositories.NewInventoryRepo(s.store).List(ctx)
}

func (s *inventoryService) Get(ctx context.Context, id int64) (*models.InventoryItem, error) {
	return repositories.NewInventoryRepo(s.store).GetByID(ctx, id)
}

func (s *inventoryService) Create(ctx context.Context, item *models.InventoryItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if err := checkCategory(ctx, s.store, item.CategoryID); err != nil {
		return err
	}
	repo := repositories.NewInventoryRepo(s.store)
	if err := repo.Create(ctx, item); err != nil {
		return err
	}
	created, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		return err
	}
	*item = *created
	s.log.Info(s.log.WithField(ctx, "item_id", item.ID), "inventory item created")
	return nil
}

func (s *inventoryService) Update(ctx context.Context, id int64, update models.InventoryUpdate) (*models.InventoryItem, error) {
	if err := validateItemUpdate(&update); err != nil {
		return nil, err
	}
	if err := checkCategory(ctx, s.store, update.CategoryID); err != nil {
		return nil, err
	}
	repo := repositories.NewInventoryRepo(s.store)
	if err := repo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// Delete refuses to remove an item that recorded sales still reference.
func (s *inventoryService) Delete(ctx context.Context, id int64) error {
	repo := repositories.NewInventoryRepo(s.store)
	if _, err := repo.GetByID(ctx, id); err != nil {
		return err
	}
	sales, err := repo.CountSales(ctx, id)
	if err != nil {
		return err
	}
	if sales > 0 {
		return common.InUse("inventory item", sales)
	}
	return repo.Delete(ctx, id)
}

func (s *inventoryService) Search(ctx context.Context, term string) ([]*models.InventoryItem, error) {
	term = common.SanitizeSearchQuery(term)
	if term == "" {
		return nil, common.ValidationError("term", "search term is required")
	}
	return repositories.NewInventoryRepo(s.store).Search(ctx, term)
}

func (s *inventoryService) LowStock(ctx context.Context) ([]*models.InventoryItem, error) {
	return repositories.NewInventoryRepo(s.store).LowStock(ctx)
}

func (s *inventoryService) ByCategory(ctx context.Context, categoryID int64) ([]*models.InventoryItem, error) {
	if _, err := repositories.NewCategoryRepo(s.store).GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return repositories.NewInventoryRepo(s.store).ListByCategory(ctx, categoryID)
}

func (s *inventoryService) Adjust(ctx context.Context, id int64, op models.StockOperation, amount int) (*models.InventoryItem, error) {
	if !op.Valid() {
		return nil, common.ValidationError("operation", "operation must be one of add, subtract, set")
	}

	var item *models.InventoryItem
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		repo := repositories.NewInventoryRepo(q)
		current, err := repo.GetQuantity(ctx, id)
		if err != nil {
			return err
		}
		next, err := applyStock(current, op, amount)
		if err != nil {
			return err
		}
		if err := repo.SetQuantity(ctx, id, next); err != nil {
			return err
		}
		item, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStockAdjustment(string(op))
	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"item_id":   id,
		"operation": op,
		"amount":    amount,
		"quantity":  item.Quantity,
	}), "stock adjusted")
	return item, nil
}
