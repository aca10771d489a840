package services

import (
	"context"
	"strings"
	"time"

	"hardwarestore/internal/common"
	"hardwarestore/internal/metrics"
	"hardwarestore/internal/models"
	"hardwarestore/internal/repositories"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

type SaleService interface {
	// Create records a sale and decrements stock in one atomic unit.
	Create(ctx context.Context, input models.NewSale) (*models.SaleReceipt, error)
	// Delete removes a sale and puts its quantity back on the item.
	Delete(ctx context.Context, id int64) error
	// Update changes sale fields and recomputes the total. Stock is not touched.
	Update(ctx context.Context, id int64, update models.SaleUpdate) (*models.Sale, error)

	List(ctx context.Context, limit int) ([]*models.Sale, error)
	Get(ctx context.Context, id int64) (*models.Sale, error)
	Summary(ctx context.Context) (*models.SalesSummary, error)
	TopItems(ctx context.Context, limit int) ([]models.TopItem, error)
	ByDateRange(ctx context.Context, from, to time.Time) ([]*models.Sale, error)
	ByPaymentMethod(ctx context.Context, method string) ([]*models.Sale, error)
	ByCustomer(ctx context.Context, customer string) ([]*models.Sale, error)
}

type saleService struct {
	store   database.Store
	metrics *metrics.StoreMetrics
	log     *logger.Logger
}

func NewSaleService(store database.Store, m *metrics.StoreMetrics, log *logger.Logger) SaleService {
	return &saleService{store: store, metrics: m, log: log}
}

func validateNewSale(input *models.NewSale) error {
	if input.ItemID <= 0 {
		return common.ValidationError("item_id", "item_id is required")
	}
	if input.Quantity < 1 {
		return common.ValidationError("quantity", "quantity must be at least 1")
	}
	if input.UnitPrice.IsNegative() {
		return common.ValidationError("unit_price", "unit_price must not be negative")
	}
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	if input.CustomerName == "" {
		return common.ValidationError("customer_name", "customer_name is required")
	}
	input.CustomerPhone = common.OptionalString(input.CustomerPhone)
	input.PaymentMethod = common.OptionalString(input.PaymentMethod)
	input.Notes = common.OptionalString(input.Notes)
	return nil
}

// requireStaff rejects a staff reference that does not resolve to a row.
func requireStaff(ctx context.Context, q database.Querier, staffID *int64) error {
	if staffID == nil {
		return nil
	}
	if _, err := repositories.NewStaffRepo(q).GetByID(ctx, *staffID); err != nil {
		if common.AsError(err) != nil {
			return common.ValidationError("staff_id", "staff member does not exist")
		}
		return err
	}
	return nil
}

func (s *saleService) Create(ctx context.Context, input models.NewSale) (*models.SaleReceipt, error) {
	if err := validateNewSale(&input); err != nil {
		return nil, err
	}

	var receipt *models.SaleReceipt
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		items := repositories.NewInventoryRepo(q)
		onHand, err := items.GetQuantity(ctx, input.ItemID)
		if err != nil {
			return err
		}
		if input.Quantity > onHand {
			return common.InsufficientStock(input.Quantity, onHand)
		}
		if err := requireStaff(ctx, q, input.StaffID); err != nil {
			return err
		}

		sale := &models.Sale{
			ItemID:        input.ItemID,
			Quantity:      input.Quantity,
			UnitPrice:     input.UnitPrice,
			TotalPrice:    input.UnitPrice.Mul(decimalFromInt(input.Quantity)),
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			StaffID:       input.StaffID,
			PaymentMethod: input.PaymentMethod,
			Notes:         input.Notes,
		}
		if err := repositories.NewSaleRepo(q).Create(ctx, sale); err != nil {
			return err
		}

		ok, err := items.DecrementIfAvailable(ctx, input.ItemID, input.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			// stock moved between the read and the write
			current, err := items.GetQuantity(ctx, input.ItemID)
			if err != nil {
				return err
			}
			return common.InsufficientStock(input.Quantity, current)
		}

		receipt = &models.SaleReceipt{
			SaleID:       sale.ID,
			TotalPrice:   sale.TotalPrice,
			RemainingQty: onHand - input.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSaleRecorded()
	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"sale_id":   receipt.SaleID,
		"item_id":   input.ItemID,
		"quantity":  input.Quantity,
		"remaining": receipt.RemainingQty,
	}), "sale recorded")
	return receipt, nil
}

func (s *saleService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(q database.Querier) error {
		sales := repositories.NewSaleRepo(q)
		sale, err := sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := sales.Delete(ctx, id); err != nil {
			return err
		}
		return repositories.NewInventoryRepo(q).Increment(ctx, sale.ItemID, sale.Quantity)
	})
	if err != nil {
		return err
	}
	s.log.Info(s.log.WithField(ctx, "sale_id", id), "sale deleted and stock restored")
	return nil
}

func (s *saleService) Update(ctx context.Context, id int64, update models.SaleUpdate) (*models.Sale, error) {
	if update.Quantity != nil && *update.Quantity < 1 {
		return nil, common.ValidationError("quantity", "quantity must be at least 1")
	}
	if update.UnitPrice != nil && update.UnitPrice.IsNegative() {
		return nil, common.ValidationError("unit_price", "unit_price must not be negative")
	}
	if update.CustomerName != nil {
		name := strings.TrimSpace(*update.CustomerName)
		if name == "" {
			return nil, common.ValidationError("customer_name", "customer_name must not be empty")
		}
		update.CustomerName = &name
	}

	repo := repositories.NewSaleRepo(s.store)
	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireStaff(ctx, s.store, update.StaffID); err != nil {
		return nil, err
	}

	quantity := existing.Quantity
	if update.Quantity != nil {
		quantity = *update.Quantity
	}
	price := existing.UnitPrice
	if update.UnitPrice != nil {
		price = *update.UnitPrice
	}
	if err := repo.Update(ctx, id, update, price.Mul(decimalFromInt(quantity))); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

func (s *saleService) List(ctx context.Context, limit int) ([]*models.Sale, error) {
	return repositories.NewSaleRepo(s.store).List(ctx, limit)
}

func (s *saleService) Get(ctx context.Context, id int64) (*models.Sale, error) {
	return repositories.NewSaleRepo(s.store).GetByID(ctx, id)
}

func (s *saleService) Summary(ctx context.Context) (*models.SalesSummary, error) {
	return repositories.NewSaleRepo(s.store).Summary(ctx)
}

func (s *saleService) TopItems(ctx context.Context, limit int) ([]models.TopItem, error) {
	return repositories.NewSaleRepo(s.store).TopItems(ctx, limit)
}

func (s *saleService) ByDateRange(ctx context.Context, from, to time.Time) ([]*models.Sale, error) {
	if err := common.ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	return repositories.NewSaleRepo(s.store).ListByDateRange(ctx, from, to)
}

func (s *saleService) ByPaymentMethod(ctx context.Context, method string) ([]*models.Sale, error) {
	if err := common.ValidateRequiredString(method, "method"); err != nil {
		return nil, err
	}
	return repositories.NewSaleRepo(s.store).ListByPaymentMethod(ctx, strings.TrimSpace(method))
}

func (s *saleService) ByCustomer(ctx context.Context, customer string) ([]*models.Sale, error) {
	customer = common.SanitizeSearchQuery(customer)
	if customer == "" {
		return nil, common.ValidationError("customer", "customer is required")
	}
	return repositories.NewSaleRepo(s.store).ListByCustomer(ctx, customer)
}
