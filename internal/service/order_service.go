package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	appErrors "github.com/sasetin42/RidersBUD-sub003/pkg/errors"
)

// OrderLine is one requested part and quantity.
type OrderLine struct {
	PartID   string `json:"partId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=100"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	CustomerID      string      `json:"customerId" validate:"required"`
	Items           []OrderLine `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string      `json:"shippingAddress" validate:"required,max=500"`
}

// UpdateOrderStatusRequest moves an order through fulfilment.
type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// OrderService handles parts orders and stock.
type OrderService struct {
	store     databaseStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(store databaseStore, validate *validator.Validate, logger *zap.Logger) *OrderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{store: store, validator: validate, logger: logger, now: time.Now}
}

// Create prices the order, checks stock and decrements it in one store mutation.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid order payload")
	}
	quantities, order := mergeOrderLines(req.Items)

	var created models.Order
	err := s.store.Update(ctx, func(db *models.Database) error {
		if db.FindCustomer(req.CustomerID) == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}

		items := make([]models.OrderItem, 0, len(order))
		total := 0.0
		for _, partID := range order {
			part := db.FindPart(partID)
			if part == nil {
				return appErrors.Clone(appErrors.ErrNotFound, "part not found: "+partID)
			}
			qty := quantities[partID]
			if part.Stock < qty {
				return appErrors.Clone(appErrors.ErrInsufficientStock, fmt.Sprintf("only %d of %s left", part.Stock, part.Name))
			}
			part.Stock -= qty
			items = append(items, models.OrderItem{PartID: part.ID, Name: part.Name, Quantity: qty, UnitPrice: part.Price})
			total += part.Price * float64(qty)
		}

		created = models.Order{
			ID:              uuid.NewString(),
			CustomerID:      req.CustomerID,
			Items:           items,
			Total:           math.Round(total*100) / 100,
			Status:          models.OrderStatusProcessing,
			ShippingAddress: strings.TrimSpace(req.ShippingAddress),
			CreatedAt:       s.now().UTC(),
		}
		db.Orders = append(db.Orders, created)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to place order")
	}

	s.logger.Info("order placed", zap.String("order_id", created.ID), zap.Float64("total", created.Total))
	return &created, nil
}

// Get returns an order by id.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	var found *models.Order
	_ = s.store.Read(func(db *models.Database) error {
		if o := db.FindOrder(id); o != nil {
			cp := *o
			found = &cp
		}
		return nil
	})
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
	}
	return found, nil
}

// List returns orders newest first, optionally for one customer.
func (s *OrderService) List(ctx context.Context, customerID string) []models.Order {
	items := []models.Order{}
	_ = s.store.Read(func(db *models.Database) error {
		for _, o := range db.Orders {
			if customerID == "" || o.CustomerID == customerID {
				items = append(items, o)
			}
		}
		return nil
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items
}

// SetStatus updates fulfilment. Cancelling returns the items to stock.
func (s *OrderService) SetStatus(ctx context.Context, id string, req UpdateOrderStatusRequest) (*models.Order, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown order status")
	}

	var updated models.Order
	err := s.store.Update(ctx, func(db *models.Database) error {
		o := db.FindOrder(id)
		if o == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "order not found")
		}
		if o.Status == req.Status {
			updated = *o
			return nil
		}
		if o.Status == models.OrderStatusDelivered || o.Status == models.OrderStatusCancelled {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "order is already "+strings.ToLower(string(o.Status)))
		}
		if req.Status == models.OrderStatusCancelled {
			for _, item := range o.Items {
				if part := db.FindPart(item.PartID); part != nil {
					part.Stock += item.Quantity
				}
			}
		}
		o.Status = req.Status
		updated = *o
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to update order")
	}
	return &updated, nil
}

// mergeOrderLines sums repeated parts and keeps first-seen order.
func mergeOrderLines(lines []OrderLine) (map[string]int, []string) {
	quantities := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := quantities[line.PartID]; !ok {
			order = append(order, line.PartID)
		}
		quantities[line.PartID] += line.Quantity
	}
	return quantities, order
}
