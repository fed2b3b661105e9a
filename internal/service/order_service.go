package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/events"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidItem       = errors.New("invalid menu item")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidOrderType  = errors.New("order type must be dine-in or dine-out")
	ErrTableRequired     = errors.New("dine-in orders need a table on the floor")
	ErrCustomerRequired  = errors.New("dine-out orders need a customer name")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrIllegalTransition = errors.New("illegal order status transition")
)

// AllStatuses selects every order when listing the registry
const AllStatuses = "all"

// orderTimeLayout is the clock label shown next to an order
const orderTimeLayout = "3:04 PM"

// MenuItemLookup resolves the menu items an order references
type MenuItemLookup interface {
	GetByID(ctx context.Context, id int64) (*models.MenuItem, error)
}

// TableLookup resolves a table and the floor that owns it
type TableLookup interface {
	GetTable(ctx context.Context, tableID string) (*models.Table, string, error)
}

// OrderItemRequest is a requested order line. A line names a menu item by
// id, or carries its own name and price for off-menu items.
type OrderItemRequest struct {
	MenuItemID int64
	Name       string
	Price      decimal.Decimal
	Quantity   int
}

// TargetRequest says where an order goes
type TargetRequest struct {
	OrderType    models.OrderType
	FloorID      string
	TableID      string
	CustomerName string
}

// CreateOrderRequest is a new registry entry
type CreateOrderRequest struct {
	TargetRequest
	Items []OrderItemRequest
}

// UpdateOrderRequest replaces an order's items, and its target when set
type UpdateOrderRequest struct {
	Target *TargetRequest
	Items  []OrderItemRequest
}

// statusChange is the payload of order.status_changed
type statusChange struct {
	OrderID int64              `json:"orderId"`
	From    models.OrderStatus `json:"from"`
	To      models.OrderStatus `json:"to"`
}

// OrderService handles the order registry
type OrderService struct {
	orders    repository.OrderRepository
	menu      MenuItemLookup
	tables    TableLookup
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewOrderService(orders repository.OrderRepository, menu MenuItemLookup, tables TableLookup, publisher events.Publisher, logger *slog.Logger) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		orders:    orders,
		menu:      menu,
		tables:    tables,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// List returns orders most recent first, filtered by status or "all"
func (s *OrderService) List(ctx context.Context, filter string) ([]models.Order, error) {
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if filter == "" || filter == AllStatuses {
		return orders, nil
	}

	status := models.OrderStatus(filter)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	out := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if order.Status == status {
			out = append(out, order)
		}
	}
	return out, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// Create registers a pending order. Table occupancy is not touched; the
// floor learns about the order from the order.created event.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	target, err := s.resolveTarget(ctx, req.TargetRequest)
	if err != nil {
		return nil, err
	}
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.orders.Create(ctx, models.Order{
		Target:    target,
		Items:     items,
		Total:     models.OrderItemsTotal(items),
		Status:    models.StatusPending,
		Time:      now.Format(orderTimeLayout),
		CreatedAt: now.UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created", "order_id", created.ID, "order_type", target.OrderType(), "total", created.Total)
	s.publish(ctx, events.KeyOrderCreated, created)
	return created, nil
}

// Update replaces the items and total. The id, time and status are kept.
func (s *OrderService) Update(ctx context.Context, id int64, req UpdateOrderRequest) (*models.Order, error) {
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	var target models.Target
	if req.Target != nil {
		if target, err = s.resolveTarget(ctx, *req.Target); err != nil {
			return nil, err
		}
	}

	updated, err := s.orders.Update(ctx, id, func(order *models.Order) error {
		order.Items = items
		order.Total = models.OrderItemsTotal(items)
		if target != nil {
			order.Target = target
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order updated", "order_id", id, "total", updated.Total)
	s.publish(ctx, events.KeyOrderUpdated, updated)
	return updated, nil
}

// ChangeStatus moves an order one step along pending, preparing, ready, served
func (s *OrderService) ChangeStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var from models.OrderStatus
	updated, err := s.orders.Update(ctx, id, func(order *models.Order) error {
		if !order.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, order.Status, status)
		}
		from = order.Status
		order.Status = status
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrIllegalTransition) {
			s.logger.Warn("order status change rejected", "order_id", id, "status", status, "error", err)
		}
		return nil, err
	}

	s.logger.Info("order status changed", "order_id", id, "from", from, "to", status)
	s.publish(ctx, events.KeyOrderStatusChanged, statusChange{OrderID: id, From: from, To: status})
	return updated, nil
}

// Advance moves an order to the status after its current one
func (s *OrderService) Advance(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, ok := order.Status.Next()
	if !ok {
		return nil, fmt.Errorf("%w: %s is final", ErrIllegalTransition, order.Status)
	}
	return s.ChangeStatus(ctx, id, next)
}

func (s *OrderService) resolveTarget(ctx context.Context, req TargetRequest) (models.Target, error) {
	switch req.OrderType {
	case models.OrderTypeDineIn:
		if req.TableID == "" {
			return nil, ErrTableRequired
		}
		table, floorID, err := s.tables.GetTable(ctx, req.TableID)
		if err != nil {
			if errors.Is(err, repository.ErrTableNotFound) {
				return nil, ErrTableRequired
			}
			return nil, err
		}
		if req.FloorID != "" && req.FloorID != floorID {
			return nil, ErrTableRequired
		}
		return models.DineIn{FloorID: floorID, TableID: table.ID, TableNumber: table.Number}, nil

	case models.OrderTypeDineOut:
		name := strings.TrimSpace(req.CustomerName)
		if name == "" {
			return nil, ErrCustomerRequired
		}
		return models.DineOut{CustomerName: name}, nil

	default:
		return nil, ErrInvalidOrderType
	}
}

// resolveItems prices each line from the menu, fetching each item once
func (s *OrderService) resolveItems(ctx context.Context, reqs []OrderItemRequest) ([]models.OrderItem, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyOrder
	}

	menu := make(map[int64]models.MenuItem)
	items := make([]models.OrderItem, 0, len(reqs))
	for _, req := range reqs {
		if req.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		if req.MenuItemID == 0 {
			name := strings.TrimSpace(req.Name)
			if name == "" || !req.Price.IsPositive() {
				return nil, ErrInvalidItem
			}
			items = append(items, models.OrderItem{Name: name, Quantity: req.Quantity, Price: req.Price})
			continue
		}

		item, ok := menu[req.MenuItemID]
		if !ok {
			found, err := s.menu.GetByID(ctx, req.MenuItemID)
			if err != nil {
				if errors.Is(err, repository.ErrMenuItemNotFound) {
					return nil, ErrInvalidItem
				}
				return nil, err
			}
			item = *found
			menu[req.MenuItemID] = item
		}
		items = append(items, models.OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   req.Quantity,
			Price:      item.Price,
		})
	}
	return items, nil
}

func (s *OrderService) publish(ctx context.Context, key string, payload any) {
	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		s.logger.Error("failed to publish order event", "key", key, "error", err)
	}
}
