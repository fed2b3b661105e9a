package repository

import (
	"context"
	"sync"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// InMemoryOrderRepository keeps the registry as a slice, newest first
type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []models.Order
	nextID int64
}

// NewInMemoryOrderRepository creates a new in-memory order registry with seed data
func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return NewInMemoryOrderRepositoryWith(SeedOrders())
}

// NewInMemoryOrderRepositoryWith creates a registry holding exactly orders
func NewInMemoryOrderRepositoryWith(orders []models.Order) *InMemoryOrderRepository {
	r := &InMemoryOrderRepository{nextID: 1001}
	for _, o := range orders {
		r.orders = append(r.orders, o.Clone())
		if o.ID >= r.nextID {
			r.nextID = o.ID + 1
		}
	}
	return r
}

func (r *InMemoryOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]models.Order, len(r.orders))
	for i, o := range r.orders {
		orders[i] = o.Clone()
	}
	return orders, nil
}

func (r *InMemoryOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.ID == id {
			order := o.Clone()
			return &order, nil
		}
	}
	return nil, ErrOrderNotFound
}

// Create assigns the next id and inserts the order at the head
func (r *InMemoryOrderRepository) Create(ctx context.Context, order models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	r.nextID++
	stored := order.Clone()
	r.orders = append([]models.Order{stored}, r.orders...)
	return &order, nil
}

func (r *InMemoryOrderRepository) Update(ctx context.Context, id int64, fn func(order *models.Order) error) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.orders {
		if o.ID != id {
			continue
		}
		updated := o.Clone()
		if err := fn(&updated); err != nil {
			return nil, err
		}
		updated.ID = id
		r.orders[i] = updated.Clone()
		return &updated, nil
	}
	return nil, ErrOrderNotFound
}
