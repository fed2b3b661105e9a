package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// InMemorySalesRepository keeps paid snapshots in payment order
type InMemorySalesRepository struct {
	mu    sync.RWMutex
	sales []models.Snapshot
}

func NewInMemorySalesRepository() *InMemorySalesRepository {
	return &InMemorySalesRepository{}
}

func (r *InMemorySalesRepository) Record(ctx context.Context, sale models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sales = append(r.sales, sale.Clone())
	return nil
}

func (r *InMemorySalesRepository) Since(ctx context.Context, from time.Time) ([]models.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Snapshot
	for i := len(r.sales) - 1; i >= 0; i-- {
		sale := r.sales[i]
		if paidAt(sale).Before(from) {
			continue
		}
		out = append(out, sale.Clone())
	}
	return out, nil
}

func paidAt(s models.Snapshot) time.Time {
	if s.PaidAt != nil {
		return *s.PaidAt
	}
	return s.Date
}
