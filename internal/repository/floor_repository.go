package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// InMemoryFloorRepository implements FloorRepository with in-memory storage.
// Floors keep their creation order.
type InMemoryFloorRepository struct {
	mu     sync.RWMutex
	floors []models.Floor
}

// NewInMemoryFloorRepository creates a new in-memory floor repository with seed data
func NewInMemoryFloorRepository() *InMemoryFloorRepository {
	return NewInMemoryFloorRepositoryWith(SeedFloors())
}

// NewInMemoryFloorRepositoryWith creates a repository holding exactly floors
func NewInMemoryFloorRepositoryWith(floors []models.Floor) *InMemoryFloorRepository {
	r := &InMemoryFloorRepository{}
	for _, f := range floors {
		r.floors = append(r.floors, f.Clone())
	}
	return r
}

func (r *InMemoryFloorRepository) GetAll(ctx context.Context) ([]models.Floor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	floors := make([]models.Floor, len(r.floors))
	for i, f := range r.floors {
		floors[i] = f.Clone()
	}
	return floors, nil
}

func (r *InMemoryFloorRepository) GetByID(ctx context.Context, id string) (*models.Floor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.floors {
		if f.ID == id {
			floor := f.Clone()
			return &floor, nil
		}
	}
	return nil, ErrFloorNotFound
}

func (r *InMemoryFloorRepository) Create(ctx context.Context, floor models.Floor) (*models.Floor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if floor.Tables == nil {
		floor.Tables = []models.Table{}
	}
	r.floors = append(r.floors, floor.Clone())
	return &floor, nil
}

func (r *InMemoryFloorRepository) AddTable(ctx context.Context, floorID string, table models.Table) (*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.floors {
		if r.floors[i].ID != floorID {
			continue
		}
		table.Number = fmt.Sprintf("T%d", len(r.floors[i].Tables)+1)
		r.floors[i].Tables = append(r.floors[i].Tables, table.Clone())
		return &table, nil
	}
	return nil, ErrFloorNotFound
}

func (r *InMemoryFloorRepository) GetTable(ctx context.Context, tableID string) (*models.Table, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.floors {
		for _, t := range f.Tables {
			if t.ID == tableID {
				table := t.Clone()
				return &table, f.ID, nil
			}
		}
	}
	return nil, "", ErrTableNotFound
}

func (r *InMemoryFloorRepository) UpdateTable(ctx context.Context, tableID string, fn func(table *models.Table) error) (*models.Table, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.floors {
		for j, t := range r.floors[i].Tables {
			if t.ID != tableID {
				continue
			}
			updated := t.Clone()
			if err := fn(&updated); err != nil {
				return nil, "", err
			}
			updated.ID = tableID
			r.floors[i].Tables[j] = updated.Clone()
			return &updated, r.floors[i].ID, nil
		}
	}
	return nil, "", ErrTableNotFound
}
