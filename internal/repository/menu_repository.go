package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// InMemoryMenuRepository implements MenuRepository with in-memory storage
type InMemoryMenuRepository struct {
	mu     sync.RWMutex
	items  map[int64]models.MenuItem
	nextID int64
}

// NewInMemoryMenuRepository creates a new in-memory menu repository with seed data
func NewInMemoryMenuRepository() *InMemoryMenuRepository {
	return NewInMemoryMenuRepositoryWith(SeedMenuItems())
}

// NewInMemoryMenuRepositoryWith creates a repository holding exactly items
func NewInMemoryMenuRepositoryWith(items []models.MenuItem) *InMemoryMenuRepository {
	r := &InMemoryMenuRepository{
		items:  make(map[int64]models.MenuItem, len(items)),
		nextID: 1,
	}
	for _, item := range items {
		r.items[item.ID] = item
		if item.ID >= r.nextID {
			r.nextID = item.ID + 1
		}
	}
	return r
}

// GetAll returns all menu items ordered by id
func (r *InMemoryMenuRepository) GetAll(ctx context.Context) ([]models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// GetByID returns a menu item by its ID
func (r *InMemoryMenuRepository) GetByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, ErrMenuItemNotFound
	}
	return &item, nil
}

// Create stores a new item under the next free id
func (r *InMemoryMenuRepository) Create(ctx context.Context, item models.MenuItem) (*models.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = r.nextID
	r.nextID++
	r.items[item.ID] = item
	return &item, nil
}

func (r *InMemoryMenuRepository) Update(ctx context.Context, id int64, fn func(item *models.MenuItem) error) (*models.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists {
		return nil, ErrMenuItemNotFound
	}
	if err := fn(&item); err != nil {
		return nil, err
	}
	item.ID = id
	r.items[id] = item
	return &item, nil
}

func (r *InMemoryMenuRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return ErrMenuItemNotFound
	}
	delete(r.items, id)
	return nil
}

// CountByCategory returns how many items reference category
func (r *InMemoryMenuRepository) CountByCategory(ctx context.Context, category string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, item := range r.items {
		if item.Category == category {
			count++
		}
	}
	return count, nil
}
