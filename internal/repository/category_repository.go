package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// InMemoryCategoryRepository implements CategoryRepository with in-memory storage
type InMemoryCategoryRepository struct {
	mu         sync.RWMutex
	categories map[int64]models.Category
	nextID     int64
}

// NewInMemoryCategoryRepository creates a new in-memory category repository with seed data
func NewInMemoryCategoryRepository() *InMemoryCategoryRepository {
	r := &InMemoryCategoryRepository{
		categories: make(map[int64]models.Category),
		nextID:     1,
	}
	for _, c := range SeedCategories() {
		r.categories[c.ID] = c
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *InMemoryCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (r *InMemoryCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.categories[id]
	if !exists {
		return nil, ErrCategoryNotFound
	}
	return &c, nil
}

func (r *InMemoryCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (r *InMemoryCategoryRepository) Create(ctx context.Context, category models.Category) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if c.Name == category.Name {
			return nil, ErrCategoryExists
		}
	}

	category.ID = r.nextID
	r.nextID++
	r.categories[category.ID] = category
	return &category, nil
}

func (r *InMemoryCategoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[id]; !exists {
		return ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}
