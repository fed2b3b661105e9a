package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

var (
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrOrderNotFound    = errors.New("order not found")
	ErrFloorNotFound    = errors.New("floor not found")
	ErrTableNotFound    = errors.New("table not found")
)

// MenuRepository defines the interface for menu item data access
type MenuRepository interface {
	GetAll(ctx context.Context) ([]models.MenuItem, error)
	GetByID(ctx context.Context, id int64) (*models.MenuItem, error)
	Create(ctx context.Context, item models.MenuItem) (*models.MenuItem, error)
	// Update applies fn to the stored item and saves the result atomically.
	Update(ctx context.Context, id int64, fn func(item *models.MenuItem) error) (*models.MenuItem, error)
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, category string) (int, error)
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	// Create fails with ErrCategoryExists when the name is taken.
	Create(ctx context.Context, category models.Category) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// OrderRepository defines the interface for the order registry.
// GetAll returns the most recent order first.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	Create(ctx context.Context, order models.Order) (*models.Order, error)
	Update(ctx context.Context, id int64, fn func(order *models.Order) error) (*models.Order, error)
}

// FloorRepository defines the interface for floors and their tables
type FloorRepository interface {
	GetAll(ctx context.Context) ([]models.Floor, error)
	GetByID(ctx context.Context, id string) (*models.Floor, error)
	Create(ctx context.Context, floor models.Floor) (*models.Floor, error)
	// AddTable numbers the table T{n} where n is the floor's table count plus one.
	AddTable(ctx context.Context, floorID string, table models.Table) (*models.Table, error)
	// GetTable returns the table and the id of the floor that owns it.
	GetTable(ctx context.Context, tableID string) (*models.Table, string, error)
	UpdateTable(ctx context.Context, tableID string, fn func(table *models.Table) error) (*models.Table, string, error)
}

// StaffRepository defines the interface for the staff roster
type StaffRepository interface {
	GetAll(ctx context.Context) ([]models.StaffMember, error)
}

// SalesRepository is the ledger of paid checkouts
type SalesRepository interface {
	Record(ctx context.Context, sale models.Snapshot) error
	// Since returns sales paid at or after from, newest first.
	Since(ctx context.Context, from time.Time) ([]models.Snapshot, error)
}
