package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/events"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrFloorNameRequired      = errors.New("floor name is required")
	ErrInvalidCapacity        = errors.New("capacity must be between 1 and 20")
	ErrIllegalTableTransition = errors.New("illegal table status change")
)

const (
	MinTableCapacity = 1
	MaxTableCapacity = 20

	// DefaultWaiter is assigned until staff can be picked per table
	DefaultWaiter = "Staff Member"

	seatedTimeLayout = "03:04 PM"
)

// FloorNotifier is told about every floor and table change
type FloorNotifier interface {
	TableChanged(floorID string, table models.Table)
	FloorChanged(floor models.Floor)
}

// FloorSummary counts the tables of a floor by status
type FloorSummary struct {
	FloorID   string `json:"floorId"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	Occupied  int    `json:"occupied"`
	Reserved  int    `json:"reserved"`
	Billing   int    `json:"billing"`
}

// tableChange is the payload of table.status_changed
type tableChange struct {
	FloorID string       `json:"floorId"`
	Table   models.Table `json:"table"`
	Source  string       `json:"source,omitempty"`
}

// FloorService handles floors, tables and which floor the console shows
type FloorService struct {
	floors    repository.FloorRepository
	notifier  FloorNotifier
	publisher events.Publisher
	now       func() time.Time
	orderRef  func() string
	logger    *slog.Logger

	mu       sync.RWMutex
	activeID string
}

func NewFloorService(floors repository.FloorRepository, notifier FloorNotifier, publisher events.Publisher, logger *slog.Logger) *FloorService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &FloorService{
		floors:    floors,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
		orderRef:  func() string { return fmt.Sprintf("#%d", 1000+rand.Intn(9000)) },
		logger:    logger,
	}
}

func (s *FloorService) ListFloors(ctx context.Context) ([]models.Floor, error) {
	return s.floors.GetAll(ctx)
}

func (s *FloorService) GetFloor(ctx context.Context, id string) (*models.Floor, error) {
	return s.floors.GetByID(ctx, id)
}

// CreateFloor adds an empty floor and makes it the active one
func (s *FloorService) CreateFloor(ctx context.Context, name string) (*models.Floor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrFloorNameRequired
	}

	floor, err := s.floors.Create(ctx, models.Floor{
		ID:     "floor-" + uuid.NewString(),
		Name:   name,
		Tables: []models.Table{},
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.activeID = floor.ID
	s.mu.Unlock()

	s.logger.Info("floor created", "floor_id", floor.ID, "name", floor.Name)
	s.notify(nil, floor)
	return floor, nil
}

// ActiveFloor returns the floor the console shows, the first one by default
func (s *FloorService) ActiveFloor(ctx context.Context) (*models.Floor, error) {
	s.mu.RLock()
	id := s.activeID
	s.mu.RUnlock()

	if id != "" {
		floor, err := s.floors.GetByID(ctx, id)
		if err == nil || !errors.Is(err, repository.ErrFloorNotFound) {
			return floor, err
		}
	}

	floors, err := s.floors.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(floors) == 0 {
		return nil, repository.ErrFloorNotFound
	}
	return &floors[0], nil
}

func (s *FloorService) SetActiveFloor(ctx context.Context, id string) (*models.Floor, error) {
	floor, err := s.floors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.activeID = floor.ID
	s.mu.Unlock()
	return floor, nil
}

// AddTable appends a table numbered after the floor's existing tables.
// Reserved tables start reserved and leave that state only by being cleared.
func (s *FloorService) AddTable(ctx context.Context, floorID string, capacity int, reserved bool) (*models.Table, error) {
	if capacity < MinTableCapacity || capacity > MaxTableCapacity {
		return nil, ErrInvalidCapacity
	}

	status := models.TableAvailable
	if reserved {
		status = models.TableReserved
	}
	table, err := s.floors.AddTable(ctx, floorID, models.Table{
		ID:       "table-" + uuid.NewString(),
		Capacity: capacity,
		Status:   status,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("table added", "floor_id", floorID, "table_id", table.ID, "number", table.Number, "capacity", capacity)
	s.changed(ctx, floorID, *table, "")
	return table, nil
}

// StartOrder seats guests at an available table
func (s *FloorService) StartOrder(ctx context.Context, tableID string) (*models.Table, error) {
	return s.transition(ctx, tableID, models.TableOccupied, "", "")
}

// MarkBilling asks for the bill at an occupied table
func (s *FloorService) MarkBilling(ctx context.Context, tableID string) (*models.Table, error) {
	return s.transition(ctx, tableID, models.TableBilling, "", "")
}

// ClearTable frees a table and drops its occupancy details
func (s *FloorService) ClearTable(ctx context.Context, tableID string) (*models.Table, error) {
	return s.transition(ctx, tableID, models.TableAvailable, "", "")
}

// ApplyTableEvent moves a table as an event source asks
func (s *FloorService) ApplyTableEvent(ctx context.Context, ev models.TableEvent) (models.Table, error) {
	if !ev.Status.Valid() || ev.Status == models.TableReserved {
		return models.Table{}, fmt.Errorf("%w: %q", ErrIllegalTableTransition, ev.Status)
	}
	table, err := s.transition(ctx, ev.TableID, ev.Status, ev.OrderRef, ev.Source)
	if err != nil {
		return models.Table{}, err
	}
	return *table, nil
}

// Summary counts the tables of a floor by status
func (s *FloorService) Summary(ctx context.Context, floorID string) (FloorSummary, error) {
	floor, err := s.floors.GetByID(ctx, floorID)
	if err != nil {
		return FloorSummary{}, err
	}

	sum := FloorSummary{FloorID: floor.ID, Total: len(floor.Tables)}
	for _, t := range floor.Tables {
		switch t.Status {
		case models.TableAvailable:
			sum.Available++
		case models.TableOccupied:
			sum.Occupied++
		case models.TableReserved:
			sum.Reserved++
		case models.TableBilling:
			sum.Billing++
		}
	}
	return sum, nil
}

func (s *FloorService) transition(ctx context.Context, tableID string, next models.TableStatus, orderRef, source string) (*models.Table, error) {
	table, floorID, err := s.floors.UpdateTable(ctx, tableID, func(t *models.Table) error {
		if !t.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", ErrIllegalTableTransition, t.Status, next)
		}
		switch next {
		case models.TableOccupied:
			if orderRef == "" {
				orderRef = s.orderRef()
			}
			t.Occupancy = &models.Occupancy{
				OrderID:    orderRef,
				Waiter:     DefaultWaiter,
				TimeSeated: s.now().Format(seatedTimeLayout),
				Total:      decimal.Zero,
			}
		case models.TableAvailable:
			t.Occupancy = nil
		}
		t.Status = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrIllegalTableTransition) {
			s.logger.Warn("table change rejected", "table_id", tableID, "status", next, "error", err)
		}
		return nil, err
	}

	s.logger.Info("table status changed", "floor_id", floorID, "table_id", table.ID, "number", table.Number, "status", table.Status)
	s.changed(ctx, floorID, *table, source)
	return table, nil
}

func (s *FloorService) changed(ctx context.Context, floorID string, table models.Table, source string) {
	s.notify(&tableChange{FloorID: floorID, Table: table}, nil)
	if err := s.publisher.Publish(ctx, events.KeyTableChanged, tableChange{FloorID: floorID, Table: table, Source: source}); err != nil {
		s.logger.Error("failed to publish table change", "table_id", table.ID, "error", err)
	}
}

func (s *FloorService) notify(table *tableChange, floor *models.Floor) {
	if s.notifier == nil {
		return
	}
	if table != nil {
		s.notifier.TableChanged(table.FloorID, table.Table)
	}
	if floor != nil {
		s.notifier.FloorChanged(*floor)
	}
}
