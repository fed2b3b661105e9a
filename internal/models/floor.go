package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TableStatus is the occupancy state of a table
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
	TableBilling   TableStatus = "billing"
)

// tableTransitions holds every legal status change after floor setup.
// Reserved is only entered when a table is created.
var tableTransitions = map[TableStatus][]TableStatus{
	TableAvailable: {TableOccupied},
	TableOccupied:  {TableBilling, TableAvailable},
	TableBilling:   {TableAvailable},
	TableReserved:  {TableAvailable},
}

// Valid reports whether s is a known status
func (s TableStatus) Valid() bool {
	_, ok := tableTransitions[s]
	return ok
}

// CanTransitionTo reports whether a table may move from s to next
func (s TableStatus) CanTransitionTo(next TableStatus) bool {
	for _, allowed := range tableTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HasOccupancy reports whether tables in status s carry occupancy details
func (s TableStatus) HasOccupancy() bool {
	return s == TableOccupied || s == TableBilling
}

// Occupancy is present on a table only while it is occupied or billing
type Occupancy struct {
	OrderID    string          `json:"orderId"`
	Waiter     string          `json:"waiter"`
	TimeSeated string          `json:"timeSeated"`
	Total      decimal.Decimal `json:"total"`
}

// Table is a seat group on a floor
type Table struct {
	ID       string      `json:"id"`
	Number   string      `json:"number"`
	Capacity int         `json:"capacity"`
	Status   TableStatus `json:"status"`
	*Occupancy
}

// Clone returns a copy that does not share occupancy storage
func (t Table) Clone() Table {
	out := t
	if t.Occupancy != nil {
		occ := *t.Occupancy
		out.Occupancy = &occ
	}
	return out
}

// Floor owns an ordered list of tables
type Floor struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Tables []Table `json:"tables"`
}

// Clone returns a deep copy of the floor
func (f Floor) Clone() Floor {
	out := f
	out.Tables = make([]Table, len(f.Tables))
	for i, t := range f.Tables {
		out.Tables[i] = t.Clone()
	}
	return out
}

// TableEvent asks for a table to move to Status. Events come from the
// kitchen feed, the broker, or the demo simulator.
type TableEvent struct {
	TableID  string      `json:"tableId"`
	Status   TableStatus `json:"status"`
	OrderRef string      `json:"orderRef,omitempty"`
	Source   string      `json:"source,omitempty"`
	At       time.Time   `json:"at"`
}
