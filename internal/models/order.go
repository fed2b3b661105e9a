package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType distinguishes table service from named take-away orders
type OrderType string

const (
	OrderTypeDineIn  OrderType = "dine-in"
	OrderTypeDineOut OrderType = "dine-out"
)

// OrderStatus is the kitchen lifecycle of a registered order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusServed    OrderStatus = "served"
)

// orderTransitions lists the only legal next status for each status
var orderTransitions = map[OrderStatus]OrderStatus{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusServed,
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusServed:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	allowed, ok := orderTransitions[s]
	return ok && allowed == next
}

// Next returns the status that follows s, if any
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := orderTransitions[s]
	return next, ok
}

// Target says where an order goes. It is either DineIn or DineOut.
type Target interface {
	OrderType() OrderType
	isTarget()
}

// DineIn orders are served at a table
type DineIn struct {
	FloorID     string
	TableID     string
	TableNumber string
}

// DineOut orders are collected by a named customer
type DineOut struct {
	CustomerName string
}

func (DineIn) OrderType() OrderType  { return OrderTypeDineIn }
func (DineOut) OrderType() OrderType { return OrderTypeDineOut }
func (DineIn) isTarget()             {}
func (DineOut) isTarget()            {}

// OrderItem is a line of a registered order
type OrderItem struct {
	MenuItemID int64           `json:"menuItemId,omitempty"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// OrderItemsTotal sums price times quantity over items
func OrderItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Order is an entry in the order registry
type Order struct {
	ID        int64
	Target    Target
	Items     []OrderItem
	Total     decimal.Decimal
	Status    OrderStatus
	Time      string
	CreatedAt time.Time
}

// orderJSON is the flat wire form of an Order
type orderJSON struct {
	ID           int64           `json:"id"`
	OrderType    OrderType       `json:"orderType"`
	TableNumber  string          `json:"tableNumber,omitempty"`
	TableID      string          `json:"tableId,omitempty"`
	FloorID      string          `json:"floorId,omitempty"`
	CustomerName string          `json:"customerName,omitempty"`
	Items        []OrderItem     `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	Time         string          `json:"time"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// MarshalJSON flattens the target into orderType plus its fields
func (o Order) MarshalJSON() ([]byte, error) {
	out := orderJSON{
		ID:        o.ID,
		Items:     o.Items,
		Total:     o.Total,
		Status:    o.Status,
		Time:      o.Time,
		CreatedAt: o.CreatedAt,
	}
	if out.Items == nil {
		out.Items = []OrderItem{}
	}

	switch t := o.Target.(type) {
	case DineIn:
		out.OrderType = OrderTypeDineIn
		out.TableNumber = t.TableNumber
		out.TableID = t.TableID
		out.FloorID = t.FloorID
	case DineOut:
		out.OrderType = OrderTypeDineOut
		out.CustomerName = t.CustomerName
	default:
		return nil, fmt.Errorf("order %d has no target", o.ID)
	}

	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the target from orderType. Fields belonging to the
// other variant are ignored.
func (o *Order) UnmarshalJSON(data []byte) error {
	var in orderJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	target, err := NewTarget(in.OrderType, in.FloorID, in.TableID, in.TableNumber, in.CustomerName)
	if err != nil {
		return err
	}

	*o = Order{
		ID:        in.ID,
		Target:    target,
		Items:     in.Items,
		Total:     in.Total,
		Status:    in.Status,
		Time:      in.Time,
		CreatedAt: in.CreatedAt,
	}
	return nil
}

// NewTarget builds the variant named by orderType
func NewTarget(orderType OrderType, floorID, tableID, tableNumber, customerName string) (Target, error) {
	switch orderType {
	case OrderTypeDineIn:
		return DineIn{FloorID: floorID, TableID: tableID, TableNumber: tableNumber}, nil
	case OrderTypeDineOut:
		return DineOut{CustomerName: customerName}, nil
	default:
		return nil, fmt.Errorf("unknown order type %q", orderType)
	}
}

// Clone returns a copy of the order that does not share item storage
func (o Order) Clone() Order {
	out := o
	out.Items = append([]OrderItem(nil), o.Items...)
	return out
}
