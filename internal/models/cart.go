package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line in an open cart. Quantity is always positive.
type CartItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
}

// LineTotal returns price times quantity
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartView is a consistent read of a cart with its derived totals
type CartView struct {
	ID         string          `json:"id"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Open       bool            `json:"open"`
}

// CheckoutStep is a state of the checkout flow
type CheckoutStep string

const (
	StepCart    CheckoutStep = "cart"
	StepPayment CheckoutStep = "payment"
	StepSuccess CheckoutStep = "success"
)

// PaymentStatus of a checkout snapshot
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// Snapshot is the frozen copy of a cart taken when checkout starts.
// It never shares item storage with the live cart.
type Snapshot struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Items    []CartItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Status   PaymentStatus   `json:"status"`
	PaidAt   *time.Time      `json:"paidAt,omitempty"`
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Items = append([]CartItem(nil), s.Items...)
	if s.PaidAt != nil {
		paid := *s.PaidAt
		out.PaidAt = &paid
	}
	return out
}
