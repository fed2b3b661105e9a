// Package checkout drives a cart through cart, payment and success.
//
// Entering payment freezes a snapshot of the cart. Confirming payment waits
// for the simulated processor, marks the snapshot paid and empties the cart.
// Nothing else ever empties the cart.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrPaymentInProgress = errors.New("payment is being processed")
	ErrSessionNotFound   = errors.New("checkout session not found")
	ErrInvalidVariant    = errors.New("invalid checkout variant")
)

// Variant selects how the success receipt is presented
type Variant string

const (
	// VariantInline shows the receipt inside the cart drawer
	VariantInline Variant = "inline"
	// VariantModal closes the drawer and opens a success modal
	VariantModal Variant = "modal"
)

func (v Variant) Valid() bool {
	return v == VariantInline || v == VariantModal
}

// Cart is the part of the cart engine checkout needs
type Cart interface {
	ID() string
	View() models.CartView
	Clear()
	SetOpen(open bool)
}

// Options configures sessions. Zero values fall back to a 1.5s delay,
// time.After, time.Now and slog.Default.
type Options struct {
	PaymentDelay time.Duration
	After        func(d time.Duration) <-chan time.Time
	Now          func() time.Time
	// OnPaid runs once per confirmed payment with a copy of the paid snapshot.
	OnPaid func(ctx context.Context, snapshot models.Snapshot)
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.PaymentDelay == 0 {
		o.PaymentDelay = 1500 * time.Millisecond
	}
	if o.After == nil {
		o.After = time.After
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// View is a read of a session's state
type View struct {
	ID         string              `json:"id"`
	CartID     string              `json:"cartId"`
	Variant    Variant             `json:"variant"`
	Step       models.CheckoutStep `json:"step"`
	Processing bool                `json:"processing"`
	ModalOpen  bool                `json:"modalOpen"`
	Snapshot   *models.Snapshot    `json:"snapshot,omitempty"`
}

// Session is the checkout state machine of one cart
type Session struct {
	mu         sync.Mutex
	id         string
	cart       Cart
	variant    Variant
	step       models.CheckoutStep
	snapshot   *models.Snapshot
	processing bool
	modalOpen  bool
	opts       Options
}

// NewSession creates a session at the cart step
func NewSession(id string, cart Cart, variant Variant, opts Options) *Session {
	return &Session{
		id:      id,
		cart:    cart,
		variant: variant,
		step:    models.StepCart,
		opts:    opts.withDefaults(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		ID:         s.id,
		CartID:     s.cart.ID(),
		Variant:    s.variant,
		Step:       s.step,
		Processing: s.processing,
		ModalOpen:  s.modalOpen,
	}
	if s.snapshot != nil {
		snap := s.snapshot.Clone()
		v.Snapshot = &snap
	}
	return v
}

// Snapshot returns a copy of the frozen order, if any
func (s *Session) Snapshot() (models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return models.Snapshot{}, false
	}
	return s.snapshot.Clone(), true
}

// SetVariant changes the presentation while the session is at the cart step
func (s *Session) SetVariant(v Variant) error {
	if !v.Valid() {
		return ErrInvalidVariant
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != models.StepCart {
		return ErrInvalidTransition
	}
	s.variant = v
	return nil
}

// Begin moves cart to payment and freezes the snapshot. The cart keeps its items.
func (s *Session) Begin() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != models.StepCart {
		return s.viewLocked(), ErrInvalidTransition
	}

	cart := s.cart.View()
	if len(cart.Items) == 0 {
		return s.viewLocked(), ErrEmptyCart
	}

	now := s.opts.Now()
	s.snapshot = &models.Snapshot{
		ID:       snapshotID(now),
		Date:     now,
		Items:    cart.Items,
		Subtotal: cart.Subtotal,
		Tax:      cart.Tax,
		Total:    cart.GrandTotal,
		Status:   models.PaymentPending,
	}
	s.step = models.StepPayment

	s.opts.Logger.Info("checkout started",
		"session_id", s.id,
		"order_id", s.snapshot.ID,
		"items", len(cart.Items),
		"total", cart.GrandTotal.StringFixed(2),
	)
	return s.viewLocked(), nil
}

// ConfirmPayment waits for the payment delay and completes the order.
// Cancelling ctx during the wait leaves the session in payment with the
// snapshot still pending and returns ctx's error.
func (s *Session) ConfirmPayment(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.step != models.StepPayment || s.snapshot == nil {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, ErrInvalidTransition
	}
	if s.processing {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, ErrPaymentInProgress
	}
	s.processing = true
	orderID := s.snapshot.ID
	s.mu.Unlock()

	s.opts.Logger.Info("payment processing", "session_id", s.id, "order_id", orderID)

	select {
	case <-s.opts.After(s.opts.PaymentDelay):
	case <-ctx.Done():
		s.mu.Lock()
		s.processing = false
		v := s.viewLocked()
		s.mu.Unlock()
		s.opts.Logger.Warn("payment interrupted", "session_id", s.id, "order_id", orderID, "error", ctx.Err())
		return v, ctx.Err()
	}

	s.mu.Lock()
	paidAt := s.opts.Now()
	s.snapshot.Status = models.PaymentPaid
	s.snapshot.PaidAt = &paidAt
	s.processing = false
	s.step = models.StepSuccess
	paid := s.snapshot.Clone()

	s.cart.Clear()
	if s.variant == VariantModal {
		s.modalOpen = true
		s.cart.SetOpen(false)
	} else {
		s.cart.SetOpen(true)
	}
	v := s.viewLocked()
	s.mu.Unlock()

	s.opts.Logger.Info("payment confirmed", "session_id", s.id, "order_id", paid.ID, "total", paid.Total.StringFixed(2))

	if s.opts.OnPaid != nil {
		s.opts.OnPaid(context.WithoutCancel(ctx), paid)
	}
	return v, nil
}

// Cancel returns from payment to cart and discards the snapshot.
// It is refused while the payment is processing.
func (s *Session) Cancel() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != models.StepPayment {
		return s.viewLocked(), ErrInvalidTransition
	}
	if s.processing {
		return s.viewLocked(), ErrPaymentInProgress
	}

	s.opts.Logger.Info("checkout cancelled", "session_id", s.id, "order_id", s.snapshot.ID)
	s.snapshot = nil
	s.step = models.StepCart
	return s.viewLocked(), nil
}

// Reset starts a new order after success
func (s *Session) Reset() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != models.StepSuccess {
		return s.viewLocked(), ErrInvalidTransition
	}

	s.snapshot = nil
	s.step = models.StepCart
	s.modalOpen = false
	s.cart.SetOpen(false)
	return s.viewLocked(), nil
}

// snapshotID is ORD- followed by the last six digits of the millisecond clock
func snapshotID(t time.Time) string {
	return fmt.Sprintf("ORD-%06d", t.UnixMilli()%1_000_000)
}
