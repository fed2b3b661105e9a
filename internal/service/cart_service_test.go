package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/cart"
	"github.com/Lixing-Zhang/restaurant-pos/internal/checkout"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/receipt"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/pkg/logger"
	"github.com/shopspring/decimal"
)

func instantPayment(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

type checkoutFixture struct {
	carts     *CartService
	checkouts *CheckoutService
	sales     *repository.InMemorySalesRepository
	published *recordingPublisher
	spoolDir  string
}

func newCheckoutFixture(t *testing.T) checkoutFixture {
	t.Helper()
	log := logger.New("error")
	sales := repository.NewInMemorySalesRepository()
	pub := &recordingPublisher{}
	manager := checkout.NewManager(checkout.Options{
		After:  instantPayment,
		OnPaid: SaleRecorder(sales, pub, log),
		Logger: log,
	})

	renderer := receipt.NewRenderer("POS Restaurant")
	dir := t.TempDir()
	return checkoutFixture{
		carts:     NewCartService(cart.NewStore(0.08), repository.NewInMemoryMenuRepository(), manager, log),
		checkouts: NewCheckoutService(manager, renderer, receipt.NewSpooler(renderer, receipt.DirPrinter{Dir: dir}, log), log),
		sales:     sales,
		published: pub,
		spoolDir:  dir,
	}
}

func TestCartService_AddItem(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	c := f.carts.Create()

	tests := []struct {
		name    string
		cartID  string
		itemID  int64
		wantErr error
	}{
		{"available item", c.ID, 3, nil},
		{"same item again", c.ID, 3, nil},
		{"unavailable item", c.ID, 8, ErrItemUnavailable},
		{"unknown item", c.ID, 99, repository.ErrMenuItemNotFound},
		{"unknown cart", "nope", 3, cart.ErrCartNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.carts.AddItem(ctx, tt.cartID, tt.itemID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}

	view, _ := f.carts.Get(c.ID)
	if len(view.Items) != 1 || view.Items[0].Quantity != 2 {
		t.Errorf("expected one line with quantity 2, got %+v", view.Items)
	}
}

func TestCartService_Quantities(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	c := f.carts.Create()
	f.carts.AddItem(ctx, c.ID, 1)
	f.carts.AddItem(ctx, c.ID, 5)

	view, err := f.carts.UpdateQuantity(c.ID, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.TotalItems != 4 {
		t.Errorf("expected 4 items, got %d", view.TotalItems)
	}

	view, _ = f.carts.UpdateQuantity(c.ID, 5, -1)
	if len(view.Items) != 1 {
		t.Errorf("line at zero should be removed, got %+v", view.Items)
	}

	if _, err := f.carts.UpdateQuantity(c.ID, 5, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("expected ErrCartItemNotFound, got %v", err)
	}
	if _, err := f.carts.RemoveItem(c.ID, 7); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("expected ErrCartItemNotFound, got %v", err)
	}

	view, _ = f.carts.Clear(c.ID)
	if len(view.Items) != 0 || !view.Subtotal.IsZero() {
		t.Errorf("expected empty cart, got %+v", view)
	}
}

func TestCheckout_FullFlow(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	c := f.carts.Create()
	f.carts.AddItem(ctx, c.ID, 3)
	f.carts.AddItem(ctx, c.ID, 3)

	started, err := f.carts.Checkout(c.ID, checkout.VariantModal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Step != models.StepPayment || started.Snapshot.Status != models.PaymentPending {
		t.Fatalf("unexpected view after checkout: %+v", started)
	}
	// 2 x 14.99 = 29.98, tax 2.40
	if !started.Snapshot.Total.Equal(decimal.RequireFromString("32.38")) {
		t.Errorf("expected total 32.38, got %s", started.Snapshot.Total)
	}

	if _, err := f.checkouts.Receipt(started.ID, receipt.MediaScreen); err != nil {
		t.Errorf("pending order should still render, got %v", err)
	}

	paid, err := f.checkouts.Confirm(ctx, started.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.Step != models.StepSuccess || !paid.ModalOpen {
		t.Errorf("expected success with the modal open, got %+v", paid)
	}

	view, _ := f.carts.Get(c.ID)
	if len(view.Items) != 0 {
		t.Error("cart should be empty after payment")
	}

	recorded, _ := f.sales.Since(ctx, time.Time{})
	if len(recorded) != 1 || recorded[0].Status != models.PaymentPaid {
		t.Errorf("expected one paid sale, got %+v", recorded)
	}
	if keys := f.published.Keys(); len(keys) != 1 || keys[0] != "checkout.paid" {
		t.Errorf("expected checkout.paid, got %v", keys)
	}

	job, err := f.checkouts.Print(ctx, started.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.OrderID != started.Snapshot.ID {
		t.Errorf("printed the wrong order: %+v", job)
	}
	if printing, _ := f.checkouts.Printing(started.ID); printing {
		t.Error("printing flag should reset")
	}

	reset, err := f.checkouts.Reset(started.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reset.Step != models.StepCart || reset.ModalOpen {
		t.Errorf("unexpected view after reset: %+v", reset)
	}
	if _, err := f.checkouts.Receipt(started.ID, receipt.MediaPrint); !errors.Is(err, ErrNoReceipt) {
		t.Errorf("expected ErrNoReceipt, got %v", err)
	}
}

func TestCheckout_CancelAndErrors(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	c := f.carts.Create()

	if _, err := f.carts.Checkout(c.ID, checkout.VariantInline); !errors.Is(err, checkout.ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
	if _, err := f.carts.Checkout(c.ID, "popup"); !errors.Is(err, checkout.ErrInvalidVariant) {
		t.Errorf("expected ErrInvalidVariant, got %v", err)
	}

	f.carts.AddItem(ctx, c.ID, 1)
	started, err := f.carts.Checkout(c.ID, checkout.VariantInline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled, err := f.checkouts.Cancel(started.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Step != models.StepCart || cancelled.Snapshot != nil {
		t.Errorf("unexpected view after cancel: %+v", cancelled)
	}
	view, _ := f.carts.Get(c.ID)
	if len(view.Items) != 1 {
		t.Error("cancel must keep the cart")
	}

	if _, err := f.checkouts.Reset(started.ID); !errors.Is(err, checkout.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.checkouts.Get("missing"); !errors.Is(err, checkout.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	if err := f.carts.Delete(c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.checkouts.Get(started.ID); !errors.Is(err, checkout.ErrSessionNotFound) {
		t.Error("deleting the cart should drop its checkout session")
	}
}
