package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Lixing-Zhang/restaurant-pos/internal/checkout"
	"github.com/Lixing-Zhang/restaurant-pos/internal/events"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/receipt"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
)

var ErrNoReceipt = errors.New("checkout has no order to show")

// CheckoutService drives checkout sessions and their receipts
type CheckoutService struct {
	sessions *checkout.Manager
	renderer receipt.Renderer
	spooler  *receipt.Spooler
	logger   *slog.Logger
}

func NewCheckoutService(sessions *checkout.Manager, renderer receipt.Renderer, spooler *receipt.Spooler, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{sessions: sessions, renderer: renderer, spooler: spooler, logger: logger}
}

func (s *CheckoutService) Get(id string) (checkout.View, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return checkout.View{}, err
	}
	return session.View(), nil
}

// Confirm runs the simulated payment. It returns early with ctx's error
// when the caller goes away, leaving the order pending.
func (s *CheckoutService) Confirm(ctx context.Context, id string) (checkout.View, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return checkout.View{}, err
	}
	return session.ConfirmPayment(ctx)
}

func (s *CheckoutService) Cancel(id string) (checkout.View, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return checkout.View{}, err
	}
	return session.Cancel()
}

func (s *CheckoutService) Reset(id string) (checkout.View, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return checkout.View{}, err
	}
	return session.Reset()
}

// Receipt renders the session's order for media
func (s *CheckoutService) Receipt(id string, media receipt.Media) (receipt.Document, error) {
	snap, err := s.snapshot(id)
	if err != nil {
		return receipt.Document{}, err
	}
	return s.renderer.Render(snap, media)
}

// Print sends the session's receipt to the printer
func (s *CheckoutService) Print(ctx context.Context, id string) (receipt.Job, error) {
	snap, err := s.snapshot(id)
	if err != nil {
		return receipt.Job{}, err
	}
	return s.spooler.Print(ctx, snap)
}

// Printing reports whether the session's receipt is with the printer
func (s *CheckoutService) Printing(id string) (bool, error) {
	snap, err := s.snapshot(id)
	if err != nil {
		return false, err
	}
	return s.spooler.Printing(snap.ID), nil
}

func (s *CheckoutService) snapshot(id string) (models.Snapshot, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return models.Snapshot{}, err
	}
	snap, ok := session.Snapshot()
	if !ok {
		return models.Snapshot{}, ErrNoReceipt
	}
	return snap, nil
}

// SaleRecorder returns the hook run after each confirmed payment. It
// records the sale for reports and announces it on the broker.
func SaleRecorder(sales repository.SalesRepository, publisher events.Publisher, logger *slog.Logger) func(context.Context, models.Snapshot) {
	return func(ctx context.Context, snap models.Snapshot) {
		if err := sales.Record(ctx, snap); err != nil {
			logger.Error("failed to record sale", "order_id", snap.ID, "error", err)
		}
		if err := publisher.Publish(ctx, events.KeyCheckoutPaid, snap); err != nil {
			logger.Error("failed to publish sale", "order_id", snap.ID, "error", err)
		}
	}
}
