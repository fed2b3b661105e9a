package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

var ErrAlreadyPrinting = errors.New("receipt is already printing")

// Printer receives a rendered receipt PDF
type Printer interface {
	Print(ctx context.Context, name string, pdf []byte) error
}

// Job describes a finished print
type Job struct {
	OrderID   string    `json:"orderId"`
	File      string    `json:"file"`
	Bytes     int       `json:"bytes"`
	PrintedAt time.Time `json:"printedAt"`
}

// Spooler sends receipts to a printer one job per order at a time.
// The receipt is always rendered before the printer is called, and the
// printing flag clears once the printer returns.
type Spooler struct {
	mu       sync.Mutex
	printing map[string]bool
	renderer Renderer
	printer  Printer
	logger   *slog.Logger
}

func NewSpooler(renderer Renderer, printer Printer, logger *slog.Logger) *Spooler {
	return &Spooler{
		printing: make(map[string]bool),
		renderer: renderer,
		printer:  printer,
		logger:   logger,
	}
}

// Printing reports whether a receipt for orderID is with the printer
func (s *Spooler) Printing(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.printing[orderID]
}

func (s *Spooler) Print(ctx context.Context, snap models.Snapshot) (Job, error) {
	doc, err := s.renderer.Render(snap, MediaPrint)
	if err != nil {
		return Job{}, err
	}
	data, err := PDF(doc)
	if err != nil {
		return Job{}, err
	}

	s.mu.Lock()
	if s.printing[snap.ID] {
		s.mu.Unlock()
		return Job{}, ErrAlreadyPrinting
	}
	s.printing[snap.ID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.printing, snap.ID)
		s.mu.Unlock()
	}()

	name := fmt.Sprintf("receipt-%s.pdf", snap.ID)
	if err := s.printer.Print(ctx, name, data); err != nil {
		s.logger.Error("failed to print receipt", "order_id", snap.ID, "error", err)
		return Job{}, fmt.Errorf("failed to print receipt %s: %w", snap.ID, err)
	}

	s.logger.Info("receipt printed", "order_id", snap.ID, "file", name, "bytes", len(data))
	return Job{OrderID: snap.ID, File: name, Bytes: len(data), PrintedAt: time.Now()}, nil
}

// DirPrinter spools receipts as files into Dir
type DirPrinter struct {
	Dir string
}

func (p DirPrinter) Print(ctx context.Context, name string, pdf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.Dir, filepath.Base(name)), pdf, 0o644)
}
