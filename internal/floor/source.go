// Package floor feeds table activity into the floor registry and pushes
// table changes to live consoles.
package floor

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/config"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// SourceSimulator marks events produced by RandomSource
const SourceSimulator = "simulator"

// EventSource yields table events until ctx is cancelled, then closes the channel
type EventSource interface {
	Events(ctx context.Context) (<-chan models.TableEvent, error)
}

// ChanSource adapts a plain channel. The channel's owner closes it.
type ChanSource chan models.TableEvent

func (c ChanSource) Events(context.Context) (<-chan models.TableEvent, error) {
	return c, nil
}

// TableLister reads the current floor layout
type TableLister interface {
	ListFloors(ctx context.Context) ([]models.Floor, error)
}

// RandomSource is the demo ticker. On each tick it fires with
// TickProbability, then moves occupied tables to billing with
// BillingChance and billing tables to available with AvailableChance.
type RandomSource struct {
	tables TableLister
	cfg    config.FloorConfig
	float  func() float64
	logger *slog.Logger
}

func NewRandomSource(tables TableLister, cfg config.FloorConfig, logger *slog.Logger) *RandomSource {
	return &RandomSource{tables: tables, cfg: cfg, float: rand.Float64, logger: logger}
}

func (s *RandomSource) Events(ctx context.Context) (<-chan models.TableEvent, error) {
	out := make(chan models.TableEvent, 16)

	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, ev := range s.tick(ctx) {
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out, nil
}

func (s *RandomSource) tick(ctx context.Context) []models.TableEvent {
	if s.float() >= s.cfg.TickProbability {
		return nil
	}

	floors, err := s.tables.ListFloors(ctx)
	if err != nil {
		s.logger.Error("simulator failed to read floors", "error", err)
		return nil
	}

	now := time.Now()
	var events []models.TableEvent
	for _, f := range floors {
		for _, t := range f.Tables {
			var next models.TableStatus
			switch {
			case t.Status == models.TableOccupied && s.float() < s.cfg.BillingChance:
				next = models.TableBilling
			case t.Status == models.TableBilling && s.float() < s.cfg.AvailableChance:
				next = models.TableAvailable
			default:
				continue
			}
			events = append(events, models.TableEvent{TableID: t.ID, Status: next, Source: SourceSimulator, At: now})
		}
	}
	return events
}
