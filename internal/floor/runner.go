package floor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// Applier moves a table as an event asks
type Applier interface {
	ApplyTableEvent(ctx context.Context, ev models.TableEvent) (models.Table, error)
}

// Runner drains every source into the applier
type Runner struct {
	sources []EventSource
	applier Applier
	logger  *slog.Logger
}

func NewRunner(applier Applier, logger *slog.Logger, sources ...EventSource) *Runner {
	return &Runner{sources: sources, applier: applier, logger: logger}
}

// Run applies events until ctx is cancelled and every source has closed.
// Events that the table cannot take are logged and skipped.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	channels := make([]<-chan models.TableEvent, 0, len(r.sources))
	for _, src := range r.sources {
		ch, err := src.Events(ctx)
		if err != nil {
			return fmt.Errorf("failed to start table event source: %w", err)
		}
		channels = append(channels, ch)
	}

	merged := make(chan models.TableEvent)
	var wg sync.WaitGroup
	for _, ch := range channels {
		wg.Add(1)
		go func(ch <-chan models.TableEvent) {
			defer wg.Done()
			for {
				select {
				case ev, ok := <-ch:
					if !ok {
						return
					}
					select {
					case merged <- ev:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}(ch)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	r.logger.Info("floor event runner started", "sources", len(channels))
	for ev := range merged {
		table, err := r.applier.ApplyTableEvent(ctx, ev)
		if err != nil {
			r.logger.Warn("table event skipped", "table_id", ev.TableID, "status", ev.Status, "source", ev.Source, "error", err)
			continue
		}
		r.logger.Info("table event applied", "table_id", table.ID, "status", table.Status, "source", ev.Source)
	}
	r.logger.Info("floor event runner stopped")
	return nil
}
