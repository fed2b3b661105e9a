package floor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/config"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/pkg/logger"
	"github.com/gorilla/websocket"
)

type staticFloors []models.Floor

func (s staticFloors) ListFloors(context.Context) ([]models.Floor, error) {
	return s, nil
}

var layout = staticFloors{{
	ID:   "ground",
	Name: "Ground Floor",
	Tables: []models.Table{
		{ID: "t1", Status: models.TableOccupied},
		{ID: "t2", Status: models.TableAvailable},
		{ID: "t3", Status: models.TableBilling},
	},
}}

// sequence returns the given values in order, then 1
func sequence(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		if i >= len(values) {
			return 1
		}
		v := values[i]
		i++
		return v
	}
}

func simConfig() config.FloorConfig {
	return config.FloorConfig{
		Simulation:      true,
		Interval:        time.Millisecond,
		TickProbability: 0.3,
		BillingChance:   0.05,
		AvailableChance: 0.02,
	}
}

func TestRandomSource_Tick(t *testing.T) {
	tests := []struct {
		name   string
		floats []float64
		want   map[string]models.TableStatus
	}{
		{"gate closed", []float64{0.5}, map[string]models.TableStatus{}},
		{"gate open, nothing moves", []float64{0.1, 0.9, 0.9}, map[string]models.TableStatus{}},
		{"occupied to billing", []float64{0.1, 0.01, 0.9}, map[string]models.TableStatus{"t1": models.TableBilling}},
		{"billing to available", []float64{0.1, 0.9, 0.01}, map[string]models.TableStatus{"t3": models.TableAvailable}},
		{"both", []float64{0.29, 0.04, 0.019}, map[string]models.TableStatus{"t1": models.TableBilling, "t3": models.TableAvailable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewRandomSource(layout, simConfig(), logger.New("error"))
			src.float = sequence(tt.floats...)

			events := src.tick(context.Background())
			if len(events) != len(tt.want) {
				t.Fatalf("expected %d events, got %+v", len(tt.want), events)
			}
			for _, ev := range events {
				if tt.want[ev.TableID] != ev.Status {
					t.Errorf("unexpected event %+v", ev)
				}
				if ev.Source != SourceSimulator {
					t.Errorf("expected simulator source, got %q", ev.Source)
				}
			}
		})
	}
}

func TestRandomSource_StopsWithContext(t *testing.T) {
	src := NewRandomSource(layout, simConfig(), logger.New("error"))
	src.float = func() float64 { return 0 }

	ctx, cancel := context.WithCancel(context.Background())
	events, err := src.Events(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case ev := <-events:
		if ev.TableID == "" {
			t.Error("expected a table event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a tick")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("source did not close after cancel")
		}
	}
}

type recordingApplier struct {
	mu      sync.Mutex
	applied []models.TableEvent
	fail    string
}

func (a *recordingApplier) ApplyTableEvent(ctx context.Context, ev models.TableEvent) (models.Table, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ev.TableID == a.fail {
		return models.Table{}, errors.New("illegal transition")
	}
	a.applied = append(a.applied, ev)
	return models.Table{ID: ev.TableID, Status: ev.Status}, nil
}

func TestRunner_AppliesAllSources(t *testing.T) {
	applier := &recordingApplier{fail: "bad"}
	a := make(ChanSource, 3)
	b := make(ChanSource, 2)

	a <- models.TableEvent{TableID: "t1", Status: models.TableBilling}
	a <- models.TableEvent{TableID: "bad", Status: models.TableBilling}
	a <- models.TableEvent{TableID: "t3", Status: models.TableAvailable}
	b <- models.TableEvent{TableID: "t2", Status: models.TableOccupied}
	close(a)
	close(b)

	runner := NewRunner(applier, logger.New("error"), a, b)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(applier.applied) != 3 {
		t.Errorf("expected 3 applied events, got %+v", applier.applied)
	}
}

type failingSource struct{}

func (failingSource) Events(context.Context) (<-chan models.TableEvent, error) {
	return nil, errors.New("broker down")
}

func TestRunner_SourceFailure(t *testing.T) {
	runner := NewRunner(&recordingApplier{}, logger.New("error"), failingSource{})
	if err := runner.Run(context.Background()); err == nil {
		t.Error("expected start failure")
	}
}

func TestRunner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	open := make(ChanSource)

	done := make(chan error, 1)
	go func() {
		done <- NewRunner(&recordingApplier{}, logger.New("error"), open).Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestHub_BroadcastsTableChanges(t *testing.T) {
	hub := NewHub(logger.New("error"), []string{"*"})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.TableChanged("ground", models.Table{ID: "t1", Number: "T1", Status: models.TableBilling})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read update: %v", err)
	}

	var update Update
	if err := json.Unmarshal(data, &update); err != nil {
		t.Fatalf("invalid update: %v", err)
	}
	if update.Type != "table.updated" || update.FloorID != "ground" || update.Table.Status != models.TableBilling {
		t.Errorf("unexpected update %+v", update)
	}
}

func TestHub_BroadcastSkipsStalledSubscriber(t *testing.T) {
	hub := NewHub(logger.New("error"), []string{"*"})

	// nothing drains the stalled queue, as with a client that stopped reading
	stalled := &subscriber{send: make(chan []byte), addr: "stalled"}
	healthy := &subscriber{send: make(chan []byte, sendBuffer), addr: "healthy"}
	hub.register(stalled)
	hub.register(healthy)

	done := make(chan struct{})
	go func() {
		hub.TableChanged("ground", models.Table{ID: "t1", Number: "T1", Status: models.TableOccupied})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a stalled subscriber")
	}

	if n := hub.Count(); n != 1 {
		t.Errorf("expected the stalled subscriber to be dropped, %d left", n)
	}
	if _, ok := <-stalled.send; ok {
		t.Error("expected the stalled queue to be closed")
	}

	select {
	case data := <-healthy.send:
		var update Update
		if err := json.Unmarshal(data, &update); err != nil || update.Table.ID != "t1" {
			t.Errorf("unexpected update %s (%v)", data, err)
		}
	default:
		t.Error("healthy subscriber got nothing")
	}

	// unregistering twice must not close the queue twice
	hub.unregister(healthy)
	hub.unregister(healthy)
	if n := hub.Count(); n != 0 {
		t.Errorf("expected no subscribers, got %d", n)
	}
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub(logger.New("error"), []string{"https://console.example.com"})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	header := map[string][]string{"Origin": {"https://evil.example.com"}}
	if _, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header); err == nil {
		t.Error("expected upgrade to be refused")
	}
}
