package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/Lixing-Zhang/restaurant-pos/internal/events"
	"github.com/Lixing-Zhang/restaurant-pos/internal/floor"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
	"github.com/Lixing-Zhang/restaurant-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
)

func newFloorRouter() http.Handler {
	log := logger.New("error")
	svc := service.NewFloorService(repository.NewInMemoryFloorRepository(), floor.NewHub(log, nil), events.NopPublisher{}, log)
	h := NewFloorHandler(svc, log)

	r := chi.NewRouter()
	r.Get("/api/floors", h.ListFloors)
	r.Post("/api/floors", h.CreateFloor)
	r.Get("/api/floors/active", h.ActiveFloor)
	r.Put("/api/floors/active", h.SetActiveFloor)
	r.Get("/api/floors/{floorId}", h.GetFloor)
	r.Get("/api/floors/{floorId}/summary", h.Summary)
	r.Post("/api/floors/{floorId}/tables", h.AddTable)
	r.Post("/api/tables/{tableId}/start", h.StartOrder)
	r.Post("/api/tables/{tableId}/billing", h.MarkBilling)
	r.Post("/api/tables/{tableId}/clear", h.ClearTable)
	return r
}

func TestFloorHandler_Floors(t *testing.T) {
	router := newFloorRouter()

	w := doJSON(t, router, http.MethodGet, "/api/floors", nil)
	var floors []models.Floor
	if err := json.NewDecoder(w.Body).Decode(&floors); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(floors) != 3 {
		t.Fatalf("expected 3 floors, got %d", len(floors))
	}

	var active models.Floor
	json.NewDecoder(doJSON(t, router, http.MethodGet, "/api/floors/active", nil).Body).Decode(&active)
	if active.ID != "ground" {
		t.Errorf("expected the first floor to be active, got %q", active.ID)
	}

	w = doJSON(t, router, http.MethodPost, "/api/floors", map[string]string{"name": "Rooftop"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	var created models.Floor
	json.NewDecoder(w.Body).Decode(&created)
	if !strings.HasPrefix(created.ID, "floor-") || len(created.Tables) != 0 {
		t.Errorf("unexpected floor %+v", created)
	}

	json.NewDecoder(doJSON(t, router, http.MethodGet, "/api/floors/active", nil).Body).Decode(&active)
	if active.ID != created.ID {
		t.Errorf("expected the new floor to be active, got %q", active.ID)
	}

	w = doJSON(t, router, http.MethodPut, "/api/floors/active", map[string]string{"floorId": "outdoor"})
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPut, "/api/floors/active", map[string]string{"floorId": "attic"}); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/api/floors", map[string]string{"name": ""}); w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestFloorHandler_Summary(t *testing.T) {
	w := doJSON(t, newFloorRouter(), http.MethodGet, "/api/floors/ground/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var sum service.FloorSummary
	json.NewDecoder(w.Body).Decode(&sum)
	want := service.FloorSummary{FloorID: "ground", Total: 6, Available: 2, Occupied: 2, Reserved: 1, Billing: 1}
	if sum != want {
		t.Errorf("expected %+v, got %+v", want, sum)
	}
}

func TestFloorHandler_AddTable(t *testing.T) {
	tests := []struct {
		name           string
		floorID        string
		body           interface{}
		expectedStatus int
		expectedError  string
		wantStatus     models.TableStatus
	}{
		{"available table", "first", map[string]interface{}{"capacity": 4}, http.StatusCreated, "", models.TableAvailable},
		{"reserved table", "first", map[string]interface{}{"capacity": 8, "reserved": true}, http.StatusCreated, "", models.TableReserved},
		{"too small", "first", map[string]interface{}{"capacity": 0}, http.StatusBadRequest, "capacity must be at least 1", ""},
		{"too large", "first", map[string]interface{}{"capacity": 21}, http.StatusBadRequest, "capacity must be at most 20", ""},
		{"unknown floor", "attic", map[string]interface{}{"capacity": 4}, http.StatusNotFound, "Floor not found", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, newFloorRouter(), http.MethodPost, "/api/floors/"+tt.floorID+"/tables", tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedError != "" {
				if msg := errorMessage(t, w); msg != tt.expectedError {
					t.Errorf("expected error %q, got %q", tt.expectedError, msg)
				}
				return
			}
			var table models.Table
			json.NewDecoder(w.Body).Decode(&table)
			if table.Status != tt.wantStatus || table.Number != "T4" {
				t.Errorf("unexpected table %+v", table)
			}
		})
	}
}

func TestFloorHandler_TableLifecycle(t *testing.T) {
	router := newFloorRouter()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		wantStatus     models.TableStatus
	}{
		{"seat guests", "/api/tables/t2/start", http.StatusOK, models.TableOccupied},
		{"seat again", "/api/tables/t2/start", http.StatusConflict, ""},
		{"ask for bill", "/api/tables/t2/billing", http.StatusOK, models.TableBilling},
		{"clear", "/api/tables/t2/clear", http.StatusOK, models.TableAvailable},
		{"bill an empty table", "/api/tables/t2/billing", http.StatusConflict, ""},
		{"reserved cannot start", "/api/tables/t3/start", http.StatusConflict, ""},
		{"reserved can clear", "/api/tables/t3/clear", http.StatusOK, models.TableAvailable},
		{"unknown table", "/api/tables/t99/start", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tt.path, nil)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == "" {
				return
			}
			var table models.Table
			json.NewDecoder(w.Body).Decode(&table)
			if table.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, table.Status)
			}
			if tt.wantStatus == models.TableOccupied && (table.Occupancy == nil || table.Waiter != service.DefaultWaiter) {
				t.Errorf("expected occupancy details, got %+v", table)
			}
			if tt.wantStatus == models.TableAvailable && table.Occupancy != nil {
				t.Errorf("expected occupancy to be cleared, got %+v", table.Occupancy)
			}
		})
	}
}
