package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
	"github.com/Lixing-Zhang/restaurant-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
)

func newAdminRouter() http.Handler {
	log := logger.New("error")
	staff := NewStaffHandler(service.NewStaffService(repository.NewInMemoryStaffRepository(), log), log)
	reports := NewReportHandler(service.NewReportService(repository.NewInMemorySalesRepository(), repository.NewInMemoryOrderRepository(), log), log)

	r := chi.NewRouter()
	r.Get("/api/staff", staff.ListStaff)
	r.Get("/api/reports/sales", reports.SalesReport)
	return r
}

func TestStaffHandler_ListStaff(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		wantMembers    int
	}{
		{"everyone", "", http.StatusOK, 6},
		{"all", "?role=all", http.StatusOK, 6},
		{"waiters", "?role=waiter", http.StatusOK, 2},
		{"unknown role", "?role=sommelier", http.StatusBadRequest, 0},
	}

	router := newAdminRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodGet, "/api/staff"+tt.query, nil)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp staffResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Members) != tt.wantMembers {
				t.Errorf("expected %d members, got %d", tt.wantMembers, len(resp.Members))
			}
			want := service.StaffCounts{Total: 6, Active: 4, OnBreak: 1, OffDuty: 1}
			if resp.Counts != want {
				t.Errorf("counts should cover the whole roster, got %+v", resp.Counts)
			}
		})
	}
}

func TestReportHandler_SalesReport(t *testing.T) {
	router := newAdminRouter()

	w := doJSON(t, router, http.MethodGet, "/api/reports/sales?period=week", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var report models.SalesReport
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if report.Period != models.PeriodWeek || report.TotalOrders != 0 || !report.TotalRevenue.IsZero() {
		t.Errorf("unexpected empty report %+v", report)
	}
	if report.ActiveOrders != 3 {
		t.Errorf("expected 3 active orders, got %d", report.ActiveOrders)
	}

	if w := doJSON(t, router, http.MethodGet, "/api/reports/sales?period=decade", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}
