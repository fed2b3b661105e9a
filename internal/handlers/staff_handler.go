package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
)

// StaffHandler serves the staff roster
type StaffHandler struct {
	staff *service.StaffService
	log   *slog.Logger
}

func NewStaffHandler(staff *service.StaffService, log *slog.Logger) *StaffHandler {
	return &StaffHandler{staff: staff, log: log}
}

type staffResponse struct {
	Members []models.StaffMember `json:"members"`
	Counts  service.StaffCounts  `json:"counts"`
}

// ListStaff handles GET /api/staff?role=
func (h *StaffHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	members, err := h.staff.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			WriteError(w, http.StatusBadRequest, "role must be one of: all, manager, cashier, chef, waiter, cleaner", h.log)
			return
		}
		h.log.Error("failed to list staff", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	counts, err := h.staff.Counts(r.Context())
	if err != nil {
		h.log.Error("failed to count staff", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, staffResponse{Members: members, Counts: counts}, h.log)
}
