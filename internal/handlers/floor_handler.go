package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
	"github.com/go-chi/chi/v5"
)

// FloorHandler handles floors and table status HTTP requests
type FloorHandler struct {
	service *service.FloorService
	log     *slog.Logger
}

func NewFloorHandler(service *service.FloorService, log *slog.Logger) *FloorHandler {
	return &FloorHandler{service: service, log: log}
}

type createFloorRequest struct {
	Name string `json:"name" validate:"required"`
}

type activeFloorRequest struct {
	FloorID string `json:"floorId" validate:"required"`
}

type addTableRequest struct {
	Capacity int  `json:"capacity" validate:"min=1,max=20"`
	Reserved bool `json:"reserved"`
}

// ListFloors handles GET /api/floors
func (h *FloorHandler) ListFloors(w http.ResponseWriter, r *http.Request) {
	floors, err := h.service.ListFloors(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, floors, h.log)
}

// CreateFloor handles POST /api/floors
func (h *FloorHandler) CreateFloor(w http.ResponseWriter, r *http.Request) {
	var req createFloorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	floor, err := h.service.CreateFloor(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, floor, h.log)
}

// GetFloor handles GET /api/floors/{floorId}
func (h *FloorHandler) GetFloor(w http.ResponseWriter, r *http.Request) {
	floor, err := h.service.GetFloor(r.Context(), chi.URLParam(r, "floorId"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, floor, h.log)
}

// Summary handles GET /api/floors/{floorId}/summary
func (h *FloorHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context(), chi.URLParam(r, "floorId"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sum, h.log)
}

// ActiveFloor handles GET /api/floors/active
func (h *FloorHandler) ActiveFloor(w http.ResponseWriter, r *http.Request) {
	floor, err := h.service.ActiveFloor(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, floor, h.log)
}

// SetActiveFloor handles PUT /api/floors/active
func (h *FloorHandler) SetActiveFloor(w http.ResponseWriter, r *http.Request) {
	var req activeFloorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	floor, err := h.service.SetActiveFloor(r.Context(), req.FloorID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, floor, h.log)
}

// AddTable handles POST /api/floors/{floorId}/tables
func (h *FloorHandler) AddTable(w http.ResponseWriter, r *http.Request) {
	var req addTableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	table, err := h.service.AddTable(r.Context(), chi.URLParam(r, "floorId"), req.Capacity, req.Reserved)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, table, h.log)
}

// StartOrder handles POST /api/tables/{tableId}/start
func (h *FloorHandler) StartOrder(w http.ResponseWriter, r *http.Request) {
	h.tableAction(w, r, h.service.StartOrder)
}

// MarkBilling handles POST /api/tables/{tableId}/billing
func (h *FloorHandler) MarkBilling(w http.ResponseWriter, r *http.Request) {
	h.tableAction(w, r, h.service.MarkBilling)
}

// ClearTable handles POST /api/tables/{tableId}/clear
func (h *FloorHandler) ClearTable(w http.ResponseWriter, r *http.Request) {
	h.tableAction(w, r, h.service.ClearTable)
}

func (h *FloorHandler) tableAction(w http.ResponseWriter, r *http.Request, action func(context.Context, string) (*models.Table, error)) {
	table, err := action(r.Context(), chi.URLParam(r, "tableId"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, table, h.log)
}

func (h *FloorHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrFloorNotFound):
		WriteError(w, http.StatusNotFound, "Floor not found", h.log)
	case errors.Is(err, repository.ErrTableNotFound):
		WriteError(w, http.StatusNotFound, "Table not found", h.log)
	case errors.Is(err, service.ErrFloorNameRequired):
		WriteError(w, http.StatusBadRequest, "Floor name is required", h.log)
	case errors.Is(err, service.ErrInvalidCapacity):
		WriteError(w, http.StatusBadRequest, "Capacity must be between 1 and 20", h.log)
	case errors.Is(err, service.ErrIllegalTableTransition):
		WriteError(w, http.StatusConflict, err.Error(), h.log)
	default:
		h.log.Error("floor request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}
