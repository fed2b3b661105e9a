package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-pos/internal/media"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
	"github.com/shopspring/decimal"
)

// MenuHandler handles menu item HTTP requests
type MenuHandler struct {
	service *service.MenuService
	log     *slog.Logger
}

func NewMenuHandler(service *service.MenuService, log *slog.Logger) *MenuHandler {
	return &MenuHandler{service: service, log: log}
}

type createMenuItemRequest struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Available   *bool           `json:"available"`
}

type updateMenuItemRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
	Description *string          `json:"description"`
	Available   *bool            `json:"available"`
}

// ListItems handles GET /api/menu-items?category=&search=
func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.service.ListItems(r.Context(), q.Get("category"), q.Get("search"))
	if err != nil {
		h.log.Error("failed to list menu items", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, items, h.log)
}

// CategoryNames handles GET /api/menu-items/categories
func (h *MenuHandler) CategoryNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.CategoryNames(r.Context())
	if err != nil {
		h.log.Error("failed to list menu categories", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, names, h.log)
}

// GetItem handles GET /api/menu-items/{id}
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, item, h.log)
}

// CreateItem handles POST /api/menu-items
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	item, err := h.service.CreateItem(r.Context(), service.MenuItemInput{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Description: req.Description,
		Available:   req.Available,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, item, h.log)
}

// UpdateItem handles PUT /api/menu-items/{id}. Absent fields are kept.
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	var req updateMenuItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), id, service.MenuItemPatch{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Description: req.Description,
		Available:   req.Available,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, item, h.log)
}

// ToggleAvailability handles PATCH /api/menu-items/{id}/availability
func (h *MenuHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	item, err := h.service.ToggleAvailability(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, item, h.log)
}

// DeleteItem handles DELETE /api/menu-items/{id}
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MenuHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrMenuItemNotFound):
		WriteError(w, http.StatusNotFound, "Menu item not found", h.log)
	case errors.Is(err, service.ErrNameRequired):
		WriteError(w, http.StatusBadRequest, "Item name is required", h.log)
	case errors.Is(err, service.ErrInvalidPrice):
		WriteError(w, http.StatusBadRequest, "Price must be greater than zero", h.log)
	case errors.Is(err, service.ErrCategoryRequired):
		WriteError(w, http.StatusBadRequest, "Category is required", h.log)
	case errors.Is(err, service.ErrUnknownCategory):
		WriteError(w, http.StatusBadRequest, "Category does not exist", h.log)
	case errors.Is(err, media.ErrInvalidImage):
		WriteError(w, http.StatusBadRequest, "Image could not be read", h.log)
	default:
		h.log.Error("menu request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}
