package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-pos/internal/cart"
	"github.com/Lixing-Zhang/restaurant-pos/internal/checkout"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
	"github.com/go-chi/chi/v5"
)

// CartHandler handles console cart HTTP requests
type CartHandler struct {
	service *service.CartService
	log     *slog.Logger
}

func NewCartHandler(service *service.CartService, log *slog.Logger) *CartHandler {
	return &CartHandler{service: service, log: log}
}

type addCartItemRequest struct {
	MenuItemID int64 `json:"menuItemId" validate:"required,gt=0"`
}

type updateCartItemRequest struct {
	Delta int `json:"delta" validate:"ne=0"`
}

type drawerRequest struct {
	Open bool `json:"open"`
}

type checkoutRequest struct {
	Variant checkout.Variant `json:"variant"`
}

// Create handles POST /api/carts
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusCreated, h.service.Create(), h.log)
}

// Get handles GET /api/carts/{cartId}
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(chi.URLParam(r, "cartId"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// Delete handles DELETE /api/carts/{cartId}
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(chi.URLParam(r, "cartId")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /api/carts/{cartId}/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	view, err := h.service.AddItem(r.Context(), chi.URLParam(r, "cartId"), req.MenuItemID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// UpdateQuantity handles PATCH /api/carts/{cartId}/items/{itemId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(r, "itemId")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}
	var req updateCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	view, err := h.service.UpdateQuantity(chi.URLParam(r, "cartId"), itemID, req.Delta)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// RemoveItem handles DELETE /api/carts/{cartId}/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(r, "itemId")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	view, err := h.service.RemoveItem(chi.URLParam(r, "cartId"), itemID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// Clear handles DELETE /api/carts/{cartId}/items
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Clear(chi.URLParam(r, "cartId"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// SetDrawer handles PUT /api/carts/{cartId}/drawer
func (h *CartHandler) SetDrawer(w http.ResponseWriter, r *http.Request) {
	var req drawerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	view, err := h.service.SetOpen(chi.URLParam(r, "cartId"), req.Open)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// Checkout handles POST /api/carts/{cartId}/checkout. The variant
// defaults to inline.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	req := checkoutRequest{Variant: checkout.VariantInline}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), h.log)
			return
		}
	}

	view, err := h.service.Checkout(chi.URLParam(r, "cartId"), req.Variant)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

func (h *CartHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound):
		WriteError(w, http.StatusNotFound, "Cart not found", h.log)
	case errors.Is(err, repository.ErrMenuItemNotFound):
		WriteError(w, http.StatusNotFound, "Menu item not found", h.log)
	case errors.Is(err, service.ErrCartItemNotFound):
		WriteError(w, http.StatusNotFound, "Item is not in the cart", h.log)
	case errors.Is(err, service.ErrItemUnavailable):
		WriteError(w, http.StatusConflict, "Menu item is not available", h.log)
	default:
		writeCheckoutError(w, err, h.log)
	}
}
