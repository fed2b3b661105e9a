package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
)

// CategoryHandler handles menu category HTTP requests
type CategoryHandler struct {
	service *service.CategoryService
	log     *slog.Logger
}

func NewCategoryHandler(service *service.CategoryService, log *slog.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, log: log}
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// List handles GET /api/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		h.log.Error("failed to list categories", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, categories, h.log)
}

// Create handles POST /api/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	category, err := h.service.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNameRequired):
			WriteError(w, http.StatusBadRequest, "Category name is required", h.log)
		case errors.Is(err, repository.ErrCategoryExists):
			WriteError(w, http.StatusConflict, "Category already exists", h.log)
		default:
			h.log.Error("failed to create category", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}
	WriteJSON(w, http.StatusCreated, category, h.log)
}

// Delete handles DELETE /api/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	category, err := h.service.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			WriteError(w, http.StatusNotFound, "Category not found", h.log)
		case errors.Is(err, service.ErrCategoryInUse):
			WriteError(w, http.StatusConflict, "Cannot delete \""+category.Name+"\" because it is assigned to menu items.", h.log)
		default:
			h.log.Error("failed to delete category", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
