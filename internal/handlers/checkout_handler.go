package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-pos/internal/checkout"
	"github.com/Lixing-Zhang/restaurant-pos/internal/receipt"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
	"github.com/go-chi/chi/v5"
)

// CheckoutHandler handles checkout sessions and their receipts
type CheckoutHandler struct {
	service *service.CheckoutService
	log     *slog.Logger
}

func NewCheckoutHandler(service *service.CheckoutService, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: service, log: log}
}

// printStatus answers GET .../print while a job may be in flight
type printStatus struct {
	Printing bool `json:"printing"`
}

// Get handles GET /api/checkout/{sessionId}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeCheckoutError(w, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// Confirm handles POST /api/checkout/{sessionId}/confirm. It answers
// after the simulated payment completes.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Confirm(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		writeCheckoutError(w, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// Cancel handles POST /api/checkout/{sessionId}/cancel
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Cancel(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeCheckoutError(w, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// Reset handles POST /api/checkout/{sessionId}/reset
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Reset(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeCheckoutError(w, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// Receipt handles GET /api/checkout/{sessionId}/receipt?media=screen|print&format=json|text|pdf
func (h *CheckoutHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	media := receipt.MediaScreen
	switch q.Get("media") {
	case "", string(receipt.MediaScreen):
	case string(receipt.MediaPrint):
		media = receipt.MediaPrint
	default:
		WriteError(w, http.StatusBadRequest, "media must be one of: screen, print", h.log)
		return
	}

	doc, err := h.service.Receipt(chi.URLParam(r, "sessionId"), media)
	if err != nil {
		writeCheckoutError(w, err, h.log)
		return
	}

	switch q.Get("format") {
	case "", "json":
		WriteJSON(w, http.StatusOK, doc, h.log)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(receipt.Text(doc))); err != nil {
			h.log.Error("failed to write receipt", "error", err)
		}
	case "pdf":
		data, err := receipt.PDF(doc)
		if err != nil {
			h.log.Error("failed to render receipt pdf", "order_id", doc.OrderID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "receipt-"+doc.OrderID+".pdf"))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			h.log.Error("failed to write receipt", "error", err)
		}
	default:
		WriteError(w, http.StatusBadRequest, "format must be one of: json, text, pdf", h.log)
	}
}

// Print handles POST /api/checkout/{sessionId}/print
func (h *CheckoutHandler) Print(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	job, err := h.service.Print(r.Context(), id)
	if err != nil {
		writeCheckoutError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, job, h.log)
}

// PrintStatus handles GET /api/checkout/{sessionId}/print
func (h *CheckoutHandler) PrintStatus(w http.ResponseWriter, r *http.Request) {
	printing, err := h.service.Printing(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeCheckoutError(w, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, printStatus{Printing: printing}, h.log)
}

// writeCheckoutError maps checkout and receipt failures to responses
func writeCheckoutError(w http.ResponseWriter, err error, log *slog.Logger) {
	switch {
	case errors.Is(err, checkout.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, "Checkout not found", log)
	case errors.Is(err, service.ErrNoReceipt), errors.Is(err, receipt.ErrNothingToRender):
		WriteError(w, http.StatusNotFound, "There is no order to show", log)
	case errors.Is(err, checkout.ErrEmptyCart):
		WriteError(w, http.StatusBadRequest, "Cart is empty", log)
	case errors.Is(err, checkout.ErrInvalidVariant):
		WriteError(w, http.StatusBadRequest, "variant must be one of: inline, modal", log)
	case errors.Is(err, checkout.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, "Checkout cannot do that from its current step", log)
	case errors.Is(err, checkout.ErrPaymentInProgress):
		WriteError(w, http.StatusConflict, "Payment is already processing", log)
	case errors.Is(err, receipt.ErrAlreadyPrinting):
		WriteError(w, http.StatusConflict, "Receipt is already printing", log)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Warn("checkout request abandoned", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "Payment was interrupted", log)
	default:
		log.Error("checkout request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", log)
	}
}
