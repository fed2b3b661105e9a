package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/cart"
	"github.com/Lixing-Zhang/restaurant-pos/internal/checkout"
	"github.com/Lixing-Zhang/restaurant-pos/internal/events"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/receipt"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
	"github.com/Lixing-Zhang/restaurant-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func newCartRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.New("error")
	manager := checkout.NewManager(checkout.Options{
		After: func(time.Duration) <-chan time.Time {
			ch := make(chan time.Time, 1)
			ch <- time.Now()
			return ch
		},
		OnPaid: service.SaleRecorder(repository.NewInMemorySalesRepository(), events.NopPublisher{}, log),
		Logger: log,
	})
	renderer := receipt.NewRenderer("POS Restaurant")
	spooler := receipt.NewSpooler(renderer, receipt.DirPrinter{Dir: t.TempDir()}, log)

	carts := NewCartHandler(service.NewCartService(cart.NewStore(0.08), repository.NewInMemoryMenuRepository(), manager, log), log)
	checkouts := NewCheckoutHandler(service.NewCheckoutService(manager, renderer, spooler, log), log)

	r := chi.NewRouter()
	r.Post("/api/carts", carts.Create)
	r.Get("/api/carts/{cartId}", carts.Get)
	r.Delete("/api/carts/{cartId}", carts.Delete)
	r.Post("/api/carts/{cartId}/items", carts.AddItem)
	r.Delete("/api/carts/{cartId}/items", carts.Clear)
	r.Patch("/api/carts/{cartId}/items/{itemId}", carts.UpdateQuantity)
	r.Delete("/api/carts/{cartId}/items/{itemId}", carts.RemoveItem)
	r.Put("/api/carts/{cartId}/drawer", carts.SetDrawer)
	r.Post("/api/carts/{cartId}/checkout", carts.Checkout)
	r.Get("/api/checkout/{sessionId}", checkouts.Get)
	r.Post("/api/checkout/{sessionId}/confirm", checkouts.Confirm)
	r.Post("/api/checkout/{sessionId}/cancel", checkouts.Cancel)
	r.Post("/api/checkout/{sessionId}/reset", checkouts.Reset)
	r.Get("/api/checkout/{sessionId}/receipt", checkouts.Receipt)
	r.Post("/api/checkout/{sessionId}/print", checkouts.Print)
	r.Get("/api/checkout/{sessionId}/print", checkouts.PrintStatus)
	return r
}

func decodeCart(t *testing.T, w interface{ Bytes() []byte }) models.CartView {
	t.Helper()
	var view models.CartView
	if err := json.Unmarshal(w.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode cart: %v", err)
	}
	return view
}

func decodeCheckout(t *testing.T, w interface{ Bytes() []byte }) checkout.View {
	t.Helper()
	var view checkout.View
	if err := json.Unmarshal(w.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode checkout: %v", err)
	}
	return view
}

func newCart(t *testing.T, router http.Handler) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/carts", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	return decodeCart(t, w.Body).ID
}

func TestCartHandler_Items(t *testing.T) {
	router := newCartRouter(t)
	id := newCart(t, router)
	base := "/api/carts/" + id

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
		expectedError  string
		totalItems     int
	}{
		{"add burger", http.MethodPost, base + "/items", map[string]int64{"menuItemId": 3}, http.StatusOK, "", 1},
		{"add tea", http.MethodPost, base + "/items", map[string]int64{"menuItemId": 5}, http.StatusOK, "", 2},
		{"unavailable item", http.MethodPost, base + "/items", map[string]int64{"menuItemId": 8}, http.StatusConflict, "Menu item is not available", 0},
		{"unknown item", http.MethodPost, base + "/items", map[string]int64{"menuItemId": 99}, http.StatusNotFound, "Menu item not found", 0},
		{"missing item id", http.MethodPost, base + "/items", map[string]int64{}, http.StatusBadRequest, "menuItemId is required", 0},
		{"increase burger", http.MethodPatch, base + "/items/3", map[string]int{"delta": 2}, http.StatusOK, "", 4},
		{"zero delta", http.MethodPatch, base + "/items/3", map[string]int{"delta": 0}, http.StatusBadRequest, "delta must not be 0", 0},
		{"decrease tea to zero", http.MethodPatch, base + "/items/5", map[string]int{"delta": -1}, http.StatusOK, "", 3},
		{"tea is gone", http.MethodDelete, base + "/items/5", nil, http.StatusNotFound, "Item is not in the cart", 0},
		{"unknown cart", http.MethodPost, "/api/carts/nope/items", map[string]int64{"menuItemId": 3}, http.StatusNotFound, "Cart not found", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, tt.method, tt.path, tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedError != "" {
				if msg := errorMessage(t, w); msg != tt.expectedError {
					t.Errorf("expected error %q, got %q", tt.expectedError, msg)
				}
				return
			}
			if view := decodeCart(t, w.Body); view.TotalItems != tt.totalItems {
				t.Errorf("expected %d items, got %d", tt.totalItems, view.TotalItems)
			}
		})
	}

	// 3 x 14.99 = 44.97, tax 3.60
	view := decodeCart(t, doJSON(t, router, http.MethodGet, base, nil).Body)
	if !view.GrandTotal.Equal(decimal.RequireFromString("48.57")) {
		t.Errorf("expected grand total 48.57, got %s", view.GrandTotal)
	}

	view = decodeCart(t, doJSON(t, router, http.MethodPut, base+"/drawer", map[string]bool{"open": true}).Body)
	if !view.Open {
		t.Error("expected drawer to be open")
	}

	view = decodeCart(t, doJSON(t, router, http.MethodDelete, base+"/items", nil).Body)
	if len(view.Items) != 0 {
		t.Errorf("expected an empty cart, got %+v", view.Items)
	}

	if w := doJSON(t, router, http.MethodDelete, base, nil); w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, base, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", w.Code)
	}
}

func TestCheckoutHandler_Flow(t *testing.T) {
	router := newCartRouter(t)
	id := newCart(t, router)
	base := "/api/carts/" + id

	w := doJSON(t, router, http.MethodPost, base+"/checkout", nil)
	if w.Code != http.StatusBadRequest || errorMessage(t, w) != "Cart is empty" {
		t.Fatalf("expected empty cart refusal, got %d", w.Code)
	}

	doJSON(t, router, http.MethodPost, base+"/items", map[string]int64{"menuItemId": 3})
	doJSON(t, router, http.MethodPost, base+"/items", map[string]int64{"menuItemId": 3})

	w = doJSON(t, router, http.MethodPost, base+"/checkout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	started := decodeCheckout(t, w.Body)
	if started.Step != models.StepPayment || started.Variant != checkout.VariantInline {
		t.Fatalf("unexpected checkout %+v", started)
	}
	if !started.Snapshot.Total.Equal(decimal.RequireFromString("32.38")) {
		t.Errorf("expected total 32.38, got %s", started.Snapshot.Total)
	}
	session := "/api/checkout/" + started.ID

	if w := doJSON(t, router, http.MethodPost, session+"/reset", nil); w.Code != http.StatusConflict {
		t.Errorf("expected status 409 for a reset during payment, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, session+"/confirm", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	paid := decodeCheckout(t, w.Body)
	if paid.Step != models.StepSuccess || paid.Snapshot.Status != models.PaymentPaid {
		t.Errorf("unexpected checkout after payment %+v", paid)
	}

	view := decodeCart(t, doJSON(t, router, http.MethodGet, base, nil).Body)
	if len(view.Items) != 0 || !view.Open {
		t.Errorf("expected an empty cart with the drawer open, got %+v", view)
	}

	if w := doJSON(t, router, http.MethodPost, session+"/cancel", nil); w.Code != http.StatusConflict {
		t.Errorf("expected status 409 for a cancel after payment, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, session+"/print", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var printed struct {
		OrderID string `json:"orderId"`
	}
	json.NewDecoder(w.Body).Decode(&printed)
	if printed.OrderID != paid.Snapshot.ID {
		t.Errorf("unexpected print answer %+v", printed)
	}

	w = doJSON(t, router, http.MethodGet, session+"/print", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var status struct {
		Printing *bool `json:"printing"`
	}
	json.NewDecoder(w.Body).Decode(&status)
	if status.Printing == nil || *status.Printing {
		t.Errorf("expected the finished job to report printing=false, got %+v", status)
	}

	w = doJSON(t, router, http.MethodPost, session+"/reset", nil)
	if w.Code != http.StatusOK || decodeCheckout(t, w.Body).Step != models.StepCart {
		t.Errorf("expected reset to the cart step, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, session+"/receipt", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for a receipt after reset, got %d", w.Code)
	}
}

func TestCheckoutHandler_Receipt(t *testing.T) {
	router := newCartRouter(t)
	id := newCart(t, router)
	doJSON(t, router, http.MethodPost, "/api/carts/"+id+"/items", map[string]int64{"menuItemId": 5})
	started := decodeCheckout(t, doJSON(t, router, http.MethodPost, "/api/carts/"+id+"/checkout", map[string]string{"variant": "modal"}).Body)
	if started.Variant != checkout.VariantModal {
		t.Fatalf("expected the modal variant, got %q", started.Variant)
	}
	session := "/api/checkout/" + started.ID

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		contentType    string
		contains       string
	}{
		{"screen json", "", http.StatusOK, "application/json", `"orderId"`},
		{"print text", "?media=print&format=text", http.StatusOK, "text/plain; charset=utf-8", started.Snapshot.ID},
		{"pdf", "?format=pdf", http.StatusOK, "application/pdf", "%PDF-"},
		{"bad media", "?media=fax", http.StatusBadRequest, "application/json", "media must be one of"},
		{"bad format", "?format=docx", http.StatusBadRequest, "application/json", "format must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodGet, session+"/receipt"+tt.query, nil)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("expected content type %q, got %q", tt.contentType, ct)
			}
			if !bytes.Contains(w.Body.Bytes(), []byte(tt.contains)) {
				t.Errorf("expected %q in body", tt.contains)
			}
		})
	}

	w := doJSON(t, router, http.MethodGet, session+"/receipt?format=pdf", nil)
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "receipt-"+started.Snapshot.ID+".pdf") {
		t.Errorf("unexpected content disposition %q", cd)
	}

	if w := doJSON(t, router, http.MethodGet, "/api/checkout/unknown", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}
