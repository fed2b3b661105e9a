package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
	"github.com/shopspring/decimal"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		log:          log,
	}
}

type orderItemRequest struct {
	MenuItemID int64           `json:"menuItemId" validate:"gte=0"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

type orderRequest struct {
	OrderType    models.OrderType   `json:"orderType"`
	FloorID      string             `json:"floorId"`
	TableID      string             `json:"tableId"`
	CustomerName string             `json:"customerName"`
	Items        []orderItemRequest `json:"items" validate:"dive"`
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

func (req orderRequest) target() service.TargetRequest {
	return service.TargetRequest{
		OrderType:    req.OrderType,
		FloorID:      req.FloorID,
		TableID:      req.TableID,
		CustomerName: req.CustomerName,
	}
}

func (req orderRequest) items() []service.OrderItemRequest {
	items := make([]service.OrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.OrderItemRequest{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
		}
	}
	return items
}

// ListOrders handles GET /api/orders?status=
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, orders, h.log)
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	order, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, order, h.log)
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log.Warn("failed to decode order request", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	order, err := h.orderService.Create(r.Context(), service.CreateOrderRequest{
		TargetRequest: req.target(),
		Items:         req.items(),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, order, h.log)
	h.log.Info("order created successfully", "order_id", order.ID, "items_count", len(order.Items))
}

// UpdateOrder handles PUT /api/orders/{id}. The target changes only when
// orderType is sent.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}
	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	update := service.UpdateOrderRequest{Items: req.items()}
	if req.OrderType != "" {
		target := req.target()
		update.Target = &target
	}

	order, err := h.orderService.Update(r.Context(), id, update)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, order, h.log)
}

// ChangeStatus handles PATCH /api/orders/{id}/status
func (h *OrderHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}
	var req orderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	order, err := h.orderService.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, order, h.log)
}

// AdvanceStatus handles POST /api/orders/{id}/advance
func (h *OrderHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	order, err := h.orderService.Advance(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, order, h.log)
}

func (h *OrderHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "Order not found", h.log)
	case errors.Is(err, service.ErrEmptyOrder):
		WriteError(w, http.StatusBadRequest, "Order must contain at least one item", h.log)
	case errors.Is(err, service.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, "Quantity must be positive", h.log)
	case errors.Is(err, service.ErrInvalidItem):
		WriteError(w, http.StatusBadRequest, "Invalid menu item", h.log)
	case errors.Is(err, service.ErrInvalidOrderType):
		WriteError(w, http.StatusBadRequest, "orderType must be one of: dine-in, dine-out", h.log)
	case errors.Is(err, service.ErrTableRequired):
		WriteError(w, http.StatusBadRequest, "Please select a floor and table", h.log)
	case errors.Is(err, service.ErrCustomerRequired):
		WriteError(w, http.StatusBadRequest, "Please enter customer name", h.log)
	case errors.Is(err, service.ErrInvalidStatus):
		WriteError(w, http.StatusBadRequest, "status must be one of: pending, preparing, ready, served", h.log)
	case errors.Is(err, service.ErrIllegalTransition):
		WriteError(w, http.StatusConflict, err.Error(), h.log)
	default:
		h.log.Error("order request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}
