package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Orders interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

type OrdersHandler struct {
	orders Orders
	log    *zap.Logger
}

func NewOrdersHandler(orders Orders, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders: orders,
		log:    log,
	}
}

type UpdateStatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(orders))
}

// GET /api/v1/admin/orders
func (h *OrdersHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAllOrders(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(orders))
}

// PUT /api/v1/admin/orders/{order_id}
func (h *OrdersHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id is required")
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !req.Status.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	if err := h.orders.UpdateOrderStatus(r.Context(), orderID, req.Status); err != nil {
		handleError(w, err)
		return
	}
	h.log.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", req.Status.String()),
		zap.String("admin_id", getSession(r.Context()).User().ID))
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(orders []domain.Order) []domain.Order {
	if orders == nil {
		return make([]domain.Order, 0)
	}
	return orders
}
