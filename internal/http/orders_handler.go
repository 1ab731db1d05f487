package http

import (
	"context"
	"net/http"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderReader interface {
	GetOrder(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, ownerID int64) ([]*domain.Order, error)
}

type OrdersHandler struct {
	orders OrderReader
	log    *zap.Logger
}

func NewOrdersHandler(orders OrderReader, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{orders: orders, log: log}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromRequest(r)

	orders, err := h.orders.ListOrders(r.Context(), owner.ID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromRequest(r)

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "order_id must be a UUID")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), owner.ID, id)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
