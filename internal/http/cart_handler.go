package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartStore interface {
	Add(ctx context.Context, ownerID int64, ref domain.ProductRef, quantity int) (*domain.CartLine, error)
	SetQuantity(ctx context.Context, ownerID, lineID int64, quantity int) (domain.CartMutation, error)
	Remove(ctx context.Context, ownerID, lineID int64) error
	Clear(ctx context.Context, ownerID int64) (int64, error)
	List(ctx context.Context, ownerID int64) (*domain.CartView, error)
	Count(ctx context.Context, ownerID int64) (domain.CartCount, error)
}

type CartHandler struct {
	carts CartStore
	log   *zap.Logger
}

func NewCartHandler(carts CartStore, log *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

type AddItemRequestDTO struct {
	Kind      string `json:"kind"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type UpdateQuantityResponseDTO struct {
	LineID int64               `json:"line_id"`
	Result domain.CartMutation `json:"result"`
}

// CountResponseDTO keeps "count" as the number of lines, as the storefront
// header badge expects.
type CountResponseDTO struct {
	Count int `json:"count"`
	Units int `json:"units"`
}

type ClearResponseDTO struct {
	Removed int64 `json:"removed"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromRequest(r)

	view, err := h.carts.List(r.Context(), owner.ID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GET /api/v1/cart/count
func (h *CartHandler) CountItems(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromRequest(r)

	n, err := h.carts.Count(r.Context(), owner.ID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, CountResponseDTO{Count: n.Lines, Units: n.Units})
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromRequest(r)

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	line, err := h.carts.Add(r.Context(), owner.ID, domain.ProductRef{Kind: kind, ID: req.ProductID}, req.Quantity)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, line)
}

// PUT /api/v1/cart/items/{line_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromRequest(r)

	lineID, ok := parseLineID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "quantity is required")
		return
	}

	mutation, err := h.carts.SetQuantity(r.Context(), owner.ID, lineID, *req.Quantity)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, UpdateQuantityResponseDTO{LineID: lineID, Result: mutation})
}

// DELETE /api/v1/cart/items/{line_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromRequest(r)

	lineID, ok := parseLineID(w, r)
	if !ok {
		return
	}

	if err := h.carts.Remove(r.Context(), owner.ID, lineID); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromRequest(r)

	n, err := h.carts.Clear(r.Context(), owner.ID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, ClearResponseDTO{Removed: n})
}

func parseLineID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "line_id"), 10, 64)
	if err != nil || lineID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "line_id must be a positive integer")
		return 0, false
	}
	return lineID, true
}
