package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CatalogAdmin interface {
	SaveProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	SetStock(ctx context.Context, ref domain.ProductRef, stock int) error
	DeleteProduct(ctx context.Context, ref domain.ProductRef) error
	Restock(ctx context.Context) (*domain.RestockReport, error)
	LowStock(ctx context.Context, threshold int) ([]*domain.Product, error)
}

type AdminHandler struct {
	catalog CatalogAdmin
	log     *zap.Logger
}

func NewAdminHandler(catalog CatalogAdmin, log *zap.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, log: log}
}

type GameRequestDTO struct {
	Title    string          `json:"title"`
	Platform string          `json:"platform"`
	Genre    string          `json:"genre"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

type HardwareRequestDTO struct {
	Category string          `json:"category"`
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// PUT /api/v1/admin/games/{id}
func (h *AdminHandler) SaveGame(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req GameRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.save(w, r, &domain.Product{
		Ref:   domain.ProductRef{Kind: domain.KindGame, ID: id},
		Price: req.Price,
		Stock: req.Stock,
		Game:  &domain.GameDetails{Title: req.Title, Platform: req.Platform, Genre: req.Genre},
	})
}

// PUT /api/v1/admin/hardware/{id}
func (h *AdminHandler) SaveHardware(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req HardwareRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.save(w, r, &domain.Product{
		Ref:      domain.ProductRef{Kind: domain.KindHardware, ID: id},
		Price:    req.Price,
		Stock:    req.Stock,
		Hardware: &domain.HardwareDetails{Category: req.Category, Brand: req.Brand, Model: req.Model},
	})
}

func (h *AdminHandler) save(w http.ResponseWriter, r *http.Request, p *domain.Product) {
	saved, err := h.catalog.SaveProduct(r.Context(), p)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

type StockRequestDTO struct {
	Stock *int `json:"stock"`
}

// PUT /api/v1/admin/{games,hardware}/{id}/stock
func (h *AdminHandler) SetStock(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseProductID(w, r)
		if !ok {
			return
		}

		var req StockRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stock == nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "stock is required")
			return
		}

		ref := domain.ProductRef{Kind: kind, ID: id}
		if err := h.catalog.SetStock(r.Context(), ref, *req.Stock); err != nil {
			handleServiceError(w, r, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /api/v1/admin/{games,hardware}/{id}
func (h *AdminHandler) DeleteProduct(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseProductID(w, r)
		if !ok {
			return
		}

		if err := h.catalog.DeleteProduct(r.Context(), domain.ProductRef{Kind: kind, ID: id}); err != nil {
			handleServiceError(w, r, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /api/v1/admin/restock
func (h *AdminHandler) Restock(w http.ResponseWriter, r *http.Request) {
	report, err := h.catalog.Restock(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GET /api/v1/admin/low-stock?threshold=N
func (h *AdminHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "threshold must be a positive integer")
			return
		}
		threshold = n
	}

	products, err := h.catalog.LowStock(r.Context(), threshold)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
