package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/logger"
	"github.com/fjod/game-hardware-store/internal/service"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// errorMapping pairs a domain sentinel with its HTTP status and code.
// Order matters: the first match wins.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{domain.ErrUnknownKind, http.StatusBadRequest, "unknown_kind"},
	{domain.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{service.ErrInvalidProduct, http.StatusBadRequest, "invalid_request"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{domain.ErrProductVanished, http.StatusConflict, "product_vanished"},
	{domain.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{domain.ErrCartLineNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrOrderNotFound, http.StatusNotFound, "not_found"},
}

// handleServiceError converts a service error into an HTTP response.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	for _, m := range errorMapping {
		if !errors.Is(err, m.err) {
			continue
		}
		resp := ErrorResponse{Error: err.Error(), Code: m.code}
		var pe *domain.ProductError
		if errors.As(err, &pe) {
			resp.Details = pe.Ref.String()
		}
		respondJSON(w, m.status, resp)
		return
	}

	logger.WithContext(r.Context(), log).Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
