package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/application/services"
)

// WalletHandler handles HTTP requests for wallet stats
type WalletHandler struct {
	service *services.WalletService
	logger  *zap.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(service *services.WalletService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the wallet routes
func (h *WalletHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets/{address}", h.GetByAddress)
	r.Get("/wallets/{address}/stats", h.RefreshStats)
	r.Post("/wallets/{address}/refresh", h.RefreshStats)
}

// GetByAddress handles GET /api/v1/wallets/{address}
func (h *WalletHandler) GetByAddress(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	response, err := h.service.GetByAddress(r.Context(), address)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAddress) {
			respondError(w, http.StatusBadRequest, "Invalid wallet address")
			return
		}
		h.logger.Error("Failed to get wallet", zap.Error(err), zap.String("address", address))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "Wallet not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// RefreshStats handles POST /api/v1/wallets/{address}/refresh and
// GET /api/v1/wallets/{address}/stats
func (h *WalletHandler) RefreshStats(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	response, err := h.service.RefreshStats(r.Context(), address)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAddress):
			respondError(w, http.StatusBadRequest, "Invalid wallet address")
		case errors.Is(err, services.ErrNoActivity):
			respondError(w, http.StatusNotFound, "No transactions found for this wallet")
		case errors.Is(err, context.Canceled):
			h.logger.Info("Wallet refresh cancelled", zap.String("address", address))
		default:
			h.logger.Error("Failed to refresh wallet stats", zap.Error(err), zap.String("address", address))
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, response)
}
