package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/application/services"
)

// RankingHandler triggers full score recalculation
type RankingHandler struct {
	recalculator services.Recalculator
	logger       *zap.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(recalculator services.Recalculator, logger *zap.Logger) *RankingHandler {
	return &RankingHandler{
		recalculator: recalculator,
		logger:       logger,
	}
}

// RegisterRoutes registers the ranking routes
func (h *RankingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/rankings/recalculate", h.Recalculate)
}

// Recalculate handles POST /api/v1/rankings/recalculate
func (h *RankingHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	result, err := h.recalculator.RecalculateAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to recalculate rankings", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
