package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/application/services"
	"github.com/bimakw/wallet-ranker/internal/domain/entities"
)

// LeaderboardHandler handles HTTP requests for the leaderboard
type LeaderboardHandler struct {
	service *services.LeaderboardService
	logger  *zap.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(service *services.LeaderboardService, logger *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the leaderboard routes
func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.GetLeaderboard)
}

// GetLeaderboard handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Unparseable page numbers fall back to defaults
	params := services.LeaderboardParams{
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if v := q.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			params.Page = p
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if s, err := strconv.Atoi(v); err == nil {
			params.PageSize = s
		}
	}

	response, err := h.service.GetLeaderboard(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrInvalidSortField):
			respondError(w, http.StatusBadRequest, "Invalid sortBy parameter")
		case errors.Is(err, entities.ErrInvalidSortDirection):
			respondError(w, http.StatusBadRequest, "Invalid sortOrder parameter")
		default:
			h.logger.Error("Failed to get leaderboard", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, response)
}
