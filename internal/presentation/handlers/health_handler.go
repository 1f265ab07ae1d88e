package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db    HealthChecker
	cache HealthChecker
	node  HealthChecker
}

// NewHealthHandler creates a new health handler. cache and node are optional.
func NewHealthHandler(db, cache, node HealthChecker) *HealthHandler {
	return &HealthHandler{
		db:    db,
		cache: cache,
		node:  node,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health handles GET /health. The database is required; cache and RPC node
// failures only degrade the service.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	if err := h.db.HealthCheck(ctx); err != nil {
		response.Status = "unhealthy"
		response.Services["database"] = "unhealthy: " + err.Error()
	} else {
		response.Services["database"] = "healthy"
	}

	optional := []struct {
		name    string
		checker HealthChecker
	}{
		{"cache", h.cache},
		{"rpc", h.node},
	}
	for _, dep := range optional {
		if dep.checker == nil {
			continue
		}
		if err := dep.checker.HealthCheck(ctx); err != nil {
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
			response.Services[dep.name] = "unhealthy: " + err.Error()
		} else {
			response.Services[dep.name] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Live handles GET /live
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
