package handlers

import (
	"context"
	"net/http"
	"time"

	"VITALSENSE_BACK-END/internal/dto"
	"VITALSENSE_BACK-END/internal/store"
	"VITALSENSE_BACK-END/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler handles health check related requests
type HealthHandler struct {
	db    *pgxpool.Pool
	cache *store.Cache
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(db *pgxpool.Pool, cache *store.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// HealthCheck handles basic health check (no database)
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// LivenessCheck handles process liveness check
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "alive"})
}

// ReadinessCheck handles readiness check (database and local cache connectivity)
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	details := map[string]any{"db": "ok", "cache": "ok"}
	degraded := false

	if err := h.db.Ping(ctx); err != nil {
		details["db"] = err.Error()
		degraded = true
	}
	if err := h.cache.Ping(ctx); err != nil {
		details["cache"] = err.Error()
		degraded = true
	}

	if degraded {
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, dto.HealthResponse{
			Status:  "degraded",
			Details: details,
		})
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{
		Status:  "ready",
		Details: details,
	})
}
