package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stridestreak/internal/store"
)

type HealthHandler struct {
	store  *store.Store
	logger *zap.Logger
}

func NewHealthHandler(s *store.Store, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: s, logger: logger}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check: database unreachable", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":   "unhealthy",
			"message":  "Database connection failed",
			"database": "disconnected",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"message":  "API is running",
		"database": "connected",
	})
}
