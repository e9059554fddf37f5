package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/platewise/pos-sync-backend/internal/api/dto"
)

// HealthHandler serves the health check endpoint.
type HealthHandler struct {
	BaseHandler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{BaseHandler: BaseHandler{Logger: logger}}
}

// Health returns the service health status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
