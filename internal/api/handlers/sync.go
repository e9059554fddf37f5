package handlers

import (
	"log/slog"
	"net/http"

	"github.com/platewise/pos-sync-backend/internal/api/dto"
	"github.com/platewise/pos-sync-backend/internal/api/middleware"
	appsync "github.com/platewise/pos-sync-backend/internal/application/sync"
)

// SyncHandler serves the manual and scheduled sync endpoints.
type SyncHandler struct {
	BaseHandler
	orchestrator *appsync.Orchestrator
	opts         appsync.Options
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(orchestrator *appsync.Orchestrator, opts appsync.Options, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		orchestrator: orchestrator,
		opts:         opts,
	}
}

// SyncUser runs a manual sync over the caller's connections. Manual runs
// bypass the minimum-interval gate.
func (h *SyncHandler) SyncUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	opts := h.opts
	opts.MinInterval = 0
	results := h.orchestrator.SyncUser(r.Context(), userID, opts)

	h.WriteJSON(w, http.StatusOK, dto.SyncResponse{Results: results})
}

// SyncAll runs a scheduled sync over every active connection. Gated by the
// service token middleware, and throttled per connection.
func (h *SyncHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	results := h.orchestrator.SyncAll(r.Context(), h.opts)
	h.WriteJSON(w, http.StatusOK, dto.SyncResponse{Results: results})
}
