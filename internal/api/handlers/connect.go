package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platewise/pos-sync-backend/internal/api/dto"
	"github.com/platewise/pos-sync-backend/internal/api/middleware"
	"github.com/platewise/pos-sync-backend/internal/application/connect"
	"github.com/platewise/pos-sync-backend/internal/application/token"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/storage"
	"github.com/platewise/pos-sync-backend/internal/pos"
)

// ConnectionsHandler serves the connection lifecycle endpoints: completing
// OAuth, listing, refreshing, testing and disconnecting.
type ConnectionsHandler struct {
	BaseHandler
	connector *connect.Connector
	refresher *token.Refresher
	repo      storage.Repository
}

// NewConnectionsHandler creates a new connections handler.
func NewConnectionsHandler(connector *connect.Connector, refresher *token.Refresher, repo storage.Repository, logger *slog.Logger) *ConnectionsHandler {
	return &ConnectionsHandler{
		BaseHandler: BaseHandler{Logger: logger},
		connector:   connector,
		refresher:   refresher,
		repo:        repo,
	}
}

// Connect completes the OAuth flow for a provider.
func (h *ConnectionsHandler) Connect(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")
	userID := middleware.UserID(r.Context())

	var req dto.ConnectRequest
	if err := h.DecodeAndValidate(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	result, err := h.connector.Complete(r.Context(), userID, providerName, req.Code, req.State)
	if err != nil {
		h.writeConnectError(w, providerName, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.ConnectResponse{
		Success:          true,
		ConnectionID:     result.ConnectionID,
		LocationName:     result.LocationName,
		ProductsImported: result.ProductsImported,
	})
}

// List returns the caller's connections, tokens excluded.
func (h *ConnectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	connections, err := h.repo.ListConnections(r.Context(), userID)
	if err != nil {
		h.Logger.Error("listing connections failed", slog.String("error", err.Error()))
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	resp := dto.ConnectionListResponse{Connections: make([]dto.ConnectionResponse, 0, len(connections))}
	for _, conn := range connections {
		resp.Connections = append(resp.Connections, dto.NewConnectionResponse(conn))
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// Refresh forces a token refresh check for one connection.
func (h *ConnectionsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")
	userID := middleware.UserID(r.Context())

	conn, err := h.repo.GetConnection(r.Context(), userID, providerName)
	if err != nil {
		h.Logger.Error("loading connection failed", slog.String("error", err.Error()))
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if conn == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("connection"))
		return
	}

	result, err := h.refresher.RefreshIfNeeded(r.Context(), conn)
	if err != nil {
		h.writeConnectError(w, providerName, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.RefreshResponse{
		Refreshed: result.Refreshed,
		Message:   result.Message,
	})
}

// Disconnect removes the caller's connection to a provider.
func (h *ConnectionsHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")
	userID := middleware.UserID(r.Context())

	if err := h.connector.Disconnect(r.Context(), userID, providerName); err != nil {
		if errors.Is(err, pos.ErrUnknownProvider) {
			h.WriteError(w, http.StatusNotFound, dto.NotFoundError("provider "+providerName))
			return
		}
		h.Logger.Error("disconnect failed", slog.String("error", err.Error()))
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TestConnection validates manually entered credentials against a vendor.
func (h *ConnectionsHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req dto.TestConnectionRequest
	if err := h.DecodeAndValidate(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	result, err := h.connector.TestCredentials(r.Context(), req.Provider, req.Credentials)
	if err != nil {
		if errors.Is(err, pos.ErrUnknownProvider) {
			h.WriteError(w, http.StatusNotFound, dto.NotFoundError("provider "+req.Provider))
			return
		}
		if errors.Is(err, pos.ErrNotSupported) {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
			return
		}
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.TestConnectionResponse{
		Success:     result.Success,
		DisplayName: result.DisplayName,
		Error:       result.Err,
	})
}

// writeConnectError maps domain errors to HTTP responses. Vendor error text
// is passed through so the frontend can show the real cause.
func (h *ConnectionsHandler) writeConnectError(w http.ResponseWriter, providerName string, err error) {
	switch {
	case errors.Is(err, pos.ErrUnknownProvider):
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("provider "+providerName))
	case errors.Is(err, pos.ErrExchangeFailed),
		errors.Is(err, pos.ErrRefreshFailed),
		errors.Is(err, pos.ErrNoLocations),
		errors.Is(err, pos.ErrNoRefreshToken):
		h.WriteError(w, http.StatusBadGateway, dto.ProviderError(err.Error()))
	case errors.Is(err, pos.ErrNotSupported):
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
	default:
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
	}
}
