package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/platewise/pos-sync-backend/internal/api/dto"
	"github.com/platewise/pos-sync-backend/internal/api/middleware"
	"github.com/platewise/pos-sync-backend/internal/application/connect"
	"github.com/platewise/pos-sync-backend/internal/pos"
)

// credentialFields lists the manual-entry credential fields per provider.
// Providers absent from this map connect through OAuth only.
var credentialFields = map[string][]string{
	"square":     {"access_token", "location_id"},
	"shopify":    {"shop_domain", "access_token"},
	"lightspeed": {"account_id", "access_token"},
	"toast":      {"restaurant_guid", "access_token"},
}

// ProvidersHandler serves provider discovery and OAuth URL endpoints.
type ProvidersHandler struct {
	BaseHandler
	registry  *pos.Registry
	connector *connect.Connector
}

// NewProvidersHandler creates a new providers handler.
func NewProvidersHandler(registry *pos.Registry, connector *connect.Connector, logger *slog.Logger) *ProvidersHandler {
	return &ProvidersHandler{
		BaseHandler: BaseHandler{Logger: logger},
		registry:    registry,
		connector:   connector,
	}
}

// List returns all registered providers.
func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	providers := make([]dto.ProviderInfo, 0)
	for _, name := range h.registry.Names() {
		provider, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		providers = append(providers, dto.ProviderInfo{
			ID:             provider.Name(),
			Name:           provider.DisplayName(),
			SupportsOAuth:  provider.AuthURL("probe") != "",
			RequiredFields: credentialFields[provider.Name()],
		})
	}

	h.WriteJSON(w, http.StatusOK, dto.ProviderListResponse{Providers: providers})
}

// AuthURL issues a state token and returns the provider's authorization URL.
func (h *ProvidersHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")
	userID := middleware.UserID(r.Context())

	provider, err := h.registry.Get(providerName)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("provider "+providerName))
		return
	}

	state := h.connector.NewState(userID, providerName)
	url := provider.AuthURL(state)
	if url == "" {
		h.WriteError(w, http.StatusBadRequest,
			dto.BadRequestError(providerName+" does not support oauth"))
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.AuthURLResponse{URL: url, State: state})
}
