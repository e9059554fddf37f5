package dto

import (
	"time"

	appsync "github.com/platewise/pos-sync-backend/internal/application/sync"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ProviderInfo describes a registered POS provider and the credential
// fields its manual-entry form needs.
type ProviderInfo struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	SupportsOAuth  bool     `json:"supports_oauth"`
	RequiredFields []string `json:"required_fields,omitempty"`
}

// ProviderListResponse is returned when listing providers.
type ProviderListResponse struct {
	Providers []ProviderInfo `json:"providers"`
}

// AuthURLResponse carries a freshly built OAuth authorization URL.
type AuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// ConnectResponse is the outcome of a completed connect flow.
type ConnectResponse struct {
	Success          bool   `json:"success"`
	ConnectionID     int64  `json:"connection_id"`
	LocationName     string `json:"location_name"`
	ProductsImported int    `json:"products_imported"`
}

// ConnectionResponse represents a connection in API responses. Tokens are
// never serialized.
type ConnectionResponse struct {
	ID           int64      `json:"id"`
	Provider     string     `json:"provider"`
	Status       string     `json:"status"`
	LocationName string     `json:"location_name,omitempty"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewConnectionResponse maps a stored connection into its API shape.
func NewConnectionResponse(conn *storage.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:           conn.ID,
		Provider:     conn.Provider,
		Status:       string(conn.Status),
		LocationName: conn.LocationName,
		LastSyncAt:   conn.LastSyncAt,
		CreatedAt:    conn.CreatedAt,
	}
}

// ConnectionListResponse is returned when listing connections.
type ConnectionListResponse struct {
	Connections []ConnectionResponse `json:"connections"`
}

// RefreshResponse reports a token refresh outcome.
type RefreshResponse struct {
	Refreshed bool   `json:"refreshed"`
	Message   string `json:"message"`
}

// TestConnectionResponse reports a credential validation outcome.
type TestConnectionResponse struct {
	Success     bool   `json:"success"`
	DisplayName string `json:"display_name,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SyncResponse is returned by the sync endpoints.
type SyncResponse struct {
	Results []appsync.Result `json:"results"`
}

// WebhookAck acknowledges an inbound webhook.
type WebhookAck struct {
	Received bool   `json:"received"`
	Event    string `json:"event,omitempty"`
}
