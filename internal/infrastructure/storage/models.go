package storage

import "time"

// ConnectionStatus is the lifecycle state of a POS connection.
type ConnectionStatus string

const (
	StatusPending      ConnectionStatus = "pending"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// Connection is the persisted record of one user's authorization to one
// vendor's account. One row per (user, provider); reconnecting upserts.
type Connection struct {
	ID           int64  `json:"id"`
	UserID       string `json:"user_id"`
	Provider     string `json:"provider"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	// TokenExpiresAt is nil for vendors whose tokens never expire.
	TokenExpiresAt *time.Time       `json:"token_expires_at,omitempty"`
	Status         ConnectionStatus `json:"status"`
	LocationID     string           `json:"location_id,omitempty"`
	LocationName   string           `json:"location_name,omitempty"`
	MerchantID     string           `json:"merchant_id,omitempty"`
	// ConfigJSON holds vendor-specific settings (webhook URL, account id).
	ConfigJSON   string     `json:"-"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	LastTestedAt *time.Time `json:"last_tested_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SalesRollup is one per-day aggregated sales total.
type SalesRollup struct {
	UserID   string  `json:"user_id"`
	SaleDate string  `json:"sale_date"` // YYYY-MM-DD
	Total    float64 `json:"total_amount"`
}
