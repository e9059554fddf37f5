// Package pos defines the unified data model and provider contract shared by
// every point-of-sale integration.
//
// Each vendor adapter lives in its own subpackage (square, shopify,
// lightspeed, toast, generic) and normalizes that vendor's wire format into
// the types below. Monetary amounts are always expressed in major currency
// units: adapters that receive minor units (cents) divide by 100 at the
// boundary, and nothing upstream or downstream converts again.
package pos

import (
	"context"
	"time"
)

// UnifiedProduct is a vendor-agnostic catalog entry.
type UnifiedProduct struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku,omitempty"`
	Price      float64 `json:"price"`
	StockLevel int     `json:"stock_level,omitempty"`
	Category   string  `json:"category,omitempty"`
}

// UnifiedTransaction is a single completed sale. It is produced transiently
// during a sync pass; only the date-aggregated total is persisted.
type UnifiedTransaction struct {
	ID          string                   `json:"id"`
	Date        time.Time                `json:"date"`
	TotalAmount float64                  `json:"total_amount"`
	Currency    string                   `json:"currency"`
	Items       []UnifiedTransactionItem `json:"items"`
}

// UnifiedTransactionItem is one line item within a transaction.
type UnifiedTransactionItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// AuthTokens holds the credentials returned by a vendor token endpoint.
// RefreshToken and ExpiresAt are zero for vendors that issue non-expiring
// API keys.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	MerchantID   string
}

// Location is a merchant-selectable sub-location. The connect flow always
// picks the first location a vendor returns as primary.
type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// NotificationEvent is a normalized inbound webhook event.
type NotificationEvent struct {
	Type    EventType      `json:"type"`
	Payload map[string]any `json:"payload"`
}

// EventType identifies the kind of webhook notification.
type EventType string

const (
	EventInventoryUpdate    EventType = "inventory_update"
	EventTransactionCreated EventType = "transaction_created"
)

// TestResult is the outcome of a lightweight credential validation call.
type TestResult struct {
	Success     bool   `json:"success"`
	DisplayName string `json:"display_name,omitempty"`
	Err         string `json:"error,omitempty"`
}

// Provider is the capability set every POS adapter must implement.
//
// Catalog and transaction fetches follow a non-fatal error policy: a vendor
// responding with a non-success HTTP status yields an empty slice and a nil
// error, because a failed fetch must not take down the connection flow or a
// sync batch. Token operations, in contrast, fail loudly with the vendor's
// raw error text attached.
type Provider interface {
	// Name returns the provider discriminator ("square", "shopify", ...).
	Name() string

	// DisplayName returns the human-readable vendor name.
	DisplayName() string

	// AuthURL builds the vendor's OAuth authorization URL, embedding the
	// caller-supplied opaque state token. No side effects.
	AuthURL(state string) string

	// ExchangeCode exchanges an authorization code for tokens.
	ExchangeCode(ctx context.Context, code string) (*AuthTokens, error)

	// Locations enumerates the merchant's locations.
	Locations(ctx context.Context, accessToken string) ([]Location, error)

	// Products fetches and normalizes the vendor catalog.
	Products(ctx context.Context, accessToken string) ([]UnifiedProduct, error)

	// Transactions fetches completed transactions in the half-open window
	// [from, to). A nil to means "through now".
	Transactions(ctx context.Context, accessToken string, from time.Time, to *time.Time) ([]UnifiedTransaction, error)
}

// TokenRefresher is implemented by adapters whose vendor rotates access
// tokens. Absence means the vendor's tokens do not expire.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error)
}

// WebhookNormalizer is implemented by adapters that accept push
// notifications. NormalizeWebhook returns nil for payloads that do not match
// a known event shape; it never fails on unrecognized input.
type WebhookNormalizer interface {
	NormalizeWebhook(payload []byte, signature string) *NotificationEvent
}

// CredentialTester is implemented by adapters that support direct key/secret
// entry instead of (or in addition to) an OAuth redirect.
type CredentialTester interface {
	TestCredentials(ctx context.Context, creds map[string]string) TestResult
}
