package storage

import (
	"context"
	"time"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

// Repository defines the complete storage interface. The orchestration
// layers (connect, refresh, sync) depend only on this, so tests run against
// the in-memory mock and the SQLite implementation stays swappable.
type Repository interface {
	ConnectionRepository
	ProductRepository
	SalesRepository
	Close() error
}

// ConnectionRepository handles per-user, per-vendor connection records.
type ConnectionRepository interface {
	// UpsertConnection inserts or replaces the connection keyed by
	// (user, provider) and returns its id.
	UpsertConnection(ctx context.Context, conn *Connection) (int64, error)

	// GetConnection retrieves one user's connection to one vendor.
	// Returns nil, nil when no connection exists.
	GetConnection(ctx context.Context, userID, provider string) (*Connection, error)

	// ListConnections returns all of a user's connections.
	ListConnections(ctx context.Context, userID string) ([]*Connection, error)

	// ListActiveConnections returns every connection with status connected,
	// across all users.
	ListActiveConnections(ctx context.Context) ([]*Connection, error)

	// UpdateConnectionStatus sets the status enum for a connection.
	UpdateConnectionStatus(ctx context.Context, id int64, status ConnectionStatus) error

	// UpdateConnectionTokens overwrites the stored tokens after a refresh.
	// An empty refreshToken leaves the existing one untouched: some vendors
	// rotate refresh tokens, some omit them from the response.
	UpdateConnectionTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt *time.Time) error

	// TouchLastSync records the time a sync pass completed for a connection.
	TouchLastSync(ctx context.Context, id int64, at time.Time) error

	// DeleteConnection removes a connection on explicit disconnect.
	DeleteConnection(ctx context.Context, userID, provider string) error
}

// ProductRepository handles the imported catalog.
type ProductRepository interface {
	// InsertProducts inserts catalog entries tagged with the owning user and
	// a source marker identifying the vendor. The vendor-native id is kept
	// as an external reference.
	InsertProducts(ctx context.Context, userID, source string, products []pos.UnifiedProduct) (int, error)

	// CountProducts returns how many products a user has from a source.
	CountProducts(ctx context.Context, userID, source string) (int, error)
}

// SalesRepository handles daily sales rollups.
type SalesRepository interface {
	// UpsertDailySales writes one rollup row keyed by (user, date). The
	// conflict target is exactly that pair, so re-running a window
	// overwrites rather than double-counts.
	UpsertDailySales(ctx context.Context, userID string, date string, total float64) error

	// GetDailySales returns the rollup total for (user, date), or 0 with
	// ok=false when none exists.
	GetDailySales(ctx context.Context, userID string, date string) (float64, bool, error)
}
