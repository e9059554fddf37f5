// Package token manages the access-token refresh lifecycle for POS
// connections.
package token

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/platewise/pos-sync-backend/internal/infrastructure/storage"
	"github.com/platewise/pos-sync-backend/internal/pos"
)

// RefreshSafetyMargin is how close to expiry a token may get before it is
// refreshed proactively.
const RefreshSafetyMargin = 24 * time.Hour

// Result reports whether a refresh happened.
type Result struct {
	Refreshed bool   `json:"refreshed"`
	Message   string `json:"message"`
}

// Refresher refreshes connection tokens. Refreshes are serialized per
// (user, provider): a second concurrent refresh against the same connection
// would invalidate the first at the vendor.
type Refresher struct {
	registry *pos.Registry
	repo     storage.Repository
	logger   *slog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewRefresher creates a refresher.
func NewRefresher(registry *pos.Registry, repo storage.Repository, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		registry: registry,
		repo:     repo,
		logger:   logger.With(slog.String("system", "token")),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (r *Refresher) connectionLock(userID, provider string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()

	key := userID + "/" + provider
	if _, ok := r.locks[key]; !ok {
		r.locks[key] = &sync.Mutex{}
	}
	return r.locks[key]
}

// NeedsRefresh reports whether a connection's token is due: no recorded
// expiry, or expiry within the safety margin.
func NeedsRefresh(conn *storage.Connection, now time.Time) bool {
	if conn.TokenExpiresAt == nil {
		return true
	}
	return conn.TokenExpiresAt.Sub(now) < RefreshSafetyMargin
}

// RefreshIfNeeded refreshes the connection's tokens when they are due.
// On vendor failure the connection status flips to error and the failure
// propagates; the connection is never deleted here.
func (r *Refresher) RefreshIfNeeded(ctx context.Context, conn *storage.Connection) (*Result, error) {
	lock := r.connectionLock(conn.UserID, conn.Provider)
	lock.Lock()
	defer lock.Unlock()

	if !NeedsRefresh(conn, time.Now()) {
		return &Result{Refreshed: false, Message: "token is still valid"}, nil
	}

	provider, err := r.registry.Get(conn.Provider)
	if err != nil {
		return nil, err
	}

	refresher, ok := provider.(pos.TokenRefresher)
	if !ok {
		// This vendor's tokens don't expire; nothing to do.
		return &Result{Refreshed: false, Message: "provider tokens do not expire"}, nil
	}

	if conn.RefreshToken == "" {
		return nil, fmt.Errorf("%s: %w", conn.Provider, pos.ErrNoRefreshToken)
	}

	r.logger.Info("refreshing access token",
		slog.String("user_id", conn.UserID),
		slog.String("provider", conn.Provider),
	)

	tokens, err := refresher.RefreshToken(ctx, conn.RefreshToken)
	if err != nil {
		if statusErr := r.repo.UpdateConnectionStatus(ctx, conn.ID, storage.StatusError); statusErr != nil {
			r.logger.Error("failed to flag connection after refresh failure",
				slog.String("error", statusErr.Error()))
		}
		return nil, err
	}

	// Overwrite the refresh token only when the vendor rotated it; an
	// omitted refresh token in the response must not clear the stored one.
	var expiresAt *time.Time
	if !tokens.ExpiresAt.IsZero() {
		t := tokens.ExpiresAt
		expiresAt = &t
	}
	if err := r.repo.UpdateConnectionTokens(ctx, conn.ID, tokens.AccessToken, tokens.RefreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("saving refreshed tokens: %w", err)
	}

	conn.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		conn.RefreshToken = tokens.RefreshToken
	}
	conn.TokenExpiresAt = expiresAt

	return &Result{Refreshed: true, Message: "token refreshed"}, nil
}
