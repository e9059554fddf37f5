// Package connect orchestrates the OAuth completion flow: authorization
// code in, persisted connection plus imported catalog out.
package connect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platewise/pos-sync-backend/internal/infrastructure/storage"
	"github.com/platewise/pos-sync-backend/internal/pos"
)

// stateTTL bounds how long an issued OAuth state token stays valid.
const stateTTL = 10 * time.Minute

// Result is the outcome of a completed connect flow.
type Result struct {
	ConnectionID     int64  `json:"connection_id"`
	LocationName     string `json:"location_name"`
	ProductsImported int    `json:"products_imported"`
}

type stateEntry struct {
	userID   string
	provider string
	issuedAt time.Time
}

// Connector drives the connect flow for every provider.
type Connector struct {
	registry *pos.Registry
	repo     storage.Repository
	logger   *slog.Logger

	statesMu sync.Mutex
	states   map[string]stateEntry
}

// NewConnector creates a connector.
func NewConnector(registry *pos.Registry, repo storage.Repository, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{
		registry: registry,
		repo:     repo,
		logger:   logger.With(slog.String("system", "connect")),
		states:   make(map[string]stateEntry),
	}
}

// NewState issues an opaque state token bound to (user, provider) for CSRF
// protection on the OAuth redirect.
func (c *Connector) NewState(userID, provider string) string {
	state := uuid.NewString()

	c.statesMu.Lock()
	defer c.statesMu.Unlock()

	// Drop expired entries while we hold the lock.
	now := time.Now()
	for token, entry := range c.states {
		if now.Sub(entry.issuedAt) > stateTTL {
			delete(c.states, token)
		}
	}
	c.states[state] = stateEntry{userID: userID, provider: provider, issuedAt: now}
	return state
}

// consumeState validates and invalidates a state token.
func (c *Connector) consumeState(state, userID, provider string) error {
	c.statesMu.Lock()
	defer c.statesMu.Unlock()

	entry, ok := c.states[state]
	if !ok {
		return fmt.Errorf("unknown or expired oauth state")
	}
	delete(c.states, state)

	if time.Since(entry.issuedAt) > stateTTL {
		return fmt.Errorf("unknown or expired oauth state")
	}
	if entry.userID != userID || entry.provider != provider {
		return fmt.Errorf("oauth state does not match caller")
	}
	return nil
}

// Complete runs the connect flow in a single pass, no retries:
// exchange the code, discover locations, persist the connection, then
// import the catalog. A catalog failure does not roll back the connection —
// zero imported products is a valid outcome.
func (c *Connector) Complete(ctx context.Context, userID, providerName, code, state string) (*Result, error) {
	provider, err := c.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	if err := c.consumeState(state, userID, providerName); err != nil {
		return nil, err
	}

	c.logger.Info("starting token exchange",
		slog.String("user_id", userID),
		slog.String("provider", providerName),
	)

	tokens, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	locations, err := provider.Locations(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("%s: %w", providerName, pos.ErrNoLocations)
	}

	// Always the first location; no disambiguation UI exists.
	primary := locations[0]
	c.logger.Info("selected primary location",
		slog.String("location_id", primary.ID),
		slog.String("location_name", primary.Name),
	)

	now := time.Now()
	conn := &storage.Connection{
		UserID:       userID,
		Provider:     providerName,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Status:       storage.StatusConnected,
		LocationID:   primary.ID,
		LocationName: primary.Name,
		MerchantID:   tokens.MerchantID,
		LastTestedAt: &now,
	}
	if !tokens.ExpiresAt.IsZero() {
		expiresAt := tokens.ExpiresAt
		conn.TokenExpiresAt = &expiresAt
	}

	connectionID, err := c.repo.UpsertConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("saving connection: %w", err)
	}

	// One-shot catalog import. Non-fatal by contract: Products returns an
	// empty list on vendor errors, and a storage failure only logs.
	imported := 0
	products, err := provider.Products(ctx, tokens.AccessToken)
	if err != nil {
		c.logger.Warn("catalog fetch errored", slog.String("error", err.Error()))
	} else if len(products) > 0 {
		imported, err = c.repo.InsertProducts(ctx, userID, providerName, products)
		if err != nil {
			c.logger.Warn("catalog import failed", slog.String("error", err.Error()))
			imported = 0
		}
	}

	c.logger.Info("connection established",
		slog.Int64("connection_id", connectionID),
		slog.Int("products_imported", imported),
	)

	return &Result{
		ConnectionID:     connectionID,
		LocationName:     primary.Name,
		ProductsImported: imported,
	}, nil
}

// Disconnect removes a user's connection to a vendor.
func (c *Connector) Disconnect(ctx context.Context, userID, providerName string) error {
	if _, err := c.registry.Get(providerName); err != nil {
		return err
	}
	return c.repo.DeleteConnection(ctx, userID, providerName)
}

// TestCredentials validates manually entered credentials against a vendor.
func (c *Connector) TestCredentials(ctx context.Context, providerName string, creds map[string]string) (pos.TestResult, error) {
	provider, err := c.registry.Get(providerName)
	if err != nil {
		return pos.TestResult{}, err
	}

	tester, ok := provider.(pos.CredentialTester)
	if !ok {
		return pos.TestResult{}, fmt.Errorf("%s: %w: credential test", providerName, pos.ErrNotSupported)
	}
	return tester.TestCredentials(ctx, creds), nil
}
