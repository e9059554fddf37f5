// Package sync pulls recent transactions per connection and aggregates them
// into daily sales rollups.
package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/platewise/pos-sync-backend/internal/application/token"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/storage"
	"github.com/platewise/pos-sync-backend/internal/pos"
)

// Options tunes a sync run.
type Options struct {
	// LookbackDays is the transaction window size, ending now.
	LookbackDays int
	// MinInterval throttles automatic runs per connection. Zero disables
	// the gate (manual sync).
	MinInterval time.Duration
}

// Orchestrator runs sync passes over connections. Each connection is
// processed independently: one failure becomes a result entry and the batch
// moves on.
type Orchestrator struct {
	registry  *pos.Registry
	repo      storage.Repository
	refresher *token.Refresher
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(registry *pos.Registry, repo storage.Repository, refresher *token.Refresher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registry:  registry,
		repo:      repo,
		refresher: refresher,
		logger:    logger.With(slog.String("system", "sync")),
	}
}

// SyncAll processes every connection with status connected and returns one
// result per connection. It never aborts early for a single connection's
// failure.
func (o *Orchestrator) SyncAll(ctx context.Context, opts Options) []Result {
	connections, err := o.repo.ListActiveConnections(ctx)
	if err != nil {
		o.logger.Error("listing active connections failed", slog.String("error", err.Error()))
		return []Result{}
	}
	return o.syncConnections(ctx, connections, opts)
}

// SyncUser processes one user's connected accounts.
func (o *Orchestrator) SyncUser(ctx context.Context, userID string, opts Options) []Result {
	all, err := o.repo.ListConnections(ctx, userID)
	if err != nil {
		o.logger.Error("listing connections failed", slog.String("error", err.Error()))
		return []Result{}
	}

	connections := make([]*storage.Connection, 0, len(all))
	for _, conn := range all {
		if conn.Status == storage.StatusConnected {
			connections = append(connections, conn)
		}
	}
	return o.syncConnections(ctx, connections, opts)
}

func (o *Orchestrator) syncConnections(ctx context.Context, connections []*storage.Connection, opts Options) []Result {
	results := make([]Result, 0, len(connections))
	for _, conn := range connections {
		results = append(results, o.syncConnection(ctx, conn, opts))
	}
	return results
}

// syncConnection runs a single connection's sync pass. All failures are
// converted into the returned result, never propagated.
func (o *Orchestrator) syncConnection(ctx context.Context, conn *storage.Connection, opts Options) Result {
	result := Result{
		AccountID: conn.ID,
		UserID:    conn.UserID,
		Provider:  conn.Provider,
	}

	// Rate-limit protection only; correctness does not depend on this.
	if opts.MinInterval > 0 && conn.LastSyncAt != nil && time.Since(*conn.LastSyncAt) < opts.MinInterval {
		result.Status = StatusSkipped
		return result
	}

	o.logger.Info("syncing connection",
		slog.Int64("connection_id", conn.ID),
		slog.String("provider", conn.Provider),
	)

	provider, err := o.registry.Get(conn.Provider)
	if err != nil {
		result.Status = StatusError
		result.Error = err.Error()
		return result
	}

	// Refresh inline, before the fetch, so two concurrent refreshes can't
	// race against the same connection. Connections without a refresh token
	// (manual key entry) sync with the stored token as-is.
	if o.refresher != nil && conn.RefreshToken != "" {
		if _, err := o.refresher.RefreshIfNeeded(ctx, conn); err != nil {
			result.Status = StatusError
			result.Error = err.Error()
			return result
		}
	}

	lookbackDays := opts.LookbackDays
	if lookbackDays <= 0 {
		lookbackDays = 1
	}
	to := time.Now()
	from := to.AddDate(0, 0, -lookbackDays)

	transactions, err := provider.Transactions(ctx, conn.AccessToken, from, &to)
	if err != nil {
		result.Status = StatusError
		result.Error = err.Error()
		return result
	}

	result.Count = len(transactions)

	if len(transactions) > 0 {
		totals := aggregateByDay(transactions)
		for date, total := range totals {
			if err := o.repo.UpsertDailySales(ctx, conn.UserID, date, total); err != nil {
				result.Status = StatusError
				result.Error = err.Error()
				return result
			}
		}
		result.AggregatedDays = len(totals)
	}

	if err := o.repo.TouchLastSync(ctx, conn.ID, time.Now()); err != nil {
		o.logger.Warn("recording last sync time failed", slog.String("error", err.Error()))
	}

	result.Status = StatusSuccess
	return result
}

// aggregateByDay groups transactions by UTC calendar date and sums their
// totals.
func aggregateByDay(transactions []pos.UnifiedTransaction) map[string]float64 {
	totals := make(map[string]float64)
	for _, txn := range transactions {
		date := txn.Date.UTC().Format("2006-01-02")
		totals[date] += txn.TotalAmount
	}
	return totals
}
