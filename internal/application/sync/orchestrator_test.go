package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/pos-sync-backend/internal/infrastructure/storage"
	"github.com/platewise/pos-sync-backend/internal/pos"
)

type sellingProvider struct {
	name         string
	transactions []pos.UnifiedTransaction
}

func (s *sellingProvider) Name() string                { return s.name }
func (s *sellingProvider) DisplayName() string         { return "Selling" }
func (s *sellingProvider) AuthURL(state string) string { return "" }

func (s *sellingProvider) ExchangeCode(ctx context.Context, code string) (*pos.AuthTokens, error) {
	return nil, nil
}

func (s *sellingProvider) Locations(ctx context.Context, accessToken string) ([]pos.Location, error) {
	return nil, nil
}

func (s *sellingProvider) Products(ctx context.Context, accessToken string) ([]pos.UnifiedProduct, error) {
	return nil, nil
}

func (s *sellingProvider) Transactions(ctx context.Context, accessToken string, from time.Time, to *time.Time) ([]pos.UnifiedTransaction, error) {
	return s.transactions, nil
}

func txn(id string, date time.Time, total float64) pos.UnifiedTransaction {
	return pos.UnifiedTransaction{ID: id, Date: date, TotalAmount: total, Currency: "USD"}
}

func seedConnected(t *testing.T, repo *storage.MockRepository, userID, provider string) *storage.Connection {
	t.Helper()

	conn := &storage.Connection{
		UserID:      userID,
		Provider:    provider,
		AccessToken: "at",
		Status:      storage.StatusConnected,
	}
	_, err := repo.UpsertConnection(context.Background(), conn)
	require.NoError(t, err)
	return conn
}

func TestSyncAggregatesByDay(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	provider := &sellingProvider{
		name: "stub",
		transactions: []pos.UnifiedTransaction{
			txn("t1", day.Add(9*time.Hour), 12.50),
			txn("t2", day.Add(17*time.Hour), 7.50),
			txn("t3", day.Add(26*time.Hour), 5.00), // next calendar day
		},
	}

	registry := pos.NewRegistry(nil)
	require.NoError(t, registry.Register(provider))
	repo := storage.NewMockRepository()
	seedConnected(t, repo, "user-1", "stub")

	orchestrator := NewOrchestrator(registry, repo, nil, nil)
	results := orchestrator.SyncAll(context.Background(), Options{LookbackDays: 1})

	require.Len(t, results, 1)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, 3, results[0].Count)
	assert.Equal(t, 2, results[0].AggregatedDays)

	total, ok, err := repo.GetDailySales(context.Background(), "user-1", "2026-08-30")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20.00, total)

	total, ok, err = repo.GetDailySales(context.Background(), "user-1", "2026-08-31")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.00, total)
}

func TestSyncIsIdempotent(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	provider := &sellingProvider{
		name: "stub",
		transactions: []pos.UnifiedTransaction{
			txn("t1", day.Add(9*time.Hour), 12.50),
			txn("t2", day.Add(17*time.Hour), 7.50),
		},
	}

	registry := pos.NewRegistry(nil)
	require.NoError(t, registry.Register(provider))
	repo := storage.NewMockRepository()
	seedConnected(t, repo, "user-1", "stub")

	orchestrator := NewOrchestrator(registry, repo, nil, nil)

	// Two passes over the same window must not double-count.
	orchestrator.SyncAll(context.Background(), Options{LookbackDays: 1})
	orchestrator.SyncAll(context.Background(), Options{LookbackDays: 1})

	assert.Equal(t, 1, repo.RollupCount())
	total, ok, err := repo.GetDailySales(context.Background(), "user-1", "2026-08-30")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20.00, total)
}

func TestSyncIsolatesConnectionFailures(t *testing.T) {
	day := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	provider := &sellingProvider{
		name:         "stub",
		transactions: []pos.UnifiedTransaction{txn("t1", day, 10.00)},
	}

	registry := pos.NewRegistry(nil)
	require.NoError(t, registry.Register(provider))
	repo := storage.NewMockRepository()

	seedConnected(t, repo, "user-1", "stub")
	// No adapter registered for this provider: its sync must fail alone.
	broken := &storage.Connection{
		UserID:      "user-2",
		Provider:    "gone",
		AccessToken: "at",
		Status:      storage.StatusConnected,
	}
	_, err := repo.UpsertConnection(context.Background(), broken)
	require.NoError(t, err)
	seedConnected(t, repo, "user-3", "stub")

	orchestrator := NewOrchestrator(registry, repo, nil, nil)
	results := orchestrator.SyncAll(context.Background(), Options{LookbackDays: 1})

	require.Len(t, results, 3)

	byUser := make(map[string]Result)
	for _, r := range results {
		byUser[r.UserID] = r
	}
	assert.Equal(t, StatusSuccess, byUser["user-1"].Status)
	assert.Equal(t, StatusError, byUser["user-2"].Status)
	assert.Contains(t, byUser["user-2"].Error, "gone")
	assert.Equal(t, StatusSuccess, byUser["user-3"].Status)
}

func TestSyncSkipsRecentlySynced(t *testing.T) {
	provider := &sellingProvider{name: "stub"}

	registry := pos.NewRegistry(nil)
	require.NoError(t, registry.Register(provider))
	repo := storage.NewMockRepository()

	conn := seedConnected(t, repo, "user-1", "stub")
	recent := time.Now().Add(-1 * time.Hour)
	require.NoError(t, repo.TouchLastSync(context.Background(), conn.ID, recent))

	orchestrator := NewOrchestrator(registry, repo, nil, nil)

	results := orchestrator.SyncAll(context.Background(), Options{LookbackDays: 1, MinInterval: 6 * time.Hour})
	require.Len(t, results, 1)
	assert.Equal(t, StatusSkipped, results[0].Status)

	// Manual sync disables the gate.
	results = orchestrator.SyncAll(context.Background(), Options{LookbackDays: 1})
	require.Len(t, results, 1)
	assert.Equal(t, StatusSuccess, results[0].Status)
}

func TestSyncUserFiltersOtherStatuses(t *testing.T) {
	provider := &sellingProvider{name: "stub"}

	registry := pos.NewRegistry(nil)
	require.NoError(t, registry.Register(provider))
	repo := storage.NewMockRepository()

	seedConnected(t, repo, "user-1", "stub")
	errored := &storage.Connection{
		UserID:   "user-1",
		Provider: "gone",
		Status:   storage.StatusError,
	}
	_, err := repo.UpsertConnection(context.Background(), errored)
	require.NoError(t, err)

	orchestrator := NewOrchestrator(registry, repo, nil, nil)
	results := orchestrator.SyncUser(context.Background(), "user-1", Options{LookbackDays: 1})

	require.Len(t, results, 1)
	assert.Equal(t, "stub", results[0].Provider)
}

func TestSyncRecordsLastSyncTime(t *testing.T) {
	day := time.Now().UTC()
	provider := &sellingProvider{
		name:         "stub",
		transactions: []pos.UnifiedTransaction{txn("t1", day, 4.25)},
	}

	registry := pos.NewRegistry(nil)
	require.NoError(t, registry.Register(provider))
	repo := storage.NewMockRepository()
	seedConnected(t, repo, "user-1", "stub")

	orchestrator := NewOrchestrator(registry, repo, nil, nil)
	orchestrator.SyncAll(context.Background(), Options{LookbackDays: 1})

	conn, err := repo.GetConnection(context.Background(), "user-1", "stub")
	require.NoError(t, err)
	require.NotNil(t, conn.LastSyncAt)
	assert.WithinDuration(t, time.Now(), *conn.LastSyncAt, 5*time.Second)
}

func TestAggregateByDayUsesUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	// 23:00 EST on the 29th is 04:00 UTC on the 30th.
	late := time.Date(2026, 8, 29, 23, 0, 0, 0, est)

	totals := aggregateByDay([]pos.UnifiedTransaction{txn("t1", late, 9.99)})

	require.Len(t, totals, 1)
	assert.Equal(t, 9.99, totals["2026-08-30"])
}
