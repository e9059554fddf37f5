package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/pos-sync-backend/internal/infrastructure/storage"
	"github.com/platewise/pos-sync-backend/internal/pos"
)

type staticProvider struct {
	name string
}

func (s *staticProvider) Name() string                { return s.name }
func (s *staticProvider) DisplayName() string         { return "Static" }
func (s *staticProvider) AuthURL(state string) string { return "" }

func (s *staticProvider) ExchangeCode(ctx context.Context, code string) (*pos.AuthTokens, error) {
	return nil, nil
}

func (s *staticProvider) Locations(ctx context.Context, accessToken string) ([]pos.Location, error) {
	return nil, nil
}

func (s *staticProvider) Products(ctx context.Context, accessToken string) ([]pos.UnifiedProduct, error) {
	return nil, nil
}

func (s *staticProvider) Transactions(ctx context.Context, accessToken string, from time.Time, to *time.Time) ([]pos.UnifiedTransaction, error) {
	return nil, nil
}

// refreshingProvider additionally rotates tokens.
type refreshingProvider struct {
	staticProvider
	tokens     *pos.AuthTokens
	refreshErr error
	calls      int
}

func (r *refreshingProvider) RefreshToken(ctx context.Context, refreshToken string) (*pos.AuthTokens, error) {
	r.calls++
	if r.refreshErr != nil {
		return nil, r.refreshErr
	}
	return r.tokens, nil
}

func newTestRefresher(t *testing.T, provider pos.Provider) (*Refresher, *storage.MockRepository) {
	t.Helper()

	registry := pos.NewRegistry(nil)
	require.NoError(t, registry.Register(provider))
	repo := storage.NewMockRepository()
	return NewRefresher(registry, repo, nil), repo
}

func seedConnection(t *testing.T, repo *storage.MockRepository, provider string, expiresAt *time.Time) *storage.Connection {
	t.Helper()

	conn := &storage.Connection{
		UserID:         "user-1",
		Provider:       provider,
		AccessToken:    "at-old",
		RefreshToken:   "rt-old",
		TokenExpiresAt: expiresAt,
		Status:         storage.StatusConnected,
	}
	_, err := repo.UpsertConnection(context.Background(), conn)
	require.NoError(t, err)
	return conn
}

func TestNeedsRefresh(t *testing.T) {
	now := time.Now()
	farOut := now.Add(10 * 24 * time.Hour)
	soon := now.Add(1 * time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"no recorded expiry", nil, true},
		{"expires well out", &farOut, false},
		{"expires within margin", &soon, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &storage.Connection{TokenExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, NeedsRefresh(conn, now))
		})
	}
}

func TestRefreshIfNeededSkipsValidToken(t *testing.T) {
	provider := &refreshingProvider{staticProvider: staticProvider{name: "stub"}}
	refresher, repo := newTestRefresher(t, provider)

	farOut := time.Now().Add(10 * 24 * time.Hour)
	conn := seedConnection(t, repo, "stub", &farOut)

	result, err := refresher.RefreshIfNeeded(context.Background(), conn)
	require.NoError(t, err)
	assert.False(t, result.Refreshed)
	assert.Equal(t, 0, provider.calls)
}

func TestRefreshIfNeededNonExpiringProvider(t *testing.T) {
	refresher, repo := newTestRefresher(t, &staticProvider{name: "stub"})
	conn := seedConnection(t, repo, "stub", nil)

	result, err := refresher.RefreshIfNeeded(context.Background(), conn)
	require.NoError(t, err)
	assert.False(t, result.Refreshed)
	assert.Equal(t, "provider tokens do not expire", result.Message)
}

func TestRefreshIfNeededWithoutRefreshToken(t *testing.T) {
	provider := &refreshingProvider{staticProvider: staticProvider{name: "stub"}}
	refresher, repo := newTestRefresher(t, provider)

	conn := seedConnection(t, repo, "stub", nil)
	conn.RefreshToken = ""

	_, err := refresher.RefreshIfNeeded(context.Background(), conn)
	assert.ErrorIs(t, err, pos.ErrNoRefreshToken)
}

func TestRefreshIfNeededRotatesTokens(t *testing.T) {
	newExpiry := time.Now().Add(30 * 24 * time.Hour)
	provider := &refreshingProvider{
		staticProvider: staticProvider{name: "stub"},
		tokens: &pos.AuthTokens{
			AccessToken:  "at-new",
			RefreshToken: "rt-new",
			ExpiresAt:    newExpiry,
		},
	}
	refresher, repo := newTestRefresher(t, provider)
	conn := seedConnection(t, repo, "stub", nil)

	result, err := refresher.RefreshIfNeeded(context.Background(), conn)
	require.NoError(t, err)
	assert.True(t, result.Refreshed)
	assert.Equal(t, 1, provider.calls)

	// The in-memory connection is usable immediately after.
	assert.Equal(t, "at-new", conn.AccessToken)
	assert.Equal(t, "rt-new", conn.RefreshToken)

	assert.True(t, repo.UpdateTokensCalled)
	assert.Equal(t, "at-new", repo.LastTokenUpdate.AccessToken)
}

func TestRefreshIfNeededPreservesOmittedRefreshToken(t *testing.T) {
	provider := &refreshingProvider{
		staticProvider: staticProvider{name: "stub"},
		tokens:         &pos.AuthTokens{AccessToken: "at-new"},
	}
	refresher, repo := newTestRefresher(t, provider)
	conn := seedConnection(t, repo, "stub", nil)

	_, err := refresher.RefreshIfNeeded(context.Background(), conn)
	require.NoError(t, err)

	// The vendor omitted the refresh token; the stored one must survive.
	assert.Equal(t, "rt-old", conn.RefreshToken)

	stored, err := repo.GetConnection(context.Background(), "user-1", "stub")
	require.NoError(t, err)
	assert.Equal(t, "rt-old", stored.RefreshToken)
}

func TestRefreshIfNeededFlagsFailureWithoutDeleting(t *testing.T) {
	provider := &refreshingProvider{
		staticProvider: staticProvider{name: "stub"},
		refreshErr:     errors.New("square: refresh failed: invalid_grant"),
	}
	refresher, repo := newTestRefresher(t, provider)
	conn := seedConnection(t, repo, "stub", nil)

	_, err := refresher.RefreshIfNeeded(context.Background(), conn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")

	// Flagged, never deleted: the user reconnects from the same row.
	stored, storErr := repo.GetConnection(context.Background(), "user-1", "stub")
	require.NoError(t, storErr)
	require.NotNil(t, stored)
	assert.Equal(t, storage.StatusError, repo.StatusUpdates[conn.ID])
}
