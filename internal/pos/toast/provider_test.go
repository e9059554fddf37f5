package toast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

func TestNoOAuthSurface(t *testing.T) {
	provider, err := New(nil, nil)
	require.NoError(t, err)

	assert.Empty(t, provider.AuthURL("state-1"))

	_, err = provider.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, pos.ErrNotSupported)
}

func TestStubbedFetchesAreEmptyNotNil(t *testing.T) {
	provider, err := New(nil, nil)
	require.NoError(t, err)

	products, err := provider.Products(context.Background(), "at")
	require.NoError(t, err)
	assert.Empty(t, products)

	transactions, err := provider.Transactions(context.Background(), "at", time.Now().Add(-24*time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestTestCredentialsRequiresFields(t *testing.T) {
	provider, err := New(nil, nil)
	require.NoError(t, err)

	result := provider.TestCredentials(context.Background(), map[string]string{"access_token": "at"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Err, "required")
}
