package lightspeed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

func TestBaseURLByAPIType(t *testing.T) {
	retail, err := New(Config{APIType: "retail"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, retailBaseURL, retail.baseURL)

	restaurant, err := New(Config{APIType: "restaurant"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, restaurantBaseURL, restaurant.baseURL)

	// Unset defaults to restaurant.
	fallback, err := New(Config{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, restaurantBaseURL, fallback.baseURL)
}

func TestNoTokenRefresh(t *testing.T) {
	provider, err := New(Config{}, nil, nil)
	require.NoError(t, err)

	// API-key auth: the adapter must not advertise refresh support.
	var asProvider pos.Provider = provider
	_, ok := asProvider.(pos.TokenRefresher)
	assert.False(t, ok)
}

func TestOAuthUnsupported(t *testing.T) {
	provider, err := New(Config{}, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, provider.AuthURL("state"))

	_, err = provider.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, pos.ErrNotSupported)
}

func TestTestCredentialsRequiresFields(t *testing.T) {
	provider, err := New(Config{}, nil, nil)
	require.NoError(t, err)

	result := provider.TestCredentials(context.Background(), map[string]string{"api_key": "key"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Err, "required")
}
