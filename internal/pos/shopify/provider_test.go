package shopify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

func TestNewRequiresShopDomain(t *testing.T) {
	_, err := New(Config{}, nil, nil)
	assert.ErrorIs(t, err, pos.ErrNotConfigured)
}

func TestAuthURLShape(t *testing.T) {
	provider, err := New(Config{ShopDomain: "demo.myshopify.com", APIKey: "key-1"}, nil, nil)
	require.NoError(t, err)

	url := provider.AuthURL("state-1")
	assert.Contains(t, url, "https://demo.myshopify.com/admin/oauth/authorize")
	assert.Contains(t, url, "client_id=key-1")
	assert.Contains(t, url, "state=state-1")
	assert.Contains(t, url, "scope=read_products,read_orders")
}

func TestExchangeCodeUnsupported(t *testing.T) {
	provider, err := New(Config{ShopDomain: "demo.myshopify.com"}, nil, nil)
	require.NoError(t, err)

	_, err = provider.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, pos.ErrNotSupported)
}

func TestTransactionsReturnsEmptyNotNil(t *testing.T) {
	provider, err := New(Config{ShopDomain: "demo.myshopify.com"}, nil, nil)
	require.NoError(t, err)

	transactions, err := provider.Transactions(context.Background(), "at", time.Now().Add(-24*time.Hour), nil)
	require.NoError(t, err)
	assert.NotNil(t, transactions)
	assert.Empty(t, transactions)
}

func TestTestCredentialsRequiresFields(t *testing.T) {
	provider, err := New(Config{ShopDomain: "demo.myshopify.com"}, nil, nil)
	require.NoError(t, err)

	result := provider.TestCredentials(context.Background(), map[string]string{"shop_domain": "demo.myshopify.com"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Err, "required")
}
