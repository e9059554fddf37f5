package pos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name string
}

func (f *fakeProvider) Name() string                { return f.name }
func (f *fakeProvider) DisplayName() string         { return "Fake " + f.name }
func (f *fakeProvider) AuthURL(state string) string { return "" }

func (f *fakeProvider) ExchangeCode(ctx context.Context, code string) (*AuthTokens, error) {
	return &AuthTokens{AccessToken: "at"}, nil
}

func (f *fakeProvider) Locations(ctx context.Context, accessToken string) ([]Location, error) {
	return nil, nil
}

func (f *fakeProvider) Products(ctx context.Context, accessToken string) ([]UnifiedProduct, error) {
	return nil, nil
}

func (f *fakeProvider) Transactions(ctx context.Context, accessToken string, from time.Time, to *time.Time) ([]UnifiedTransaction, error) {
	return nil, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry(nil)

	require.NoError(t, registry.Register(&fakeProvider{name: "alpha"}))

	provider, err := registry.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", provider.Name())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry(nil)

	require.NoError(t, registry.Register(&fakeProvider{name: "alpha"}))
	assert.Error(t, registry.Register(&fakeProvider{name: "alpha"}))
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := NewRegistry(nil)

	_, err := registry.Get("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry(nil)

	require.NoError(t, registry.Register(&fakeProvider{name: "zulu"}))
	require.NoError(t, registry.Register(&fakeProvider{name: "alpha"}))
	require.NoError(t, registry.Register(&fakeProvider{name: "mike"}))

	assert.Equal(t, []string{"alpha", "mike", "zulu"}, registry.Names())
	assert.Len(t, registry.All(), 3)
}
