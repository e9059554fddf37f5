// Package generic is a reference template for new POS adapters. Every
// operation returns fixed data, which also makes it useful as a stand-in
// provider in orchestration tests. It is not a production vendor.
package generic

import (
	"context"
	"log/slog"
	"time"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

// Provider is the template adapter.
type Provider struct {
	logger *slog.Logger
}

var _ pos.Provider = (*Provider)(nil)

// New creates a generic provider.
func New(logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{logger: logger.With(slog.String("provider", "generic"))}
}

func (p *Provider) Name() string        { return "generic" }
func (p *Provider) DisplayName() string { return "Generic POS" }

func (p *Provider) AuthURL(state string) string {
	return "https://pos.example.com/oauth/authorize?state=" + state
}

func (p *Provider) ExchangeCode(ctx context.Context, code string) (*pos.AuthTokens, error) {
	p.logger.Info("mocking token exchange")
	return &pos.AuthTokens{
		AccessToken: "mock_access_token",
		MerchantID:  "mock_merchant_id",
	}, nil
}

func (p *Provider) Locations(ctx context.Context, accessToken string) ([]pos.Location, error) {
	return []pos.Location{
		{ID: "loc_1", Name: "Main Store", Currency: "USD"},
	}, nil
}

func (p *Provider) Products(ctx context.Context, accessToken string) ([]pos.UnifiedProduct, error) {
	return []pos.UnifiedProduct{
		{ID: "prod_1", Name: "Generic Coffee", Price: 3.50, Category: "Beverages"},
	}, nil
}

func (p *Provider) Transactions(ctx context.Context, accessToken string, from time.Time, to *time.Time) ([]pos.UnifiedTransaction, error) {
	return []pos.UnifiedTransaction{}, nil
}
