// Package lightspeed implements a partial POS adapter for Lightspeed
// Retail/Restaurant. Lightspeed connections authenticate with a plain API
// key, so there is no refresh token and the adapter intentionally does not
// implement pos.TokenRefresher.
package lightspeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

const (
	retailBaseURL     = "https://api.lightspeedapp.com/API/V3"
	restaurantBaseURL = "https://api.lightspeedapp.com/R"
)

// Config selects which Lightspeed product line the merchant uses.
type Config struct {
	APIType string // "retail" or "restaurant"
}

// Provider is the Lightspeed adapter.
type Provider struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

var (
	_ pos.Provider         = (*Provider)(nil)
	_ pos.CredentialTester = (*Provider)(nil)
)

// New creates a Lightspeed provider. The base URL is fixed at construction
// from the API type.
func New(cfg Config, httpc *http.Client, logger *slog.Logger) (*Provider, error) {
	if httpc == nil {
		httpc = pos.NewHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := restaurantBaseURL
	if cfg.APIType == "retail" {
		baseURL = retailBaseURL
	}

	return &Provider{
		baseURL: baseURL,
		httpc:   httpc,
		logger:  logger.With(slog.String("provider", "lightspeed")),
	}, nil
}

func (p *Provider) Name() string        { return "lightspeed" }
func (p *Provider) DisplayName() string { return "Lightspeed" }

// AuthURL is empty: Lightspeed connections here use direct API key entry,
// not an OAuth redirect.
func (p *Provider) AuthURL(state string) string { return "" }

// ExchangeCode is not supported for API-key connections.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*pos.AuthTokens, error) {
	return nil, fmt.Errorf("lightspeed: %w: oauth exchange", pos.ErrNotSupported)
}

// Locations requires the per-connection account id, which manual entry
// stores in the connection config; location discovery is not part of this
// integration yet.
func (p *Provider) Locations(ctx context.Context, accessToken string) ([]pos.Location, error) {
	return nil, fmt.Errorf("lightspeed: %w: location discovery", pos.ErrNotSupported)
}

// Products is not wired yet.
func (p *Provider) Products(ctx context.Context, accessToken string) ([]pos.UnifiedProduct, error) {
	p.logger.Warn("catalog sync not implemented")
	return []pos.UnifiedProduct{}, nil
}

// Transactions is not wired yet.
func (p *Provider) Transactions(ctx context.Context, accessToken string, from time.Time, to *time.Time) ([]pos.UnifiedTransaction, error) {
	p.logger.Warn("transaction sync not implemented")
	return []pos.UnifiedTransaction{}, nil
}

// TestCredentials validates an account id + access token pair by reading the
// account profile.
func (p *Provider) TestCredentials(ctx context.Context, creds map[string]string) pos.TestResult {
	accountID := creds["account_id"]
	accessToken := creds["access_token"]
	if accountID == "" || accessToken == "" {
		return pos.TestResult{Success: false, Err: "account_id and access_token are required"}
	}

	url := fmt.Sprintf("%s/Account/%s.json", p.baseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpc.Do(req)
	if err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var data struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&data)
		if data.Message != "" {
			return pos.TestResult{Success: false, Err: data.Message}
		}
		return pos.TestResult{Success: false, Err: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))}
	}

	var data struct {
		Account struct {
			Name string `json:"name"`
		} `json:"Account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}

	name := data.Account.Name
	if name == "" {
		name = "Unknown Account"
	}
	return pos.TestResult{Success: true, DisplayName: name}
}
