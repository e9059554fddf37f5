// Package toast implements a partial POS adapter for Toast restaurant POS.
// Only credential validation is wired; catalog and transaction sync follow
// once the menus integration lands.
package toast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

const baseURL = "https://ws-api.toasttab.com"

// Provider is the Toast adapter.
type Provider struct {
	httpc  *http.Client
	logger *slog.Logger
}

var (
	_ pos.Provider         = (*Provider)(nil)
	_ pos.CredentialTester = (*Provider)(nil)
)

// New creates a Toast provider.
func New(httpc *http.Client, logger *slog.Logger) (*Provider, error) {
	if httpc == nil {
		httpc = pos.NewHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		httpc:  httpc,
		logger: logger.With(slog.String("provider", "toast")),
	}, nil
}

func (p *Provider) Name() string        { return "toast" }
func (p *Provider) DisplayName() string { return "Toast" }

// AuthURL is empty: Toast connections use direct credential entry.
func (p *Provider) AuthURL(state string) string { return "" }

// ExchangeCode is not supported for direct-credential connections.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*pos.AuthTokens, error) {
	return nil, fmt.Errorf("toast: %w: oauth exchange", pos.ErrNotSupported)
}

// Locations is not wired yet.
func (p *Provider) Locations(ctx context.Context, accessToken string) ([]pos.Location, error) {
	return nil, fmt.Errorf("toast: %w: location discovery", pos.ErrNotSupported)
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

// TestCredentials validates a restaurant GUID + access token pair by reading
// the restaurant profile.
func (p *Provider) TestCredentials(ctx context.Context, creds map[string]string) pos.TestResult {
	restaurantGUID := creds["restaurant_guid"]
	accessToken := creds["access_token"]
	if restaurantGUID == "" || accessToken == "" {
		return pos.TestResult{Success: false, Err: "restaurant_guid and access_token are required"}
	}

	url := fmt.Sprintf("%s/restaurants/v1/restaurants/%s", baseURL, restaurantGUID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Toast-Restaurant-External-ID", restaurantGUID)
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
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}

	name := data.Name
	if name == "" {
		name = "Unknown Restaurant"
	}
	return pos.TestResult{Success: true, DisplayName: name}
}
