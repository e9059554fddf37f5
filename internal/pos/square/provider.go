// Package square implements the reference POS adapter against the Square
// Connect API.
package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

// apiVersion is pinned so response shapes stay stable. Never auto-negotiate
// the latest version.
const apiVersion = "2024-12-18"

const (
	productionBaseURL = "https://connect.squareup.com"
	sandboxBaseURL    = "https://connect.squareupsandbox.com"
)

// Config holds the Square application credentials.
type Config struct {
	ApplicationID       string
	ApplicationSecret   string
	Environment         string // "production" or "sandbox"
	WebhookSignatureKey string
}

// Provider is the Square adapter. The base URL is selected once at
// construction from the environment selector and never re-derived per call.
type Provider struct {
	cfg     Config
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

var (
	_ pos.Provider          = (*Provider)(nil)
	_ pos.TokenRefresher    = (*Provider)(nil)
	_ pos.WebhookNormalizer = (*Provider)(nil)
	_ pos.CredentialTester  = (*Provider)(nil)
)

// New creates a Square provider. Missing credentials are a hard error, not a
// silent fallback.
func New(cfg Config, httpc *http.Client, logger *slog.Logger) (*Provider, error) {
	if cfg.ApplicationID == "" || cfg.ApplicationSecret == "" {
		return nil, fmt.Errorf("square: %w", pos.ErrNotConfigured)
	}
	if httpc == nil {
		httpc = pos.NewHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := sandboxBaseURL
	if cfg.Environment == "production" {
		baseURL = productionBaseURL
	}

	return &Provider{
		cfg:     cfg,
		baseURL: baseURL,
		httpc:   httpc,
		logger:  logger.With(slog.String("provider", "square")),
	}, nil
}

func (p *Provider) Name() string        { return "square" }
func (p *Provider) DisplayName() string { return "Square" }

// AuthURL builds the OAuth authorization URL with a read-only scope set.
func (p *Provider) AuthURL(state string) string {
	return fmt.Sprintf("%s/oauth2/authorize?client_id=%s&scope=ITEMS_READ,ORDERS_READ,MERCHANT_PROFILE_READ&state=%s",
		p.baseURL, p.cfg.ApplicationID, state)
}

// tokenResponse is the shape of /oauth2/token for both grant types.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
	MerchantID   string `json:"merchant_id"`
}

// ExchangeCode exchanges an authorization code for tokens.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*pos.AuthTokens, error) {
	body := map[string]string{
		"client_id":     p.cfg.ApplicationID,
		"client_secret": p.cfg.ApplicationSecret,
		"code":          code,
		"grant_type":    "authorization_code",
	}
	return p.tokenRequest(ctx, body, pos.ErrExchangeFailed)
}

// RefreshToken exchanges a refresh token for a new access/refresh pair. Same
// endpoint as ExchangeCode with a different grant_type discriminator.
func (p *Provider) RefreshToken(ctx context.Context, refreshToken string) (*pos.AuthTokens, error) {
	body := map[string]string{
		"client_id":     p.cfg.ApplicationID,
		"client_secret": p.cfg.ApplicationSecret,
		"refresh_token": refreshToken,
		"grant_type":    "refresh_token",
	}
	return p.tokenRequest(ctx, body, pos.ErrRefreshFailed)
}

func (p *Provider) tokenRequest(ctx context.Context, body map[string]string, failure error) (*pos.AuthTokens, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/oauth2/token", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Square-Version", apiVersion)

	resp, err := p.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("square: %w: %v", failure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Surface the vendor's raw error text, not a generic message.
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("square: %w: %s", failure, string(raw))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("square: %w: decoding response: %v", failure, err)
	}

	tokens := &pos.AuthTokens{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		MerchantID:   tr.MerchantID,
	}
	if tr.ExpiresAt != "" {
		if expiresAt, err := time.Parse(time.RFC3339, tr.ExpiresAt); err == nil {
			tokens.ExpiresAt = expiresAt
		}
	}
	return tokens, nil
}

func (p *Provider) newAPIRequest(ctx context.Context, method, path, accessToken string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Square-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Locations enumerates the merchant's locations.
func (p *Provider) Locations(ctx context.Context, accessToken string) ([]pos.Location, error) {
	req, err := p.newAPIRequest(ctx, http.MethodGet, "/v2/locations", accessToken, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("square: fetching locations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("square: fetching locations: HTTP %d", resp.StatusCode)
	}

	var data struct {
		Locations []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Currency string `json:"currency"`
		} `json:"locations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("square: decoding locations: %w", err)
	}

	locations := make([]pos.Location, 0, len(data.Locations))
	for _, loc := range data.Locations {
		locations = append(locations, pos.Location{ID: loc.ID, Name: loc.Name, Currency: loc.Currency})
	}
	return locations, nil
}

type catalogObject struct {
	ID       string `json:"id"`
	ItemData *struct {
		Name       string `json:"name"`
		CategoryID string `json:"category_id"`
		Variations []struct {
			ItemVariationData *struct {
				SKU        string `json:"sku"`
				PriceMoney *money `json:"price_money"`
			} `json:"item_variation_data"`
		} `json:"variations"`
	} `json:"item_data"`
}

type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Products fetches the catalog. A non-success response is non-fatal: it
// yields an empty list so the connect flow can still complete.
func (p *Provider) Products(ctx context.Context, accessToken string) ([]pos.UnifiedProduct, error) {
	req, err := p.newAPIRequest(ctx, http.MethodGet, "/v2/catalog/list?types=ITEM", accessToken, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpc.Do(req)
	if err != nil {
		p.logger.Warn("catalog fetch failed", slog.String("error", err.Error()))
		return []pos.UnifiedProduct{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("catalog fetch failed", slog.Int("status", resp.StatusCode))
		return []pos.UnifiedProduct{}, nil
	}

	var data struct {
		Objects []catalogObject `json:"objects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		p.logger.Warn("catalog decode failed", slog.String("error", err.Error()))
		return []pos.UnifiedProduct{}, nil
	}

	products := make([]pos.UnifiedProduct, 0, len(data.Objects))
	for _, obj := range data.Objects {
		products = append(products, normalizeCatalogObject(obj))
	}
	return products, nil
}

func normalizeCatalogObject(obj catalogObject) pos.UnifiedProduct {
	product := pos.UnifiedProduct{
		ID:   obj.ID,
		Name: "Unnamed Product",
		// Stock requires a separate Inventory API call; left at zero.
		StockLevel: 0,
		Category:   "General",
	}
	if obj.ItemData == nil {
		return product
	}
	if obj.ItemData.Name != "" {
		product.Name = obj.ItemData.Name
	}
	// Square exposes only the category id here; resolving the human label
	// needs a second catalog lookup. The id is accepted as-is.
	if obj.ItemData.CategoryID != "" {
		product.Category = obj.ItemData.CategoryID
	}
	if len(obj.ItemData.Variations) > 0 {
		if vd := obj.ItemData.Variations[0].ItemVariationData; vd != nil {
			product.SKU = vd.SKU
			if vd.PriceMoney != nil {
				// Square sends cents.
				product.Price = float64(vd.PriceMoney.Amount) / 100
			}
		}
	}
	return product
}

type searchOrdersRequest struct {
	Query struct {
		Filter struct {
			StateFilter struct {
				States []string `json:"states"`
			} `json:"state_filter"`
			DateTimeFilter struct {
				CreatedAt struct {
					StartAt string `json:"start_at"`
					EndAt   string `json:"end_at,omitempty"`
				} `json:"created_at"`
			} `json:"date_time_filter"`
		} `json:"filter"`
	} `json:"query"`
}

type orderObject struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	TotalMoney *money `json:"total_money"`
	LineItems  []struct {
		CatalogObjectID string `json:"catalog_object_id"`
		Name            string `json:"name"`
		Quantity        string `json:"quantity"`
		BasePriceMoney  *money `json:"base_price_money"`
		TotalMoney      *money `json:"total_money"`
	} `json:"line_items"`
}

// Transactions searches completed orders in [from, to). Filtering happens
// server-side: only COMPLETED orders, with the date window as a structured
// filter, so drafts and cancelled orders never reach this process.
func (p *Provider) Transactions(ctx context.Context, accessToken string, from time.Time, to *time.Time) ([]pos.UnifiedTransaction, error) {
	var search searchOrdersRequest
	search.Query.Filter.StateFilter.States = []string{"COMPLETED"}
	search.Query.Filter.DateTimeFilter.CreatedAt.StartAt = from.Format(time.RFC3339)
	if to != nil {
		search.Query.Filter.DateTimeFilter.CreatedAt.EndAt = to.Format(time.RFC3339)
	}

	payload, err := json.Marshal(search)
	if err != nil {
		return nil, err
	}

	req, err := p.newAPIRequest(ctx, http.MethodPost, "/v2/orders/search", accessToken, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := p.httpc.Do(req)
	if err != nil {
		p.logger.Warn("transaction fetch failed", slog.String("error", err.Error()))
		return []pos.UnifiedTransaction{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("transaction fetch failed", slog.Int("status", resp.StatusCode))
		return []pos.UnifiedTransaction{}, nil
	}

	var data struct {
		Orders []orderObject `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		p.logger.Warn("transaction decode failed", slog.String("error", err.Error()))
		return []pos.UnifiedTransaction{}, nil
	}

	transactions := make([]pos.UnifiedTransaction, 0, len(data.Orders))
	for _, order := range data.Orders {
		transactions = append(transactions, normalizeOrder(order))
	}
	return transactions, nil
}

func normalizeOrder(order orderObject) pos.UnifiedTransaction {
	txn := pos.UnifiedTransaction{
		ID:       order.ID,
		Currency: "USD",
	}
	if created, err := time.Parse(time.RFC3339, order.CreatedAt); err == nil {
		txn.Date = created
	}
	if order.TotalMoney != nil {
		txn.TotalAmount = float64(order.TotalMoney.Amount) / 100
		if order.TotalMoney.Currency != "" {
			txn.Currency = order.TotalMoney.Currency
		}
	}
	txn.Items = make([]pos.UnifiedTransactionItem, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		item := pos.UnifiedTransactionItem{
			ProductID:   li.CatalogObjectID,
			ProductName: li.Name,
		}
		if qty, err := strconv.ParseFloat(li.Quantity, 64); err == nil {
			item.Quantity = qty
		}
		if li.BasePriceMoney != nil {
			item.UnitPrice = float64(li.BasePriceMoney.Amount) / 100
		}
		if li.TotalMoney != nil {
			item.TotalPrice = float64(li.TotalMoney.Amount) / 100
		}
		txn.Items = append(txn.Items, item)
	}
	return txn
}

// TestCredentials validates manually entered credentials by reading the
// configured location.
func (p *Provider) TestCredentials(ctx context.Context, creds map[string]string) pos.TestResult {
	accessToken := creds["access_token"]
	locationID := creds["location_id"]
	if accessToken == "" || locationID == "" {
		return pos.TestResult{Success: false, Err: "access_token and location_id are required"}
	}

	req, err := p.newAPIRequest(ctx, http.MethodGet, "/v2/locations/"+locationID, accessToken, nil)
	if err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}

	resp, err := p.httpc.Do(req)
	if err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var data struct {
			Errors []struct {
				Detail string `json:"detail"`
			} `json:"errors"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&data)
		if len(data.Errors) > 0 && data.Errors[0].Detail != "" {
			return pos.TestResult{Success: false, Err: data.Errors[0].Detail}
		}
		return pos.TestResult{Success: false, Err: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))}
	}

	var data struct {
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}

	name := data.Location.Name
	if name == "" {
		name = "Unknown Location"
	}
	return pos.TestResult{Success: true, DisplayName: name}
}
