// Package shopify implements a partial POS adapter for Shopify. Credential
// testing and catalog reads are wired against the Admin API; the OAuth
// exchange and transaction sync are not implemented yet, so connections are
// established through manual credential entry.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

const apiVersion = "2024-01"

// Config holds the Shopify app settings. ShopDomain is the merchant's
// *.myshopify.com host.
type Config struct {
	ShopDomain string
	APIKey     string
	APISecret  string
}

// Provider is the Shopify adapter.
type Provider struct {
	cfg    Config
	httpc  *http.Client
	logger *slog.Logger
}

var (
	_ pos.Provider         = (*Provider)(nil)
	_ pos.CredentialTester = (*Provider)(nil)
)

// New creates a Shopify provider.
func New(cfg Config, httpc *http.Client, logger *slog.Logger) (*Provider, error) {
	if cfg.ShopDomain == "" {
		return nil, fmt.Errorf("shopify: %w", pos.ErrNotConfigured)
	}
	if httpc == nil {
		httpc = pos.NewHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		cfg:    cfg,
		httpc:  httpc,
		logger: logger.With(slog.String("provider", "shopify")),
	}, nil
}

func (p *Provider) Name() string        { return "shopify" }
func (p *Provider) DisplayName() string { return "Shopify" }

// AuthURL builds the Shopify authorization URL with read-only scopes.
func (p *Provider) AuthURL(state string) string {
	return fmt.Sprintf("https://%s/admin/oauth/authorize?client_id=%s&scope=read_products,read_orders&state=%s",
		p.cfg.ShopDomain, p.cfg.APIKey, state)
}

// ExchangeCode is not implemented; Shopify connections use manual credential
// entry via TestCredentials.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*pos.AuthTokens, error) {
	return nil, fmt.Errorf("shopify: %w: oauth exchange", pos.ErrNotSupported)
}

func (p *Provider) adminURL(path string) string {
	return fmt.Sprintf("https://%s/admin/api/%s%s", p.cfg.ShopDomain, apiVersion, path)
}

func (p *Provider) newRequest(ctx context.Context, path, accessToken string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.adminURL(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Locations reports the shop itself as the single location.
func (p *Provider) Locations(ctx context.Context, accessToken string) ([]pos.Location, error) {
	req, err := p.newRequest(ctx, "/shop.json", accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify: fetching shop: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify: fetching shop: HTTP %d", resp.StatusCode)
	}

	var data struct {
		Shop struct {
			ID       int64  `json:"id"`
			Name     string `json:"name"`
			Currency string `json:"currency"`
		} `json:"shop"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("shopify: decoding shop: %w", err)
	}

	return []pos.Location{{
		ID:       strconv.FormatInt(data.Shop.ID, 10),
		Name:     data.Shop.Name,
		Currency: data.Shop.Currency,
	}}, nil
}

type shopifyProduct struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ProductType string `json:"product_type"`
	Variants    []struct {
		Price             string `json:"price"`
		InventoryQuantity int    `json:"inventory_quantity"`
		SKU               string `json:"sku"`
	} `json:"variants"`
}

// Products fetches the catalog. Shopify prices are already in major units;
// no division happens here.
func (p *Provider) Products(ctx context.Context, accessToken string) ([]pos.UnifiedProduct, error) {
	req, err := p.newRequest(ctx, "/products.json?limit=250", accessToken)
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
		Products []shopifyProduct `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		p.logger.Warn("catalog decode failed", slog.String("error", err.Error()))
		return []pos.UnifiedProduct{}, nil
	}

	products := make([]pos.UnifiedProduct, 0, len(data.Products))
	for _, sp := range data.Products {
		product := pos.UnifiedProduct{
			ID:       strconv.FormatInt(sp.ID, 10),
			Name:     sp.Title,
			Category: sp.ProductType,
		}
		if len(sp.Variants) > 0 {
			v := sp.Variants[0]
			if price, err := strconv.ParseFloat(v.Price, 64); err == nil {
				product.Price = price
			}
			product.StockLevel = v.InventoryQuantity
			product.SKU = v.SKU
		}
		products = append(products, product)
	}
	return products, nil
}

// Transactions is not wired yet; the sync job treats an empty window as a
// clean no-op for this provider.
func (p *Provider) Transactions(ctx context.Context, accessToken string, from time.Time, to *time.Time) ([]pos.UnifiedTransaction, error) {
	p.logger.Warn("transaction sync not implemented")
	return []pos.UnifiedTransaction{}, nil
}

// TestCredentials validates a shop domain + access token pair by reading the
// shop profile.
func (p *Provider) TestCredentials(ctx context.Context, creds map[string]string) pos.TestResult {
	shopDomain := creds["shop_domain"]
	accessToken := creds["access_token"]
	if shopDomain == "" || accessToken == "" {
		return pos.TestResult{Success: false, Err: "shop_domain and access_token are required"}
	}

	url := fmt.Sprintf("https://%s/admin/api/%s/shop.json", shopDomain, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpc.Do(req)
	if err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var data struct {
			Errors string `json:"errors"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&data)
		if data.Errors != "" {
			return pos.TestResult{Success: false, Err: data.Errors}
		}
		return pos.TestResult{Success: false, Err: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))}
	}

	var data struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return pos.TestResult{Success: false, Err: err.Error()}
	}

	name := data.Shop.Name
	if name == "" {
		name = "Unknown Shop"
	}
	return pos.TestResult{Success: true, DisplayName: name}
}
