// Package cli holds the shared wiring used by both binaries: provider
// registration from config and result printing.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/platewise/pos-sync-backend/internal/infrastructure/config"
	"github.com/platewise/pos-sync-backend/internal/pos"
	"github.com/platewise/pos-sync-backend/internal/pos/generic"
	"github.com/platewise/pos-sync-backend/internal/pos/lightspeed"
	"github.com/platewise/pos-sync-backend/internal/pos/shopify"
	"github.com/platewise/pos-sync-backend/internal/pos/square"
	"github.com/platewise/pos-sync-backend/internal/pos/toast"
)

// BuildRegistry constructs the provider registry from configuration. A
// vendor whose config block is missing is skipped, not an error; a vendor
// whose block is present but broken fails startup.
func BuildRegistry(cfg *config.Config, logger *slog.Logger) (*pos.Registry, error) {
	registry := pos.NewRegistry(logger)
	httpc := pos.NewHTTPClient()

	if cfg.Providers.Square.Configured() {
		provider, err := square.New(square.Config{
			ApplicationID:       cfg.Providers.Square.ApplicationID,
			ApplicationSecret:   cfg.Providers.Square.ApplicationSecret,
			Environment:         cfg.Providers.Square.Environment,
			WebhookSignatureKey: cfg.Providers.Square.WebhookSignatureKey,
		}, httpc, logger)
		if err != nil {
			return nil, fmt.Errorf("building square provider: %w", err)
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	if cfg.Providers.Shopify.Configured() {
		provider, err := shopify.New(shopify.Config{
			ShopDomain: cfg.Providers.Shopify.ShopDomain,
			APIKey:     cfg.Providers.Shopify.APIKey,
			APISecret:  cfg.Providers.Shopify.APISecret,
		}, httpc, logger)
		if err != nil {
			return nil, fmt.Errorf("building shopify provider: %w", err)
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	if cfg.Providers.Lightspeed.Enabled {
		provider, err := lightspeed.New(lightspeed.Config{
			APIType: cfg.Providers.Lightspeed.APIType,
		}, httpc, logger)
		if err != nil {
			return nil, fmt.Errorf("building lightspeed provider: %w", err)
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	if cfg.Providers.Toast.Enabled {
		provider, err := toast.New(httpc, logger)
		if err != nil {
			return nil, fmt.Errorf("building toast provider: %w", err)
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	if cfg.Providers.Generic.Enabled {
		if err := registry.Register(generic.New(logger)); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
