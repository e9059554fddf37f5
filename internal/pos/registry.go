package pos

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry resolves concrete adapters by provider discriminator at call
// time. Only configured providers are registered; asking for anything else
// yields ErrUnknownProvider.
type Registry struct {
	providers map[string]Provider
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(provider Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	_, canRefresh := provider.(TokenRefresher)
	_, hasWebhooks := provider.(WebhookNormalizer)

	r.providers[name] = provider
	r.logger.Info("registered provider",
		slog.String("provider", name),
		slog.String("display_name", provider.DisplayName()),
		slog.Bool("supports_refresh", canRefresh),
		slog.Bool("supports_webhooks", hasWebhooks),
	)

	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	return provider, nil
}

// Names returns all registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered providers.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(r.providers))
	for _, provider := range r.providers {
		providers = append(providers, provider)
	}
	return providers
}
