// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml), with ${ENV_VAR} expansion
//  2. Environment variables (fallback)
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Sync          SyncConfig          `yaml:"sync"`
	Providers     ProvidersConfig     `yaml:"providers"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// JWTSecret signs/verifies the bearer tokens that identify callers.
	JWTSecret string `yaml:"jwt_secret"`
	// ServiceToken authorizes service-to-service calls (batch sync, cron).
	ServiceToken string `yaml:"service_token"`
}

// StorageConfig holds database configuration.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// SyncConfig holds sync job settings.
type SyncConfig struct {
	// LookbackDays is the transaction window pulled per sync pass.
	LookbackDays int `yaml:"lookback_days"`
	// MinIntervalHours throttles automatic syncs per connection, purely to
	// protect vendor rate limits.
	MinIntervalHours int `yaml:"min_interval_hours"`
}

// ProvidersConfig holds per-vendor application credentials. A vendor whose
// block is incomplete is simply not registered; constructing its adapter
// anyway is a hard error.
type ProvidersConfig struct {
	Square     SquareConfig     `yaml:"square"`
	Shopify    ShopifyConfig    `yaml:"shopify"`
	Lightspeed LightspeedConfig `yaml:"lightspeed"`
	Toast      ToastConfig      `yaml:"toast"`
	Generic    GenericConfig    `yaml:"generic"`
}

// SquareConfig holds Square application credentials.
type SquareConfig struct {
	ApplicationID       string `yaml:"application_id"`
	ApplicationSecret   string `yaml:"application_secret"`
	Environment         string `yaml:"environment"` // "production" or "sandbox"
	WebhookSignatureKey string `yaml:"webhook_signature_key"`
}

// Configured reports whether the Square block is usable.
func (c SquareConfig) Configured() bool {
	return c.ApplicationID != "" && c.ApplicationSecret != ""
}

// ShopifyConfig holds Shopify app settings.
type ShopifyConfig struct {
	ShopDomain string `yaml:"shop_domain"`
	APIKey     string `yaml:"api_key"`
	APISecret  string `yaml:"api_secret"`
}

// Configured reports whether the Shopify block is usable.
func (c ShopifyConfig) Configured() bool {
	return c.ShopDomain != ""
}

// LightspeedConfig holds Lightspeed settings.
type LightspeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIType string `yaml:"api_type"` // "retail" or "restaurant"
}

// ToastConfig holds Toast settings.
type ToastConfig struct {
	Enabled bool `yaml:"enabled"`
}

// GenericConfig enables the template provider (useful in development).
type GenericConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${SQUARE_APPLICATION_SECRET})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("PORT", 8080),
			JWTSecret:    os.Getenv("JWT_SECRET"),
			ServiceToken: os.Getenv("SERVICE_TOKEN"),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("POS_DB_PATH", "pos_sync.db"),
		},
		Sync: SyncConfig{
			LookbackDays:     getEnvInt("SYNC_LOOKBACK_DAYS", 1),
			MinIntervalHours: getEnvInt("SYNC_MIN_INTERVAL_HOURS", 6),
		},
		Providers: ProvidersConfig{
			Square: SquareConfig{
				ApplicationID:       os.Getenv("SQUARE_APPLICATION_ID"),
				ApplicationSecret:   os.Getenv("SQUARE_APPLICATION_SECRET"),
				Environment:         getEnv("SQUARE_ENVIRONMENT", "sandbox"),
				WebhookSignatureKey: os.Getenv("SQUARE_WEBHOOK_SIGNATURE_KEY"),
			},
			Shopify: ShopifyConfig{
				ShopDomain: os.Getenv("SHOPIFY_SHOP_DOMAIN"),
				APIKey:     os.Getenv("SHOPIFY_API_KEY"),
				APISecret:  os.Getenv("SHOPIFY_API_SECRET"),
			},
			Lightspeed: LightspeedConfig{
				Enabled: os.Getenv("LIGHTSPEED_ENABLED") == "true",
				APIType: getEnv("LIGHTSPEED_API_TYPE", "restaurant"),
			},
			Toast: ToastConfig{
				Enabled: os.Getenv("TOAST_ENABLED") == "true",
			},
			Generic: GenericConfig{
				Enabled: os.Getenv("GENERIC_POS_ENABLED") == "true",
			},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment
// variables.
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables.
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "pos_sync.db"
	}
	if c.Sync.LookbackDays == 0 {
		c.Sync.LookbackDays = 1
	}
	if c.Sync.MinIntervalHours == 0 {
		c.Sync.MinIntervalHours = 6
	}
	if c.Providers.Square.Environment == "" {
		c.Providers.Square.Environment = "sandbox"
	}
	if c.Providers.Lightspeed.APIType == "" {
		c.Providers.Lightspeed.APIType = "restaurant"
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback
// default.
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
