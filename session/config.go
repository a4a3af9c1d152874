package session

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/gemaluna/storefront-client/pkg/config"
)

// Config holds all configuration for a storefront session.
type Config struct {
	// BaseURL is the storefront backend root.
	BaseURL  string `env:"STORE_BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP client
	HTTPTimeout    time.Duration `env:"STORE_HTTP_TIMEOUT" envDefault:"15s"`
	BreakerEnabled bool          `env:"STORE_BREAKER_ENABLED" envDefault:"true"`

	// Redirect entry points
	LoginPath   string `env:"STORE_LOGIN_PATH" envDefault:"/login"`
	ProfilePath string `env:"STORE_PROFILE_PATH" envDefault:"/customer/complete-profile"`
	CatalogPath string `env:"STORE_CATALOG_PATH" envDefault:"/catalog"`

	// Pending-cart storage. The file store is the default; setting RedisAddr
	// switches to the Redis carrier (shared-terminal deployments).
	PendingDir string `env:"STORE_PENDING_DIR" envDefault:"."`
	RedisAddr  string `env:"STORE_REDIS_ADDR" envDefault:""`
	RedisPass  string `env:"STORE_REDIS_PASSWORD" envDefault:""`
	RedisDB    int    `env:"STORE_REDIS_DB" envDefault:"0"`

	// SessionID keys the Redis pending-cart slot. Auto-generated when empty.
	SessionID string `env:"STORE_SESSION_ID" envDefault:""`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load session config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL: %q", c.BaseURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("invalid HTTP timeout: %s", c.HTTPTimeout)
	}
	return nil
}
