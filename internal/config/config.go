// Package config loads and resolves filebox-go configuration from the
// four-layer override chain: defaults -> config file -> environment
// variables -> CLI flags.
package config

import "fmt"

// Log level vocabulary accepted by log_level.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Config is the on-disk TOML configuration.
type Config struct {
	// APIURL is the origin of the Filebox API, read once at startup.
	APIURL string `toml:"api_url"`

	// LogLevel is the baseline slog level; --verbose/--quiet override it.
	LogLevel string `toml:"log_level"`

	// UploadConcurrency bounds parallel uploads in `filebox put`.
	UploadConcurrency int `toml:"upload_concurrency"`

	// SessionPath overrides where the session file lives.
	SessionPath string `toml:"session_path"`

	// CatalogPath overrides where the local catalog database lives.
	CatalogPath string `toml:"catalog_path"`
}

// Default values.
const (
	DefaultAPIURL            = "http://localhost:8080"
	DefaultLogLevel          = "info"
	DefaultUploadConcurrency = 4
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		APIURL:            DefaultAPIURL,
		LogLevel:          DefaultLogLevel,
		UploadConcurrency: DefaultUploadConcurrency,
		SessionPath:       DefaultSessionPath(),
		CatalogPath:       DefaultCatalogPath(),
	}
}

// Validate checks the resolved configuration. A typo in log_level or a
// nonsensical concurrency fails loudly here instead of as confusing
// behavior later.
func Validate(cfg *Config) error {
	if cfg.APIURL == "" {
		return fmt.Errorf("config: api_url must not be empty")
	}

	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("config: invalid log_level %q (debug, info, warn, error)", cfg.LogLevel)
	}

	if cfg.UploadConcurrency < 1 {
		return fmt.Errorf("config: upload_concurrency must be at least 1, got %d", cfg.UploadConcurrency)
	}

	return nil
}
