// ABOUTME: Configuration loader for the kabar client
// ABOUTME: Loads settings from .env and environment variables with defaults

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// appDirName is the directory under the XDG config home holding session and logs
const appDirName = "kabar"

type Config struct {
	// Backend REST API
	APIURL         string        `env:"KABAR_API_URL, default=http://localhost:3000"`
	RequestTimeout time.Duration `env:"KABAR_REQUEST_TIMEOUT, default=30s"`

	// Local state (session.json, debug.log, recent images)
	ConfigDir string `env:"KABAR_CONFIG_DIR"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogFormat string `env:"LOG_FORMAT, default=text"`

	// Data fetching
	QueryStaleTime time.Duration `env:"KABAR_QUERY_STALE_TIME, default=60s"`
	SearchDebounce time.Duration `env:"KABAR_SEARCH_DEBOUNCE, default=300ms"`
	SearchMinLen   int           `env:"KABAR_SEARCH_MIN_LENGTH, default=3"`

	// Navigation
	NavCooldown time.Duration `env:"KABAR_NAV_COOLDOWN, default=500ms"`

	// Object storage for news images (optional)
	Storage StorageConfig
}

// StorageConfig holds the Supabase Storage settings used for image uploads
type StorageConfig struct {
	URL    string `env:"SUPABASE_URL"`
	APIKey string `env:"SUPABASE_ANON_KEY"`
	Bucket string `env:"KABAR_STORAGE_BUCKET, default=images"`
}

// Configured returns true if image uploads can be performed
func (s StorageConfig) Configured() bool {
	return s.URL != "" && s.APIKey != ""
}

// Load reads an optional .env file from the working directory, then the
// process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom builds the configuration from the given lookuper
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.APIURL = strings.TrimRight(ensureScheme(cfg.APIURL), "/")
	cfg.Storage.URL = strings.TrimRight(ensureScheme(cfg.Storage.URL), "/")
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("KABAR_API_URL must be an http(s) URL, got %q", c.APIURL)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"KABAR_REQUEST_TIMEOUT", c.RequestTimeout},
		{"KABAR_SEARCH_DEBOUNCE", c.SearchDebounce},
		{"KABAR_NAV_COOLDOWN", c.NavCooldown},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}
	if c.QueryStaleTime < 0 {
		return fmt.Errorf("KABAR_QUERY_STALE_TIME must not be negative, got %s", c.QueryStaleTime)
	}
	if c.SearchMinLen < 0 {
		return fmt.Errorf("KABAR_SEARCH_MIN_LENGTH must not be negative, got %d", c.SearchMinLen)
	}
	return nil
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
