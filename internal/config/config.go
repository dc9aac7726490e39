package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tunegrid/tunegrid/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Cache       CacheConfig       `yaml:"cache"`
	MusicBrainz MusicBrainzConfig `yaml:"musicbrainz"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     logging.Config    `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

// CatalogConfig holds catalog file settings.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// CacheConfig holds lookup cache settings.
type CacheConfig struct {
	Dir     string `yaml:"dir"`
	Enabled bool   `yaml:"enabled"`
}

// MusicBrainzConfig holds external lookup settings.
type MusicBrainzConfig struct {
	Enabled     bool          `yaml:"enabled"`
	BaseURL     string        `yaml:"base_url"`
	Contact     string        `yaml:"contact"`
	MinInterval time.Duration `yaml:"min_interval"`
}

// AuthConfig holds API authentication settings. An empty token disables
// authentication entirely.
type AuthConfig struct {
	APIToken string `yaml:"api_token"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			BasePath: "",
		},
		Catalog: CatalogConfig{
			Path:  "data/music_catalog.csv",
			Watch: false,
		},
		Cache: CacheConfig{
			Dir:     "data/cache",
			Enabled: true,
		},
		MusicBrainz: MusicBrainzConfig{
			Enabled:     true,
			BaseURL:     "https://musicbrainz.org/ws/2",
			MinInterval: time.Second,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path from trusted env/flag
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("TG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("TG_BASE_PATH"); v != "" {
		c.Server.BasePath = v
	}
	if v := os.Getenv("TG_CATALOG_PATH"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("TG_CATALOG_WATCH"); v != "" {
		c.Catalog.Watch = v == "true" || v == "1"
	}
	if v := os.Getenv("TG_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("TG_CACHE_ENABLED"); v != "" {
		c.Cache.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("TG_MUSICBRAINZ_ENABLED"); v != "" {
		c.MusicBrainz.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("TG_MUSICBRAINZ_URL"); v != "" {
		c.MusicBrainz.BaseURL = v
	}
	if v := os.Getenv("TG_MUSICBRAINZ_CONTACT"); v != "" {
		c.MusicBrainz.Contact = v
	}
	if v := os.Getenv("TG_MUSICBRAINZ_MIN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MusicBrainz.MinInterval = d
		}
	}
	if v := os.Getenv("TG_API_TOKEN"); v != "" {
		c.Auth.APIToken = v
	}
	if v := os.Getenv("TG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TG_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("TG_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required")
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return fmt.Errorf("cache dir is required when caching is enabled")
	}
	if c.MusicBrainz.MinInterval < 0 {
		return fmt.Errorf("musicbrainz min_interval must not be negative")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	return nil
}
