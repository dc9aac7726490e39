package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want true")
	}
	if !cfg.MusicBrainz.Enabled {
		t.Error("MusicBrainz.Enabled = false, want true")
	}
	if cfg.MusicBrainz.MinInterval != time.Second {
		t.Errorf("MinInterval = %v, want 1s", cfg.MusicBrainz.MinInterval)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
  base_path: /music/
catalog:
  path: /srv/catalog.csv
  watch: true
musicbrainz:
  enabled: false
auth:
  api_token: secret
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.BasePath != "/music" {
		t.Errorf("BasePath = %q, want /music (trailing slash trimmed)", cfg.Server.BasePath)
	}
	if cfg.Catalog.Path != "/srv/catalog.csv" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if !cfg.Catalog.Watch {
		t.Error("Catalog.Watch = false, want true")
	}
	if cfg.MusicBrainz.Enabled {
		t.Error("MusicBrainz.Enabled = true, want false")
	}
	if cfg.Auth.APIToken != "secret" {
		t.Errorf("APIToken = %q", cfg.Auth.APIToken)
	}
	// Unset file values keep their defaults.
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want default true")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("TG_PORT", "7070")
	t.Setenv("TG_CACHE_ENABLED", "false")
	t.Setenv("TG_MUSICBRAINZ_MIN_INTERVAL", "250ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled = true, want false from env")
	}
	if cfg.MusicBrainz.MinInterval != 250*time.Millisecond {
		t.Errorf("MinInterval = %v, want 250ms", cfg.MusicBrainz.MinInterval)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"empty catalog path", func(c *Config) { c.Catalog.Path = "" }},
		{"cache enabled without dir", func(c *Config) { c.Cache.Dir = "" }},
		{"negative min interval", func(c *Config) { c.MusicBrainz.MinInterval = -time.Second }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("validate returned nil, want error")
			}
		})
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load returned nil error for invalid YAML")
	}
}
