// Package cache provides a persistent file-backed store for external lookup
// results. Each entry is one JSON file keyed by a filesystem-safe hash of
// (type tag, key), so distinct tags never collide even for identical keys.
// The cache is an optimization, not a durability contract: read and write
// failures degrade to misses and skipped writes.
package cache

import (
	"crypto/md5" //nolint:gosec // key derivation only, not a security boundary
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/tunegrid/tunegrid/internal/filesystem"
	"github.com/tunegrid/tunegrid/internal/metrics"
)

// Payload is an opaque JSON-serializable cache entry.
type Payload map[string]any

// Status reports cache statistics.
type Status struct {
	Enabled    bool   `json:"enabled"`
	EntryCount int    `json:"entry_count"`
	SizeBytes  int64  `json:"total_size_bytes"`
	Dir        string `json:"cache_dir,omitempty"`
}

// Store is a disk-backed key-value cache. A disabled store never touches the
// filesystem: every Get misses and every Set is a no-op.
type Store struct {
	dir     string
	enabled bool
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics attaches hit/miss counters to the store.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a Store rooted at dir, creating the directory if it is absent.
func New(dir string, enabled bool, logger *slog.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		dir:     dir,
		enabled: enabled,
		logger:  logger.With(slog.String("component", "cache")),
	}
	for _, opt := range opts {
		opt(s)
	}

	if enabled {
		if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // application data directory
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		s.logger.Info("cache initialized", slog.String("dir", dir))
	}
	return s, nil
}

// Enabled reports whether the store persists entries.
func (s *Store) Enabled() bool { return s.enabled }

// entryFile derives the deterministic file name for (typeTag, key).
func (s *Store) entryFile(key, typeTag string) string {
	sum := md5.Sum([]byte(key)) //nolint:gosec // filesystem-safe key derivation
	return filepath.Join(s.dir, typeTag+"_"+hex.EncodeToString(sum[:])+".json")
}

// Get retrieves the cached payload for (key, typeTag). A missing, corrupt,
// or unreadable entry is a miss, never an error; corrupt entries are left in
// place and logged.
func (s *Store) Get(key, typeTag string) (Payload, bool) {
	if !s.enabled {
		return nil, false
	}

	path := s.entryFile(key, typeTag)
	data, err := os.ReadFile(path) //nolint:gosec // path derived from hashed key
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache read failed",
				slog.String("path", path), slog.Any("error", err))
		}
		s.miss(typeTag, key)
		return nil, false
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.logger.Warn("cache entry corrupt, treating as miss",
			slog.String("path", path), slog.Any("error", err))
		s.miss(typeTag, key)
		return nil, false
	}

	if s.metrics != nil {
		s.metrics.CacheHitsTotal.Inc()
	}
	s.logger.Debug("cache hit", slog.String("type", typeTag), slog.String("key", key))
	return payload, true
}

func (s *Store) miss(typeTag, key string) {
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.Inc()
	}
	s.logger.Debug("cache miss", slog.String("type", typeTag), slog.String("key", key))
}

// Set stores a payload for (key, typeTag). Write failures are logged and
// swallowed.
func (s *Store) Set(key, typeTag string, payload Payload) {
	if !s.enabled {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("cache encode failed",
			slog.String("type", typeTag), slog.Any("error", err))
		return
	}

	path := s.entryFile(key, typeTag)
	if err := filesystem.WriteFileAtomic(path, data, 0o644); err != nil {
		s.logger.Warn("cache write failed",
			slog.String("path", path), slog.Any("error", err))
		return
	}
	s.logger.Debug("cached", slog.String("type", typeTag), slog.String("key", key))
}

// Clear removes all cache entries and returns the number removed.
func (s *Store) Clear() int {
	if !s.enabled {
		return 0
	}

	entries, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		s.logger.Warn("cache clear glob failed", slog.Any("error", err))
		return 0
	}

	count := 0
	for _, path := range entries {
		if err := os.Remove(path); err != nil {
			s.logger.Warn("cache entry delete failed",
				slog.String("path", path), slog.Any("error", err))
			continue
		}
		count++
	}

	s.logger.Info("cache cleared", slog.Int("removed", count))
	return count
}

// Status reports whether the cache is enabled plus entry count and total size.
func (s *Store) Status() Status {
	if !s.enabled {
		return Status{Enabled: false}
	}

	entries, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return Status{Enabled: true, Dir: s.dir}
	}

	var size int64
	for _, path := range entries {
		if info, err := os.Stat(path); err == nil {
			size += info.Size()
		}
	}

	return Status{
		Enabled:    true,
		EntryCount: len(entries),
		SizeBytes:  size,
		Dir:        s.dir,
	}
}
