package catalog

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// snapshot is an immutable view of the loaded catalog plus its lookup indexes.
type snapshot struct {
	tracks     []Track
	byID       map[string]*Track
	byLegacyID map[int]*Track
}

// Service owns the in-memory catalog. The track list is read-only for the
// lifetime of a snapshot; Reload builds a fresh snapshot and swaps it in
// atomically, so concurrent readers always see a consistent view.
type Service struct {
	path    string
	logger  *slog.Logger
	current atomic.Pointer[snapshot]
}

// NewService creates a catalog service and performs the initial load.
func NewService(path string, logger *slog.Logger) (*Service, error) {
	s := &Service{
		path:   path,
		logger: logger.With(slog.String("component", "catalog")),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the catalog file and atomically replaces the snapshot.
// On failure the previous snapshot stays in place.
func (s *Service) Reload() error {
	res, err := LoadCSV(s.path)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	res.LogDiagnostics(s.logger)

	snap := buildSnapshot(res.Tracks)
	s.current.Store(snap)

	s.logger.Info("catalog loaded",
		slog.String("path", s.path),
		slog.Int("tracks", len(snap.tracks)),
		slog.Int("skipped", res.Skipped))
	return nil
}

func buildSnapshot(tracks []Track) *snapshot {
	snap := &snapshot{
		tracks:     tracks,
		byID:       make(map[string]*Track, len(tracks)),
		byLegacyID: make(map[int]*Track, len(tracks)),
	}
	for i := range tracks {
		t := &snap.tracks[i]
		snap.byID[t.CanonicalID] = t
		if t.LegacyID != 0 {
			snap.byLegacyID[t.LegacyID] = t
		}
	}
	return snap
}

// Tracks returns the current snapshot's track list. Callers must treat the
// returned slice as read-only.
func (s *Service) Tracks() []Track {
	return s.current.Load().tracks
}

// Len reports the number of tracks in the current snapshot.
func (s *Service) Len() int {
	return len(s.current.Load().tracks)
}

// ByID looks up a track by canonical identifier. A nil result is a normal
// not-found outcome, not an error.
func (s *Service) ByID(id string) *Track {
	return s.current.Load().byID[id]
}

// ByLegacyID looks up a track by its legacy numeric identifier.
func (s *Service) ByLegacyID(id int) *Track {
	return s.current.Load().byLegacyID[id]
}
