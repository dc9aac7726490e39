// Package watcher reloads the catalog when its source file changes on disk.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader is the catalog operation triggered on file changes.
type Reloader interface {
	Reload() error
}

// Service watches a single catalog file and triggers a debounced reload on
// write, create, or rename events. Editors and atomic replacers produce
// bursts of events; the debounce collapses each burst into one reload.
type Service struct {
	path     string
	reloader Reloader
	logger   *slog.Logger
	debounce time.Duration
}

// NewService creates a watcher for the catalog file at path.
func NewService(path string, reloader Reloader, logger *slog.Logger) *Service {
	return &Service{
		path:     path,
		reloader: reloader,
		logger:   logger.With(slog.String("component", "catalog-watcher")),
		debounce: time.Second,
	}
}

// SetDebounce overrides the default debounce interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Start blocks until ctx is canceled. The parent directory is watched rather
// than the file itself, so rename-based atomic replacement keeps working.
func (s *Service) Start(ctx context.Context) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("fsnotify unavailable, catalog watch disabled", "error", err)
		return
	}
	defer w.Close() //nolint:errcheck

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		s.logger.Warn("watching catalog directory failed",
			slog.String("dir", dir), slog.Any("error", err))
		return
	}
	s.logger.Info("watching catalog file", slog.String("path", s.path))

	base := filepath.Base(s.path)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(s.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			s.logger.Info("catalog file changed, reloading")
			if err := s.reloader.Reload(); err != nil {
				s.logger.Error("catalog reload failed", "error", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}
