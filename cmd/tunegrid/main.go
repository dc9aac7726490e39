package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tunegrid/tunegrid/internal/api"
	"github.com/tunegrid/tunegrid/internal/cache"
	"github.com/tunegrid/tunegrid/internal/catalog"
	"github.com/tunegrid/tunegrid/internal/config"
	"github.com/tunegrid/tunegrid/internal/logging"
	"github.com/tunegrid/tunegrid/internal/metrics"
	"github.com/tunegrid/tunegrid/internal/musicbrainz"
	"github.com/tunegrid/tunegrid/internal/resolver"
	"github.com/tunegrid/tunegrid/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("TG_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logManager, logger := logging.NewManager(cfg.Logging)
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	m := metrics.New(prometheus.DefaultRegisterer)

	catalogService, err := catalog.NewService(cfg.Catalog.Path, logger)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	store, err := cache.New(cfg.Cache.Dir, cfg.Cache.Enabled, logger, cache.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}

	var external resolver.ExternalMatcher
	if cfg.MusicBrainz.Enabled {
		pacer := musicbrainz.NewPacer(cfg.MusicBrainz.MinInterval)
		external = musicbrainz.NewWithBaseURL(
			pacer, store, logger, m, cfg.MusicBrainz.Contact, cfg.MusicBrainz.BaseURL)
		logger.Info("musicbrainz lookup enabled",
			slog.Duration("min_interval", cfg.MusicBrainz.MinInterval))
	} else {
		logger.Info("musicbrainz lookup disabled")
	}

	resolverService := resolver.NewService(catalogService, external, logger, m)

	router := api.NewRouter(api.RouterDeps{
		CatalogService:  catalogService,
		ResolverService: resolverService,
		CacheStore:      store,
		Metrics:         m,
		Logger:          logger,
		BasePath:        cfg.Server.BasePath,
		APIToken:        cfg.Auth.APIToken,
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Catalog.Watch {
		watcherService := watcher.NewService(cfg.Catalog.Path, catalogService, logger)
		go watcherService.Start(ctx)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("base_path", cfg.Server.BasePath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
