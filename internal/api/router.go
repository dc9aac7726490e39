package api

import (
	"log/slog"
	"net/http"

	"github.com/tunegrid/tunegrid/internal/api/middleware"
	"github.com/tunegrid/tunegrid/internal/cache"
	"github.com/tunegrid/tunegrid/internal/catalog"
	"github.com/tunegrid/tunegrid/internal/metrics"
	"github.com/tunegrid/tunegrid/internal/resolver"
)

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	CatalogService  *catalog.Service
	ResolverService *resolver.Service
	CacheStore      *cache.Store
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
	BasePath        string
	APIToken        string
}

// Router sets up all HTTP routes for the application.
type Router struct {
	catalogService  *catalog.Service
	resolverService *resolver.Service
	cacheStore      *cache.Store
	metrics         *metrics.Metrics
	logger          *slog.Logger
	basePath        string
	apiToken        string
}

// NewRouter creates a Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		catalogService:  deps.CatalogService,
		resolverService: deps.ResolverService,
		cacheStore:      deps.CacheStore,
		metrics:         deps.Metrics,
		logger:          deps.Logger,
		basePath:        deps.BasePath,
		apiToken:        deps.APIToken,
	}
}

// Handler builds the HTTP handler tree.
func (r *Router) Handler() http.Handler {
	authMw := middleware.BearerAuth(r.apiToken)
	resolveLimiter := middleware.NewResolveRateLimiter()
	mux := http.NewServeMux()
	bp := r.basePath

	// Public routes (no auth)
	mux.HandleFunc("GET "+bp+"/health", r.handleHealth)
	mux.Handle("GET "+bp+"/metrics", metrics.Handler())

	// API routes (auth required when a token is configured)
	mux.HandleFunc("GET "+bp+"/api/v1/tracks", wrap(r.handleListTracks, authMw))
	mux.HandleFunc("GET "+bp+"/api/v1/tracks/{id}", wrap(r.handleGetTrack, authMw))
	mux.HandleFunc("POST "+bp+"/api/v1/search", wrap(r.handleSearch, authMw))
	mux.HandleFunc("POST "+bp+"/api/v1/resolve",
		wrap(r.handleResolve, authMw, resolveLimiter.Middleware))
	mux.HandleFunc("GET "+bp+"/api/v1/cache/status", wrap(r.handleCacheStatus, authMw))
	mux.HandleFunc("POST "+bp+"/api/v1/cache/clear", wrap(r.handleCacheClear, authMw))
	mux.HandleFunc("POST "+bp+"/api/v1/catalog/reload", wrap(r.handleCatalogReload, authMw))

	var handler http.Handler = mux
	handler = middleware.Metrics(r.metrics)(handler)
	handler = middleware.Logging(r.logger)(handler)
	handler = middleware.RequestID(handler)
	return handler
}

// wrap applies middleware to a handler function, outermost last.
func wrap(fn http.HandlerFunc, mws ...func(http.Handler) http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var h http.Handler = fn
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		h.ServeHTTP(w, r)
	}
}
