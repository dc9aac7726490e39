package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tunegrid/tunegrid/internal/search"
	"github.com/tunegrid/tunegrid/internal/version"
)

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"version":      version.Version,
		"tracks_count": r.catalogService.Len(),
		"time":         time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleListTracks(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.catalogService.Tracks())
}

// handleGetTrack looks a track up by canonical ID, falling back to the
// legacy numeric ID for older consumers.
func (r *Router) handleGetTrack(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")

	track := r.catalogService.ByID(id)
	if track == nil {
		if n, err := strconv.Atoi(id); err == nil {
			track = r.catalogService.ByLegacyID(n)
		}
	}
	if track == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("track %q not found", id))
		return
	}

	writeJSON(w, http.StatusOK, track)
}

func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) {
	var q search.Query
	if err := json.NewDecoder(req.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if q.Text == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if q.Limit == 0 {
		q.Limit = search.DefaultLimit
	}
	if q.Limit < search.MinLimit || q.Limit > search.MaxLimit {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("limit must be between %d and %d", search.MinLimit, search.MaxLimit))
		return
	}
	for name, v := range map[string]*float64{
		"min_energy": q.MinEnergy, "max_energy": q.MaxEnergy,
		"min_valence": q.MinValence, "max_valence": q.MaxValence,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			writeError(w, http.StatusBadRequest, name+" must be within [0,1]")
			return
		}
	}

	results := search.Ranker{}.Search(r.catalogService.Tracks(), q)
	writeJSON(w, http.StatusOK, results)
}

func (r *Router) handleResolve(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result := r.resolverService.Resolve(req.Context(), body.Query)
	writeJSON(w, http.StatusOK, result)
}

func (r *Router) handleCacheStatus(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.cacheStore.Status())
}

func (r *Router) handleCacheClear(w http.ResponseWriter, req *http.Request) {
	removed := r.cacheStore.Clear()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (r *Router) handleCatalogReload(w http.ResponseWriter, req *http.Request) {
	if err := r.catalogService.Reload(); err != nil {
		r.logger.Error("catalog reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog reload failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"tracks_count": r.catalogService.Len(),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
