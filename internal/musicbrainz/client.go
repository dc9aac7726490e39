// Package musicbrainz wraps the MusicBrainz recording search API behind a
// process-wide pacer and a persistent result cache. Every failure degrades
// to an empty result: callers never see an error, and failed calls are never
// memoized, so the next request retries the network.
package musicbrainz

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tunegrid/tunegrid/internal/cache"
	"github.com/tunegrid/tunegrid/internal/metrics"
	"github.com/tunegrid/tunegrid/internal/version"
)

const defaultBaseURL = "https://musicbrainz.org/ws/2"

// Cache type tags. Distinct tags namespace the two lookup kinds so a query
// string that happens to equal an MBID can never collide.
const (
	cacheTagQuery = "query"
	cacheTagMBID  = "mbid"
)

// Client talks to the MusicBrainz recording endpoints.
type Client struct {
	client  *http.Client
	pacer   *Pacer
	store   *cache.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	baseURL string
	contact string
}

// New creates a client with the default base URL.
func New(pacer *Pacer, store *cache.Store, logger *slog.Logger, m *metrics.Metrics, contact string) *Client {
	return NewWithBaseURL(pacer, store, logger, m, contact, defaultBaseURL)
}

// NewWithBaseURL creates a client with a custom base URL (for testing).
func NewWithBaseURL(pacer *Pacer, store *cache.Store, logger *slog.Logger, m *metrics.Metrics, contact, baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		pacer:   pacer,
		store:   store,
		logger:  logger.With(slog.String("provider", "musicbrainz")),
		metrics: m,
		baseURL: strings.TrimRight(baseURL, "/"),
		contact: contact,
	}
}

// SearchRecordings searches for recordings matching the free-text query.
// The cache is consulted first; on a miss exactly one paced HTTP call is
// made. Failures return an empty slice and are not cached.
func (c *Client) SearchRecordings(ctx context.Context, query string, limit int) []Recording {
	key := query + "|" + strconv.Itoa(limit)
	if payload, ok := c.store.Get(key, cacheTagQuery); ok {
		if resp, err := decodePayload[recordingSearchResponse](payload); err == nil {
			return toRecordings(resp.Recordings)
		}
		c.logger.Warn("cached search payload unusable, refetching", slog.String("query", query))
	}

	params := url.Values{
		"query": {query},
		"fmt":   {"json"},
		"limit": {strconv.Itoa(limit)},
	}
	body, err := c.doRequest(ctx, c.baseURL+"/recording?"+params.Encode())
	if err != nil {
		c.logger.Warn("recording search failed",
			slog.String("query", query), slog.Any("error", err))
		return nil
	}

	var resp recordingSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Warn("parsing search response failed",
			slog.String("query", query), slog.Any("error", err))
		return nil
	}

	if payload, err := encodePayload(resp); err == nil {
		c.store.Set(key, cacheTagQuery, payload)
	}
	return toRecordings(resp.Recordings)
}

// GetRecordingByID fetches one recording by its MBID. A nil result covers
// both not-found and transient failure; only successful fetches are cached.
func (c *Client) GetRecordingByID(ctx context.Context, id string) *Recording {
	if payload, ok := c.store.Get(id, cacheTagMBID); ok {
		if rec, err := decodePayload[mbRecording](payload); err == nil {
			r := rec.toRecording()
			return &r
		}
		c.logger.Warn("cached recording payload unusable, refetching", slog.String("mbid", id))
	}

	params := url.Values{
		"inc": {"artist-credits"},
		"fmt": {"json"},
	}
	body, err := c.doRequest(ctx, c.baseURL+"/recording/"+url.PathEscape(id)+"?"+params.Encode())
	if err != nil {
		c.logger.Warn("recording fetch failed",
			slog.String("mbid", id), slog.Any("error", err))
		return nil
	}

	var rec mbRecording
	if err := json.Unmarshal(body, &rec); err != nil {
		c.logger.Warn("parsing recording response failed",
			slog.String("mbid", id), slog.Any("error", err))
		return nil
	}

	if payload, err := encodePayload(rec); err == nil {
		c.store.Set(id, cacheTagMBID, payload)
	}
	r := rec.toRecording()
	return &r
}

// GetBestMatch returns the top recording for a query, or nil when the search
// yields nothing. Confidence is the provider's 0-100 score divided by 100.
func (c *Client) GetBestMatch(ctx context.Context, query string) *BestMatch {
	recordings := c.SearchRecordings(ctx, query, 1)
	if len(recordings) == 0 {
		return nil
	}

	rec := recordings[0]
	return &BestMatch{
		ID:         rec.ID,
		Title:      rec.Title,
		Artist:     rec.Artist,
		Confidence: float64(rec.Score) / 100.0,
	}
}

// doRequest executes one paced HTTP GET with standard headers.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pacer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent(c.contact))
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting", slog.String("url", reqURL))

	resp, err := c.client.Do(req)
	if err != nil {
		c.countLookup("error")
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.countLookup("error")
		return nil, fmt.Errorf("unexpected HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		c.countLookup("error")
		return nil, err
	}
	c.countLookup("ok")
	return body, nil
}

func (c *Client) countLookup(outcome string) {
	if c.metrics != nil {
		c.metrics.LookupsTotal.WithLabelValues(outcome).Inc()
	}
}

// encodePayload converts a typed response into the cache's opaque payload form.
func encodePayload(v any) (cache.Payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var payload cache.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// decodePayload converts a cached payload back into a typed response.
func decodePayload[T any](payload cache.Payload) (*T, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func toRecordings(wire []mbRecording) []Recording {
	if len(wire) == 0 {
		return nil
	}
	recordings := make([]Recording, 0, len(wire))
	for i := range wire {
		recordings = append(recordings, wire[i].toRecording())
	}
	return recordings
}

func userAgent(contact string) string {
	ua := fmt.Sprintf("Tunegrid/%s (https://github.com/tunegrid/tunegrid)", version.Version)
	if contact != "" {
		ua += " " + contact
	}
	return ua
}
