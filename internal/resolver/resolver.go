// Package resolver turns a free-text music query into a catalog entry.
// The pipeline tries the internal ranker first and consults the external
// lookup only when internal confidence falls below the medium threshold.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/tunegrid/tunegrid/internal/catalog"
	"github.com/tunegrid/tunegrid/internal/metrics"
	"github.com/tunegrid/tunegrid/internal/musicbrainz"
	"github.com/tunegrid/tunegrid/internal/search"
)

// Confidence thresholds. Only Medium gates the pipeline's branching; High
// and Low are published for downstream consumers.
const (
	HighConfidence   = 0.8
	MediumConfidence = 0.5
	LowConfidence    = 0.3
)

// internalLimit is the candidate count requested from the ranker per resolve.
const internalLimit = 5

// confidenceDivisor normalizes raw ranker scores to [0,1]; a score of 12+
// maps to full confidence.
const confidenceDivisor = 12.0

// Source identifies which subsystem produced the accepted match.
type Source string

// Known result sources.
const (
	SourceInternal    Source = "internal"
	SourceMusicBrainz Source = "musicbrainz"
	SourceNone        Source = "none"
)

// Result is the outcome of resolving one query.
type Result struct {
	Query      string          `json:"query"`
	BestMatch  *catalog.Track  `json:"best_match"`
	Candidates []catalog.Track `json:"candidates"`
	Confidence float64         `json:"confidence"`
	Source     Source          `json:"source"`

	// Legacy fields mirrored from BestMatch for older consumers.
	CanonicalID   string         `json:"canonical_id,omitempty"`
	MusicBrainzID string         `json:"musicbrainz_id,omitempty"`
	MatchedTrack  *catalog.Track `json:"matched_track,omitempty"`
}

// ExternalMatcher is the external lookup collaborator. A nil matcher
// disables the external step entirely.
type ExternalMatcher interface {
	MatchToCatalog(ctx context.Context, query string, tracks []catalog.Track) *musicbrainz.CatalogMatch
}

// Service orchestrates the resolution pipeline. It holds no per-query state
// and is safe for concurrent use.
type Service struct {
	catalog  *catalog.Service
	ranker   search.Ranker
	external ExternalMatcher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewService creates a resolver. external may be nil when the lookup is
// not configured.
func NewService(cat *catalog.Service, external ExternalMatcher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		catalog:  cat,
		external: external,
		logger:   logger.With(slog.String("component", "resolver")),
		metrics:  m,
	}
}

// Resolve runs the pipeline for one query.
func (s *Service) Resolve(ctx context.Context, query string) Result {
	s.logger.Info("resolving query", slog.String("query", query))
	tracks := s.catalog.Tracks()

	best, candidates, confidence := s.internalMatch(tracks, query)

	if confidence >= MediumConfidence {
		s.logger.Info("using internal match",
			slog.String("query", query),
			slog.Float64("confidence", confidence))
		return s.finish(internalResult(query, best, candidates, confidence))
	}

	if s.external != nil {
		s.logger.Info("internal confidence below threshold, trying external lookup",
			slog.String("query", query),
			slog.Float64("confidence", confidence))

		if match := s.external.MatchToCatalog(ctx, query, tracks); match != nil && match.Confidence > confidence {
			s.logger.Info("using external match",
				slog.String("query", query),
				slog.String("title", match.Track.Title),
				slog.Float64("confidence", match.Confidence))
			return s.finish(Result{
				Query:     query,
				BestMatch: match.Track,
				// The external lookup is single-valued; keep the
				// internal candidate list.
				Candidates:    candidates,
				Confidence:    match.Confidence,
				Source:        SourceMusicBrainz,
				CanonicalID:   match.Track.CanonicalID,
				MusicBrainzID: match.ExternalID,
				MatchedTrack:  match.Track,
			})
		}
	}

	if best != nil {
		s.logger.Info("using internal match as fallback",
			slog.String("query", query),
			slog.Float64("confidence", confidence))
		return s.finish(internalResult(query, best, candidates, confidence))
	}

	s.logger.Warn("no match found", slog.String("query", query))
	return s.finish(Result{
		Query:      query,
		Candidates: []catalog.Track{},
		Confidence: 0.0,
		Source:     SourceNone,
	})
}

// internalMatch runs the ranker with a default query and normalizes the top
// score to a confidence.
func (s *Service) internalMatch(tracks []catalog.Track, query string) (*catalog.Track, []catalog.Track, float64) {
	start := time.Now()
	results := s.ranker.Search(tracks, search.Query{Text: query, Limit: internalLimit})
	if s.metrics != nil {
		s.metrics.SearchLatency.Observe(time.Since(start).Seconds())
		s.metrics.SearchResultsCount.Observe(float64(len(results)))
	}

	if len(results) == 0 {
		return nil, nil, 0.0
	}

	best := results[0].Track
	candidates := make([]catalog.Track, 0, len(results)-1)
	for _, r := range results[1:] {
		candidates = append(candidates, r.Track)
	}

	confidence := results[0].Score / confidenceDivisor
	if confidence > 1.0 {
		confidence = 1.0
	}
	return &best, candidates, confidence
}

func internalResult(query string, best *catalog.Track, candidates []catalog.Track, confidence float64) Result {
	if candidates == nil {
		candidates = []catalog.Track{}
	}
	return Result{
		Query:         query,
		BestMatch:     best,
		Candidates:    candidates,
		Confidence:    confidence,
		Source:        SourceInternal,
		CanonicalID:   best.CanonicalID,
		MusicBrainzID: best.MBID,
		MatchedTrack:  best,
	}
}

func (s *Service) finish(r Result) Result {
	if s.metrics != nil {
		s.metrics.ResolveTotal.WithLabelValues(string(r.Source)).Inc()
	}
	return r
}
