package musicbrainz

import (
	"context"
	"strings"

	"github.com/tunegrid/tunegrid/internal/catalog"
)

// Catalog match scoring. Exact field equality outweighs substring
// containment; a candidate is accepted only when its score strictly exceeds
// acceptThreshold, which requires at least one exact field match.
const (
	exactFieldScore  = 5.0
	substrFieldScore = 3.0
	acceptThreshold  = 5.0

	catalogWeight  = 0.7
	externalWeight = 0.3
)

// CatalogMatch is an external best match tied back to a catalog track.
type CatalogMatch struct {
	Track      *catalog.Track
	Confidence float64
	ExternalID string
}

// MatchToCatalog resolves a query externally and searches the catalog for
// the closest track by title/artist similarity. The combined confidence
// blends the catalog similarity with the external relevance score, capped
// at 1.0. A nil result means no acceptable match.
func (c *Client) MatchToCatalog(ctx context.Context, query string, tracks []catalog.Track) *CatalogMatch {
	best := c.GetBestMatch(ctx, query)
	if best == nil {
		return nil
	}

	var bestTrack *catalog.Track
	bestScore := 0.0
	for i := range tracks {
		// Strict > keeps the first track on ties.
		if score := fieldSimilarity(&tracks[i], best.Title, best.Artist); score > bestScore {
			bestScore = score
			bestTrack = &tracks[i]
		}
	}

	if bestTrack == nil || bestScore <= acceptThreshold {
		return nil
	}

	confidence := (bestScore/10.0)*catalogWeight + best.Confidence*externalWeight
	if confidence > 1.0 {
		confidence = 1.0
	}

	return &CatalogMatch{
		Track:      bestTrack,
		Confidence: confidence,
		ExternalID: best.ID,
	}
}

// fieldSimilarity scores a track against an external title/artist pair:
// exact case-insensitive equality per field, else substring containment in
// either direction.
func fieldSimilarity(t *catalog.Track, title, artist string) float64 {
	score := 0.0
	score += similarity(strings.ToLower(t.Title), strings.ToLower(title))
	score += similarity(strings.ToLower(t.Artist), strings.ToLower(artist))
	return score
}

func similarity(a, b string) float64 {
	switch {
	case a == b:
		return exactFieldScore
	case strings.Contains(a, b) || strings.Contains(b, a):
		// Containment is deliberately unguarded for empty strings: an
		// external result with no artist credit still counts as a weak
		// artist match, so an exact title can clear the accept threshold.
		return substrFieldScore
	default:
		return 0
	}
}
