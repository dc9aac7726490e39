package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tunegrid/tunegrid/internal/catalog"
)

// Relevance weights for the ranking algorithm. Exact phrase matches dominate,
// then substring containment, then per-token overlap by field.
const (
	exactTitleBonus  = 10.0
	exactArtistBonus = 8.0

	substrTitleBonus  = 3.0
	substrArtistBonus = 2.5

	titleTokenWeight  = 1.5
	artistTokenWeight = 1.2
	albumTokenWeight  = 0.5
	tagTokenWeight    = 2.0
	moodTokenWeight   = 1.0
	genreTokenWeight  = 1.0

	moodSubstrBonus  = 1.5
	genreSubstrBonus = 1.5
	yearMatchBonus   = 1.0

	filterMatchBonus     = 2.0
	tagFilterOverlapMult = 1.5

	stemsMissingPenalty        = -5.0
	clearanceNotClearedPenalty = -5.0
)

// Ranker scores and filters catalog tracks against a structured query.
// It is stateless and safe for concurrent use.
type Ranker struct{}

// Search filters tracks by the query's constraints, scores the survivors,
// and returns them in descending score order. Ties keep catalog order
// (stable sort) so identical inputs always produce identical output.
// Tracks scoring zero or below are dropped.
func (Ranker) Search(tracks []catalog.Track, q Query) []ScoredTrack {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	f := newFilter(q)
	scored := make([]ScoredTrack, 0, limit)
	for i := range tracks {
		t := &tracks[i]
		if !f.accept(t) {
			continue
		}
		if score := scoreTrack(t, q); score > 0 {
			scored = append(scored, ScoredTrack{Track: *t, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// filter holds the query's constraints in normalized form.
type filter struct {
	moods  map[string]struct{}
	genres map[string]struct{}
	tags   map[string]struct{}

	minEnergy, maxEnergy   *float64
	minValence, maxValence *float64

	stemsRequired     bool
	clearanceRequired bool
}

func newFilter(q Query) filter {
	return filter{
		moods:             normalizeSet(q.Moods),
		genres:            normalizeSet(q.Genres),
		tags:              normalizeSet(q.Tags),
		minEnergy:         q.MinEnergy,
		maxEnergy:         q.MaxEnergy,
		minValence:        q.MinValence,
		maxValence:        q.MaxValence,
		stemsRequired:     q.StemsRequired,
		clearanceRequired: q.ClearanceRequired,
	}
}

func normalizeSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[Normalize(v)] = struct{}{}
	}
	return set
}

// accept reports whether the track passes every supplied constraint.
func (f *filter) accept(t *catalog.Track) bool {
	if f.moods != nil {
		if _, ok := f.moods[Normalize(t.Mood)]; !ok {
			return false
		}
	}
	if f.genres != nil {
		if _, ok := f.genres[Normalize(t.Genre)]; !ok {
			return false
		}
	}
	if f.tags != nil && !anyTagIn(t, f.tags) {
		return false
	}
	// A track lacking energy/valence data is excluded whenever the
	// corresponding range filter is present, even half-bounded.
	if !inRange(t.Energy, f.minEnergy, f.maxEnergy) {
		return false
	}
	if !inRange(t.Valence, f.minValence, f.maxValence) {
		return false
	}
	if f.stemsRequired && !t.StemsAvailable {
		return false
	}
	if f.clearanceRequired && t.Clearance != catalog.ClearanceCleared {
		return false
	}
	return true
}

func anyTagIn(t *catalog.Track, set map[string]struct{}) bool {
	for _, tag := range t.TagList() {
		if _, ok := set[Normalize(tag)]; ok {
			return true
		}
	}
	return false
}

func inRange(v, min, max *float64) bool {
	if min == nil && max == nil {
		return true
	}
	if v == nil {
		return false
	}
	if min != nil && *v < *min {
		return false
	}
	if max != nil && *v > *max {
		return false
	}
	return true
}

// scoreTrack computes the relevance score of a single track for a query.
// Exposed separately from filtering so callers that score directly still see
// the stems/clearance penalties, which the filter step normally makes moot.
func scoreTrack(t *catalog.Track, q Query) float64 {
	nq := Normalize(q.Text)
	qTokens := Tokenize(q.Text)

	nTitle := Normalize(t.Title)
	nArtist := Normalize(t.Artist)
	nMood := Normalize(t.Mood)
	nGenre := Normalize(t.Genre)

	score := 0.0

	if nq == nTitle {
		score += exactTitleBonus
	}
	if nq == nArtist {
		score += exactArtistBonus
	}
	if nq != "" {
		if strings.Contains(nTitle, nq) {
			score += substrTitleBonus
		}
		if strings.Contains(nArtist, nq) {
			score += substrArtistBonus
		}
		if strings.Contains(nMood, nq) {
			score += moodSubstrBonus
		}
		if strings.Contains(nGenre, nq) {
			score += genreSubstrBonus
		}
	}

	score += float64(overlap(qTokens, Tokenize(t.Title))) * titleTokenWeight
	score += float64(overlap(qTokens, Tokenize(t.Artist))) * artistTokenWeight
	score += float64(overlap(qTokens, Tokenize(t.Album))) * albumTokenWeight
	score += float64(overlap(qTokens, Tokenize(t.Tags))) * tagTokenWeight
	score += float64(overlap(qTokens, Tokenize(t.Mood))) * moodTokenWeight
	score += float64(overlap(qTokens, Tokenize(t.Genre))) * genreTokenWeight

	if q.Text != "" && strings.Contains(strconv.Itoa(t.Year), q.Text) {
		score += yearMatchBonus
	}

	// Bonuses for matching explicitly requested filter values.
	if moods := normalizeSet(q.Moods); moods != nil {
		if _, ok := moods[nMood]; ok {
			score += filterMatchBonus
		}
	}
	if genres := normalizeSet(q.Genres); genres != nil {
		if _, ok := genres[nGenre]; ok {
			score += filterMatchBonus
		}
	}
	if tags := normalizeSet(q.Tags); tags != nil {
		n := 0
		for _, tag := range t.TagList() {
			if _, ok := tags[Normalize(tag)]; ok {
				n++
			}
		}
		score += float64(n) * tagFilterOverlapMult
	}

	if q.StemsRequired && !t.StemsAvailable {
		score += stemsMissingPenalty
	}
	if q.ClearanceRequired && t.Clearance != catalog.ClearanceCleared {
		score += clearanceNotClearedPenalty
	}

	return score
}
