package search

import (
	"testing"

	"github.com/tunegrid/tunegrid/internal/catalog"
)

func ptr(v float64) *float64 { return &v }

func sampleTracks() []catalog.Track {
	return []catalog.Track{
		{
			CanonicalID: "track_0001", LegacyID: 1,
			Title: "Bohemian Rhapsody", Artist: "Queen",
			Album: "A Night at the Opera", Duration: 354,
			Genre: "Rock", Mood: "Epic", Tags: "rock,classic,opera",
			Year: 1975, Energy: ptr(0.8), Valence: ptr(0.6),
			Clearance: catalog.ClearanceUnknown,
		},
		{
			CanonicalID: "track_0002", LegacyID: 2,
			Title: "Imagine", Artist: "John Lennon",
			Album: "Imagine", Duration: 183,
			Genre: "Pop", Mood: "Peaceful", Tags: "pop,peaceful,classic",
			Year: 1971, Energy: ptr(0.3), Valence: ptr(0.7),
			Clearance: catalog.ClearanceUnknown,
		},
		{
			CanonicalID: "track_0003", LegacyID: 3,
			Title: "Stairway to Heaven", Artist: "Led Zeppelin",
			Album: "Led Zeppelin IV", Duration: 482,
			Genre: "Rock", Mood: "Epic", Tags: "rock,classic,progressive",
			Year: 1971, Energy: ptr(0.7), Valence: ptr(0.5),
			StemsAvailable: true, Clearance: catalog.ClearanceCleared,
		},
	}
}

func TestSearchBasic(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{Text: "rock", Limit: 10})
	if len(results) == 0 {
		t.Fatal("expected results for query 'rock'")
	}
	for _, r := range results {
		if Normalize(r.Track.Genre) != "rock" && !containsTag(r.Track, "rock") {
			t.Errorf("track %s matched 'rock' without a rock genre or tag", r.Track.CanonicalID)
		}
	}
}

func containsTag(tr catalog.Track, tag string) bool {
	for _, tg := range tr.TagList() {
		if Normalize(tg) == tag {
			return true
		}
	}
	return false
}

func TestSearchDeterministic(t *testing.T) {
	tracks := sampleTracks()
	q := Query{Text: "rock", Limit: 10}

	first := Ranker{}.Search(tracks, q)
	second := Ranker{}.Search(tracks, q)

	if len(first) != len(second) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Track.CanonicalID != second[i].Track.CanonicalID {
			t.Errorf("result %d differs: %s vs %s",
				i, first[i].Track.CanonicalID, second[i].Track.CanonicalID)
		}
		if first[i].Score != second[i].Score {
			t.Errorf("score %d differs: %f vs %f", i, first[i].Score, second[i].Score)
		}
	}
}

func TestSearchTieBreakKeepsCatalogOrder(t *testing.T) {
	tracks := []catalog.Track{
		{CanonicalID: "a", Title: "Same Song", Artist: "X"},
		{CanonicalID: "b", Title: "Same Song", Artist: "Y"},
	}
	results := Ranker{}.Search(tracks, Query{Text: "Same Song", Limit: 10})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Track.CanonicalID != "a" || results[1].Track.CanonicalID != "b" {
		t.Errorf("tie broke catalog order: got %s, %s",
			results[0].Track.CanonicalID, results[1].Track.CanonicalID)
	}
}

func TestExactTitleBeatsSubstring(t *testing.T) {
	tracks := []catalog.Track{
		{CanonicalID: "sub", Title: "Imagine All The People", Artist: "X"},
		{CanonicalID: "exact", Title: "Imagine", Artist: "X"},
	}
	results := Ranker{}.Search(tracks, Query{Text: "Imagine", Limit: 10})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Track.CanonicalID != "exact" {
		t.Errorf("best = %s, want exact", results[0].Track.CanonicalID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("exact score %f not strictly above substring score %f",
			results[0].Score, results[1].Score)
	}
}

func TestFilterByMood(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{Text: "classic", Moods: []string{"Peaceful"}, Limit: 10})
	if len(results) == 0 {
		t.Fatal("expected peaceful results")
	}
	for _, r := range results {
		if Normalize(r.Track.Mood) != "peaceful" {
			t.Errorf("mood filter leaked track %s (mood %q)", r.Track.CanonicalID, r.Track.Mood)
		}
	}
}

func TestFilterByGenre(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{Text: "classic", Genres: []string{"Rock"}, Limit: 10})
	if len(results) == 0 {
		t.Fatal("expected rock results")
	}
	for _, r := range results {
		if Normalize(r.Track.Genre) != "rock" {
			t.Errorf("genre filter leaked track %s (genre %q)", r.Track.CanonicalID, r.Track.Genre)
		}
	}
}

func TestFilterByTags(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{Text: "classic", Tags: []string{"opera"}, Limit: 10})
	for _, r := range results {
		if !containsTag(r.Track, "opera") {
			t.Errorf("tag filter leaked track %s", r.Track.CanonicalID)
		}
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestFilterByEnergyRange(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{
		Text: "classic", MinEnergy: ptr(0.5), MaxEnergy: ptr(0.9), Limit: 10,
	})
	if len(results) == 0 {
		t.Fatal("expected results in energy range")
	}
	for _, r := range results {
		if r.Track.Energy == nil || *r.Track.Energy < 0.5 || *r.Track.Energy > 0.9 {
			t.Errorf("energy filter leaked track %s", r.Track.CanonicalID)
		}
	}
}

func TestFilterExcludesTracksWithoutEnergy(t *testing.T) {
	tracks := []catalog.Track{
		{CanonicalID: "no-energy", Title: "Classic Tune", Artist: "X", Tags: "classic"},
	}
	// Half-bounded range still excludes tracks lacking the attribute.
	results := Ranker{}.Search(tracks, Query{Text: "classic", MinEnergy: ptr(0.0), Limit: 10})
	if len(results) != 0 {
		t.Errorf("got %d results, want 0: missing energy must be excluded", len(results))
	}
}

func TestFilterInvertedRangeYieldsNothing(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{
		Text: "classic", MinEnergy: ptr(0.9), MaxEnergy: ptr(0.1), Limit: 10,
	})
	if len(results) != 0 {
		t.Errorf("min>max range returned %d results, want 0", len(results))
	}
}

func TestFilterStemsRequired(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{Text: "classic", StemsRequired: true, Limit: 10})
	for _, r := range results {
		if !r.Track.StemsAvailable {
			t.Errorf("stems filter leaked track %s", r.Track.CanonicalID)
		}
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestFilterClearanceRequired(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{Text: "classic", ClearanceRequired: true, Limit: 10})
	for _, r := range results {
		if r.Track.Clearance != catalog.ClearanceCleared {
			t.Errorf("clearance filter leaked track %s", r.Track.CanonicalID)
		}
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestCombinedFilters(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{
		Text: "rock", Genres: []string{"Rock"}, MinEnergy: ptr(0.6), Limit: 10,
	})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if Normalize(r.Track.Genre) != "rock" {
			t.Errorf("genre leaked: %s", r.Track.CanonicalID)
		}
		if r.Track.Energy == nil || *r.Track.Energy < 0.6 {
			t.Errorf("energy leaked: %s", r.Track.CanonicalID)
		}
	}
}

func TestSearchLimitTruncates(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{Text: "classic", Limit: 1})
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestSearchDropsZeroScores(t *testing.T) {
	results := Ranker{}.Search(sampleTracks(), Query{Text: "zzz_nonexistent_zzz", Limit: 10})
	if len(results) != 0 {
		t.Errorf("got %d results for nonsense query, want 0", len(results))
	}
}

func TestScorePenaltiesInDirectScoring(t *testing.T) {
	tr := catalog.Track{Title: "Imagine", Artist: "X", Clearance: catalog.ClearancePending}
	base := scoreTrack(&tr, Query{Text: "Imagine"})
	penalized := scoreTrack(&tr, Query{Text: "Imagine", StemsRequired: true, ClearanceRequired: true})
	if want := base - 10.0; penalized != want {
		t.Errorf("penalized score = %f, want %f", penalized, want)
	}
}

func TestScoreYearMatch(t *testing.T) {
	tr := catalog.Track{Title: "Some Song", Artist: "X", Year: 1975}
	with := scoreTrack(&tr, Query{Text: "1975"})
	if with < yearMatchBonus {
		t.Errorf("score %f missing year bonus", with)
	}
}
