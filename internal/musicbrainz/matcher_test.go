package musicbrainz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/tunegrid/tunegrid/internal/catalog"
)

// respondWith builds a handler returning one recording with the given
// title, artist, and relevance score.
func respondWith(title, artist string, score int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := fmt.Sprintf(`{
			"count": 1,
			"recordings": [{
				"id": "ext-1",
				"title": %q,
				"score": %d,
				"artist-credit": [{"name": %q}]
			}]
		}`, title, score, artist)
		io.WriteString(w, body) //nolint:errcheck
	})
}

func matchTracks() []catalog.Track {
	return []catalog.Track{
		{CanonicalID: "track_0001", Title: "Bohemian Rhapsody", Artist: "Queen"},
		{CanonicalID: "track_0002", Title: "Imagine", Artist: "John Lennon"},
		{CanonicalID: "track_0003", Title: "Imagine", Artist: "A Perfect Circle"},
	}
}

func TestMatchToCatalogExactTitleAndArtist(t *testing.T) {
	client, _ := newClient(t, respondWith("Bohemian Rhapsody", "Queen", 100))

	match := client.MatchToCatalog(context.Background(), "bohemian rhapsody", matchTracks())
	if match == nil {
		t.Fatal("got nil match")
	}
	if match.Track.CanonicalID != "track_0001" {
		t.Errorf("matched %s, want track_0001", match.Track.CanonicalID)
	}
	if match.ExternalID != "ext-1" {
		t.Errorf("ExternalID = %q", match.ExternalID)
	}
	// Both fields exact: (10/10)*0.7 + 1.0*0.3 = 1.0.
	if match.Confidence != 1.0 {
		t.Errorf("Confidence = %f, want 1.0", match.Confidence)
	}
}

func TestMatchToCatalogExactTitleOnlyClearsThreshold(t *testing.T) {
	// No artist credit from the provider. The empty artist still counts as a
	// weak substring match, so exact title (5) + substring artist (3) > 5.
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"count":1,"recordings":[{"id":"ext-1","title":"Imagine","score":80}]}`) //nolint:errcheck
	}))

	match := client.MatchToCatalog(context.Background(), "imagine", matchTracks())
	if match == nil {
		t.Fatal("got nil match")
	}
	// Ties on score keep the first catalog track.
	if match.Track.CanonicalID != "track_0002" {
		t.Errorf("matched %s, want track_0002", match.Track.CanonicalID)
	}
	// (8/10)*0.7 + 0.8*0.3 = 0.8.
	if got, want := match.Confidence, 0.8; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Confidence = %f, want %f", got, want)
	}
}

func TestMatchToCatalogRejectsBelowThreshold(t *testing.T) {
	// Substring matches on both fields total 6 only when both actually
	// contain each other; here neither field relates, so score is 0.
	client, _ := newClient(t, respondWith("Stairway to Heaven", "Led Zeppelin", 100))

	if match := client.MatchToCatalog(context.Background(), "stairway", matchTracks()); match != nil {
		t.Errorf("got %+v, want nil", match)
	}
}

func TestMatchToCatalogNoExternalResult(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"count":0,"recordings":[]}`) //nolint:errcheck
	}))

	if match := client.MatchToCatalog(context.Background(), "anything", matchTracks()); match != nil {
		t.Errorf("got %+v, want nil", match)
	}
}

func TestMatchToCatalogEmptyCatalog(t *testing.T) {
	client, _ := newClient(t, respondWith("Imagine", "John Lennon", 100))

	if match := client.MatchToCatalog(context.Background(), "imagine", nil); match != nil {
		t.Errorf("got %+v, want nil", match)
	}
}

func TestFieldSimilarity(t *testing.T) {
	track := catalog.Track{Title: "Bohemian Rhapsody", Artist: "Queen"}

	tests := []struct {
		name   string
		title  string
		artist string
		want   float64
	}{
		{"both exact", "Bohemian Rhapsody", "Queen", 10},
		{"case insensitive", "bohemian rhapsody", "QUEEN", 10},
		{"title substring", "Rhapsody", "Queen", 8},
		{"artist only", "Something Else", "Queen", 5},
		{"no relation", "Yesterday", "The Beatles", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fieldSimilarity(&track, tt.title, tt.artist); got != tt.want {
				t.Errorf("fieldSimilarity(%q, %q) = %f, want %f", tt.title, tt.artist, got, tt.want)
			}
		})
	}
}
