package search

import "github.com/tunegrid/tunegrid/internal/catalog"

// Limit bounds for search queries.
const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 10
)

// Query is a structured search request. Filter fields are optional; a nil
// or empty field places no constraint on results.
type Query struct {
	Text  string `json:"query"`
	Limit int    `json:"limit"`

	Moods  []string `json:"moods,omitempty"`
	Genres []string `json:"genres,omitempty"`
	Tags   []string `json:"tags,omitempty"`

	MinEnergy  *float64 `json:"min_energy,omitempty"`
	MaxEnergy  *float64 `json:"max_energy,omitempty"`
	MinValence *float64 `json:"min_valence,omitempty"`
	MaxValence *float64 `json:"max_valence,omitempty"`

	StemsRequired     bool `json:"stems_required,omitempty"`
	ClearanceRequired bool `json:"clearance_required,omitempty"`
}

// ScoredTrack pairs a catalog track with its relevance score.
type ScoredTrack struct {
	Track catalog.Track `json:"track"`
	Score float64       `json:"score"`
}
