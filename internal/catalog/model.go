package catalog

import (
	"fmt"
	"strings"
)

// Clearance describes the licensing state of a track.
type Clearance string

// Known clearance states.
const (
	ClearanceCleared    Clearance = "cleared"
	ClearancePending    Clearance = "pending"
	ClearanceRestricted Clearance = "restricted"
	ClearanceUnknown    Clearance = "unknown"
)

// ParseClearance maps a raw string to a Clearance, defaulting to unknown.
func ParseClearance(s string) Clearance {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cleared":
		return ClearanceCleared
	case "pending":
		return ClearancePending
	case "restricted":
		return ClearanceRestricted
	default:
		return ClearanceUnknown
	}
}

// Track is a single catalog entry. Tracks are immutable once loaded; the
// catalog service replaces the whole snapshot on reload rather than mutating
// entries in place.
type Track struct {
	CanonicalID    string    `json:"canonical_id"`
	LegacyID       int       `json:"id,omitempty"`
	Title          string    `json:"title"`
	Artist         string    `json:"artist"`
	Album          string    `json:"album"`
	Duration       int       `json:"duration"`
	Genre          string    `json:"genre"`
	Mood           string    `json:"mood"`
	Tags           string    `json:"tags"`
	Year           int       `json:"year"`
	MBID           string    `json:"mbid,omitempty"`
	ISRC           string    `json:"isrc,omitempty"`
	SpotifyID      string    `json:"spotify_id,omitempty"`
	StemsAvailable bool      `json:"stems_available"`
	Clearance      Clearance `json:"clearance_status"`
	Energy         *float64  `json:"energy,omitempty"`
	Valence        *float64  `json:"valence,omitempty"`
}

// TagList parses the comma-separated tag field into trimmed, non-empty tokens.
func (t *Track) TagList() []string {
	if t.Tags == "" {
		return nil
	}
	parts := strings.Split(t.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// DeriveCanonicalID builds the canonical identifier for a track that only
// carries a legacy numeric ID.
func DeriveCanonicalID(legacyID int) string {
	return fmt.Sprintf("track_%04d", legacyID)
}
