package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// RowDiagnostic records a non-fatal problem encountered while parsing a
// single catalog row. Rows with diagnostics may still load; the diagnostic
// explains which optional fields were discarded.
type RowDiagnostic struct {
	Line    int
	Field   string
	Message string
}

func (d RowDiagnostic) String() string {
	return fmt.Sprintf("line %d: field %q: %s", d.Line, d.Field, d.Message)
}

// LoadResult is the outcome of parsing a catalog file.
type LoadResult struct {
	Tracks      []Track
	Skipped     int
	Diagnostics []RowDiagnostic
}

// LoadCSV reads tracks from a CSV catalog file. The first row is a header;
// columns are matched by name so legacy and canonical exports both load.
// A row missing a mandatory field (title or artist, plus one of
// canonical/legacy ID) is skipped with a diagnostic. Malformed optional
// fields degrade to their zero value with a diagnostic, never failing the row.
func LoadCSV(path string) (*LoadResult, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close() //nolint:errcheck

	return parseCSV(f)
}

func parseCSV(r io.Reader) (*LoadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	res := &LoadResult{}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			res.Skipped++
			res.Diagnostics = append(res.Diagnostics, RowDiagnostic{
				Line: line, Field: "-", Message: err.Error(),
			})
			continue
		}

		row := rowReader{cols: cols, record: record, line: line, result: res}
		track, ok := row.parse()
		if !ok {
			res.Skipped++
			continue
		}
		res.Tracks = append(res.Tracks, track)
	}

	return res, nil
}

// rowReader extracts typed fields from one CSV record, accumulating
// diagnostics for anything malformed.
type rowReader struct {
	cols   map[string]int
	record []string
	line   int
	result *LoadResult
}

func (r *rowReader) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r *rowReader) optInt(name string) int {
	raw := r.str(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.diag(name, "not an integer, ignored")
		return 0
	}
	return n
}

func (r *rowReader) optBool(name string) bool {
	switch strings.ToLower(r.str(name)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// optUnitFloat parses an optional float constrained to [0,1]. Out-of-range
// or malformed values are dropped with a diagnostic.
func (r *rowReader) optUnitFloat(name string) *float64 {
	raw := r.str(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.diag(name, "not a number, ignored")
		return nil
	}
	if v < 0 || v > 1 {
		r.diag(name, "outside [0,1], ignored")
		return nil
	}
	return &v
}

func (r *rowReader) diag(field, msg string) {
	r.result.Diagnostics = append(r.result.Diagnostics, RowDiagnostic{
		Line: r.line, Field: field, Message: msg,
	})
}

func (r *rowReader) parse() (Track, bool) {
	t := Track{
		CanonicalID:    r.str("buffet_track_id"),
		LegacyID:       r.optInt("id"),
		Title:          r.str("title"),
		Artist:         r.str("artist"),
		Album:          r.str("album"),
		Duration:       r.optInt("duration"),
		Genre:          r.str("genre"),
		Mood:           r.str("mood"),
		Tags:           r.str("tags"),
		Year:           r.optInt("year"),
		MBID:           r.str("mbid"),
		ISRC:           r.str("isrc"),
		SpotifyID:      r.str("spotify_id"),
		StemsAvailable: r.optBool("stems_available"),
		Clearance:      ParseClearance(r.str("clearance_status")),
		Energy:         r.optUnitFloat("energy"),
		Valence:        r.optUnitFloat("valence"),
	}

	if t.Title == "" || t.Artist == "" {
		r.diag("title/artist", "mandatory field missing, row skipped")
		return Track{}, false
	}
	if t.CanonicalID == "" {
		if t.LegacyID == 0 {
			r.diag("buffet_track_id", "no canonical or legacy ID, row skipped")
			return Track{}, false
		}
		t.CanonicalID = DeriveCanonicalID(t.LegacyID)
	}
	if t.Duration < 0 {
		r.diag("duration", "negative, reset to 0")
		t.Duration = 0
	}

	return t, true
}

// LogDiagnostics emits one warning per diagnostic.
func (res *LoadResult) LogDiagnostics(logger *slog.Logger) {
	for _, d := range res.Diagnostics {
		logger.Warn("catalog row issue",
			slog.Int("line", d.Line),
			slog.String("field", d.Field),
			slog.String("message", d.Message))
	}
}
