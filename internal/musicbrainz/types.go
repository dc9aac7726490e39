package musicbrainz

// MusicBrainz API response types. These mirror the recording search schema
// defensively: every field is optional at the wire level and converted at
// this boundary before entering core logic.

// recordingSearchResponse is the top-level response from the recording
// search endpoint.
type recordingSearchResponse struct {
	Created    string        `json:"created"`
	Count      int           `json:"count"`
	Offset     int           `json:"offset"`
	Recordings []mbRecording `json:"recordings"`
}

// mbRecording represents a MusicBrainz recording entity.
type mbRecording struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Score        int              `json:"score"`
	Length       int              `json:"length"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
}

// mbArtistCredit is one entry of a recording's ordered artist credit list.
type mbArtistCredit struct {
	Name   string    `json:"name"`
	Artist *mbArtist `json:"artist,omitempty"`
}

// mbArtist is the credited artist entity.
type mbArtist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SortName string `json:"sort-name"`
}

// Recording is the validated, strongly-typed form of an external recording
// used by the rest of the pipeline.
type Recording struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Score  int    `json:"score"`
}

// toRecording converts a wire recording, taking the display name of the
// first credited artist when present.
func (r *mbRecording) toRecording() Recording {
	rec := Recording{
		ID:    r.ID,
		Title: r.Title,
		Score: r.Score,
	}
	if len(r.ArtistCredit) > 0 {
		credit := r.ArtistCredit[0]
		if credit.Artist != nil && credit.Artist.Name != "" {
			rec.Artist = credit.Artist.Name
		} else {
			rec.Artist = credit.Name
		}
	}
	return rec
}

// BestMatch is the top external candidate for a query, with the provider's
// 0-100 relevance score normalized to a [0,1] confidence.
type BestMatch struct {
	ID         string
	Title      string
	Artist     string
	Confidence float64
}
