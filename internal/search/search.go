package search

import "context"

// Kind selects which provider sub-resource a search queries.
type Kind string

const (
	KindRecording Kind = "recording"
	KindRelease   Kind = "release"
	KindArtist    Kind = "artist"
)

// DefaultLimit caps the number of results requested from the provider
// when a request does not specify its own limit.
const DefaultLimit = 25

// Sentinels substituted when a recording result is missing nested data,
// so the boundary to the presentation layer never carries empty strings.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// PlaceholderArt is the local image path used when no release could be
// resolved for a recording. It is always renderable, never absent.
const PlaceholderArt = "/default-album-art.jpg"

// Request describes one provider search.
//
// When RawQuery is set it is sent verbatim; otherwise the query is built
// from the Artist/Title/Album fields. An entirely empty request still
// produces one provider call with an empty query string.
type Request struct {
	Kind     Kind
	RawQuery string
	Title    string
	Artist   string
	Album    string
	Limit    int
}

// Candidate is a normalized, provider-agnostic search result.
// Artist and release searches populate only ID and Title.
type Candidate struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ArtistName  string `json:"artist,omitempty"`
	AlbumTitle  string `json:"album,omitempty"`
	CoverArtURL string `json:"coverArt,omitempty"`
}

// Searcher is the interface metadata providers implement.
type Searcher interface {
	Name() string
	Search(ctx context.Context, req Request) ([]Candidate, error)
}

// ParseKind maps a user-supplied kind string onto a Kind, defaulting to
// recording for empty input. Unknown kinds return false.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case "":
		return KindRecording, true
	case KindRecording, KindRelease, KindArtist:
		return Kind(s), true
	}
	return "", false
}
