package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"songlog/internal/search"
)

const (
	defaultAPIURL    = "https://musicbrainz.org/ws/2"
	coverArtBaseURL  = "https://coverartarchive.org"
	coverArtSize     = 250
	defaultUserAgent = "songlog/1.0"
)

// Client is a MusicBrainz Web API search client that implements
// search.Searcher. It performs no retries and no fallback: transport
// failures and non-2xx responses propagate to the caller.
type Client struct {
	httpClient  *http.Client
	apiURL      string
	userAgent   string
	mu          sync.Mutex
	lastRequest time.Time
}

// ProviderError is a non-success HTTP response from the MusicBrainz API.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("musicbrainz returned %d: %s", e.Status, e.Body)
}

// New creates a new MusicBrainz client. The userAgent identifies this
// application per the MusicBrainz access policy; pass "" for the default.
func New(userAgent string) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     defaultAPIURL,
		userAgent:  userAgent,
	}
}

func (c *Client) Name() string { return "musicbrainz" }

// Search issues one query against the sub-resource selected by req.Kind
// and normalizes the response into candidates. An empty request yields an
// empty query string, which is still sent; the provider's behavior for it
// is passed through, not special-cased.
func (c *Client) Search(ctx context.Context, req search.Request) ([]search.Candidate, error) {
	kind := req.Kind
	if kind == "" {
		kind = search.KindRecording
	}
	limit := req.Limit
	if limit <= 0 {
		limit = search.DefaultLimit
	}

	q := req.RawQuery
	if q == "" {
		q = buildQuery(req)
	}

	c.rateLimit()

	reqURL := fmt.Sprintf("%s/%s?query=%s&fmt=json&limit=%d", c.apiURL, kind, url.QueryEscape(q), limit)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create musicbrainz request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &ProviderError{Status: resp.StatusCode, Body: string(body)}
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode musicbrainz response: %w", err)
	}

	switch kind {
	case search.KindArtist:
		return artistCandidates(searchResp.Artists), nil
	case search.KindRelease:
		return releaseCandidates(searchResp.Releases), nil
	default:
		return recordingCandidates(searchResp.Recordings), nil
	}
}

// rateLimit enforces MusicBrainz's 1 request/second limit.
func (c *Client) rateLimit() {
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	c.mu.Unlock()

	if elapsed < time.Second {
		time.Sleep(time.Second - elapsed)
	}

	c.mu.Lock()
	c.lastRequest = time.Now()
	c.mu.Unlock()
}

// buildQuery AND-joins one field-scoped Lucene term per non-empty field,
// artist first, then recording title, then release title.
func buildQuery(req search.Request) string {
	var parts []string
	if req.Artist != "" {
		parts = append(parts, fmt.Sprintf("artist:%q", req.Artist))
	}
	if req.Title != "" {
		parts = append(parts, fmt.Sprintf("recording:%q", req.Title))
	}
	if req.Album != "" {
		parts = append(parts, fmt.Sprintf("release:%q", req.Album))
	}
	return strings.Join(parts, " AND ")
}

// CoverArtURL maps a release id onto its Cover Art Archive front image.
// The URL is constructed, never fetched here, so normalization stays one
// request per search rather than one per result.
func CoverArtURL(releaseID string) string {
	if releaseID == "" {
		return search.PlaceholderArt
	}
	return fmt.Sprintf("%s/release/%s/front-%d", coverArtBaseURL, releaseID, coverArtSize)
}

func recordingCandidates(recordings []recording) []search.Candidate {
	candidates := make([]search.Candidate, 0, len(recordings))
	for _, rec := range recordings {
		cand := search.Candidate{
			ID:          rec.ID,
			Title:       rec.Title,
			ArtistName:  search.UnknownArtist,
			AlbumTitle:  search.UnknownAlbum,
			CoverArtURL: search.PlaceholderArt,
		}
		if len(rec.ArtistCredit) > 0 && rec.ArtistCredit[0].Artist.Name != "" {
			cand.ArtistName = rec.ArtistCredit[0].Artist.Name
		}
		if len(rec.Releases) > 0 {
			rel := rec.Releases[0]
			if rel.Title != "" {
				cand.AlbumTitle = rel.Title
			}
			cand.CoverArtURL = CoverArtURL(rel.ID)
		}
		candidates = append(candidates, cand)
	}
	return candidates
}

// Artist and release results pass through with no shaping beyond the
// identity mapping into the candidate type.

func artistCandidates(artists []artistInfo) []search.Candidate {
	candidates := make([]search.Candidate, 0, len(artists))
	for _, a := range artists {
		candidates = append(candidates, search.Candidate{ID: a.ID, Title: a.Name})
	}
	return candidates
}

func releaseCandidates(releases []release) []search.Candidate {
	candidates := make([]search.Candidate, 0, len(releases))
	for _, rel := range releases {
		candidates = append(candidates, search.Candidate{ID: rel.ID, Title: rel.Title})
	}
	return candidates
}

// MusicBrainz API response types

type searchResponse struct {
	Recordings []recording  `json:"recordings"`
	Releases   []release    `json:"releases"`
	Artists    []artistInfo `json:"artists"`
}

type recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Releases     []release      `json:"releases"`
}

type artistCredit struct {
	Artist artistInfo `json:"artist"`
}

type artistInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type release struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
