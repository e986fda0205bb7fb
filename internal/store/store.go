// Package store persists the song collection as a single JSON document,
// matching the schema the frontend reads.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"songlog/internal/search"
)

// ErrNotFound is returned when a song id does not exist in the collection.
var ErrNotFound = errors.New("song not found")

// Song is one saved track in the collection.
type Song struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	AlbumArt   string `json:"albumArt"`
	YoutubeURL string `json:"youtubeUrl"`
	AddedAt    string `json:"addedAt"` // RFC 3339 UTC
}

// Patch holds the fields of a partial song update. Nil fields are left
// unchanged.
type Patch struct {
	Title      *string `json:"title"`
	Artist     *string `json:"artist"`
	Album      *string `json:"album"`
	AlbumArt   *string `json:"albumArt"`
	YoutubeURL *string `json:"youtubeUrl"`
	AddedAt    *string `json:"addedAt"`
}

// collection is the on-disk document shape.
type collection struct {
	Songs []Song `json:"songs"`
}

// Store owns the song collection file. All mutations go through the
// store; it is the sole writer of the file.
type Store struct {
	path  string
	mu    sync.Mutex
	songs []Song
}

// Open loads the collection at path, starting empty if the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read song collection %s: %w", path, err)
	}

	var col collection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("failed to parse song collection %s: %w", path, err)
	}
	s.songs = col.Songs
	return s, nil
}

// List returns a copy of every song in the collection.
func (s *Store) List() []Song {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Song, len(s.songs))
	copy(out, s.songs)
	return out
}

// Get returns the song with the given id.
func (s *Store) Get(id string) (Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, song := range s.songs {
		if song.ID == id {
			return song, nil
		}
	}
	return Song{}, ErrNotFound
}

// Append adds a song to the collection, filling in the id and added-at
// timestamp when absent, and persists the file.
func (s *Store) Append(song Song) (Song, error) {
	if song.ID == "" {
		song.ID = uuid.NewString()
	}
	if song.AddedAt == "" {
		song.AddedAt = time.Now().UTC().Format(time.RFC3339)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.songs = append(s.songs, song)
	if err := s.save(); err != nil {
		s.songs = s.songs[:len(s.songs)-1]
		return Song{}, err
	}
	return song, nil
}

// Update applies a partial update to the song with the given id.
func (s *Store) Update(id string, patch Patch) (Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.songs {
		if s.songs[i].ID != id {
			continue
		}
		prev := s.songs[i]
		applyPatch(&s.songs[i], patch)
		if err := s.save(); err != nil {
			s.songs[i] = prev
			return Song{}, err
		}
		return s.songs[i], nil
	}
	return Song{}, ErrNotFound
}

// Delete removes the song with the given id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.songs {
		if s.songs[i].ID != id {
			continue
		}
		prev := s.songs
		s.songs = append(append([]Song{}, s.songs[:i]...), s.songs[i+1:]...)
		if err := s.save(); err != nil {
			s.songs = prev
			return err
		}
		return nil
	}
	return ErrNotFound
}

// TrimAll strips leading and trailing whitespace from every song's
// title, artist and album, persisting the result. Returns the number of
// songs that changed.
func (s *Store) TrimAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.songs {
		trimmed := s.songs[i]
		trimmed.Title = strings.TrimSpace(trimmed.Title)
		trimmed.Artist = strings.TrimSpace(trimmed.Artist)
		trimmed.Album = strings.TrimSpace(trimmed.Album)
		if trimmed != s.songs[i] {
			s.songs[i] = trimmed
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	if err := s.save(); err != nil {
		return 0, err
	}
	return changed, nil
}

// save writes the collection atomically. Caller must hold s.mu.
func (s *Store) save() error {
	col := collection{Songs: s.songs}
	if col.Songs == nil {
		col.Songs = []Song{}
	}

	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal song collection: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".songs-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write song collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace song collection: %w", err)
	}
	return nil
}

func applyPatch(song *Song, patch Patch) {
	if patch.Title != nil {
		song.Title = *patch.Title
	}
	if patch.Artist != nil {
		song.Artist = *patch.Artist
	}
	if patch.Album != nil {
		song.Album = *patch.Album
	}
	if patch.AlbumArt != nil {
		song.AlbumArt = *patch.AlbumArt
	}
	if patch.YoutubeURL != nil {
		song.YoutubeURL = *patch.YoutubeURL
	}
	if patch.AddedAt != nil {
		song.AddedAt = *patch.AddedAt
	}
}

// FromCandidate hydrates a new Song from a search candidate. The
// playback link points at a YouTube search for the track since
// candidates carry no direct video id.
func FromCandidate(c search.Candidate) Song {
	q := url.QueryEscape(c.Title + " " + c.ArtistName)
	return Song{
		Title:      c.Title,
		Artist:     c.ArtistName,
		Album:      c.AlbumTitle,
		AlbumArt:   c.CoverArtURL,
		YoutubeURL: "https://www.youtube.com/results?search_query=" + q,
	}
}

// GroupByMonth buckets songs by the YYYY-MM portion of their added-at
// timestamp.
func GroupByMonth(songs []Song) map[string][]Song {
	grouped := make(map[string][]Song)
	for _, song := range songs {
		key := song.AddedAt
		if len(key) >= 7 {
			key = key[:7]
		}
		grouped[key] = append(grouped[key], song)
	}
	return grouped
}

// GroupByAlbum buckets songs by artist and album.
func GroupByAlbum(songs []Song) map[string][]Song {
	grouped := make(map[string][]Song)
	for _, song := range songs {
		key := song.Artist + "___" + song.Album
		grouped[key] = append(grouped[key], song)
	}
	return grouped
}
