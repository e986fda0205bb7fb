// Package artcache mirrors remote cover art into a local directory so
// the frontend can serve images without hitting the archive per view.
package artcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"songlog/internal/store"
)

var invalidChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)

// Cache downloads cover art images for songs into a directory, one file
// per artist-album pair.
type Cache struct {
	dir        string
	httpClient *http.Client
	logger     *zap.Logger

	// OnProgress, if set, is called after each song with the number of
	// songs considered so far and the total.
	OnProgress func(done, total int)
}

func New(dir string, logger *zap.Logger) *Cache {
	return &Cache{
		dir:        dir,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// FileName derives the cache file name for a song from its artist and
// album, lowercased with runs of invalid characters collapsed to one
// underscore.
func FileName(song store.Song) string {
	album := song.Album
	if album == "" {
		album = "no-album"
	}
	return sanitize(song.Artist) + "-" + sanitize(album) + ".jpg"
}

func sanitize(s string) string {
	return strings.ToLower(invalidChars.ReplaceAllString(s, "_"))
}

// CacheAll downloads art for every song that has a remote URL, skipping
// local paths, already-cached files and duplicate artist-album pairs.
// A failed download is logged and skipped, not fatal. Returns the
// number of images fetched.
func (c *Cache) CacheAll(ctx context.Context, songs []store.Song) (int, error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create cache directory: %w", err)
	}

	seen := make(map[string]bool)
	fetched := 0
	for n, song := range songs {
		select {
		case <-ctx.Done():
			return fetched, ctx.Err()
		default:
		}

		if c.cacheOne(ctx, song, seen) {
			fetched++
		}
		c.progress(n+1, len(songs))
	}

	return fetched, nil
}

// cacheOne reports whether it downloaded a new image for the song.
func (c *Cache) cacheOne(ctx context.Context, song store.Song, seen map[string]bool) bool {
	// Placeholder and already-local art has nothing to download.
	if !strings.HasPrefix(song.AlbumArt, "http") {
		return false
	}

	name := FileName(song)
	if seen[name] {
		return false
	}
	seen[name] = true

	path := filepath.Join(c.dir, name)
	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("already cached", zap.String("file", name))
		return false
	}

	if err := c.download(ctx, song.AlbumArt, path); err != nil {
		c.logger.Warn("failed to cache art",
			zap.String("url", song.AlbumArt), zap.Error(err))
		return false
	}
	c.logger.Info("cached", zap.String("file", name))
	return true
}

func (c *Cache) progress(done, total int) {
	if c.OnProgress != nil {
		c.OnProgress(done, total)
	}
}

func (c *Cache) download(ctx context.Context, artURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create artwork request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("artwork download returned %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return f.Close()
}
