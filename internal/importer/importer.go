// Package importer bulk-loads songs into the collection from CSV
// exports. Rows are (artist, title, album, ...); extra columns and the
// header row are ignored.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"songlog/internal/musicbrainz"
	"songlog/internal/search"
	"songlog/internal/store"
)

// Importer reads CSV rows, resolves cover art through the metadata
// provider, and appends the resulting songs to the store.
type Importer struct {
	searcher search.Searcher
	store    *store.Store
	logger   *zap.Logger
	DryRun   bool

	// OnProgress, if set, is called after each row with the number of
	// rows processed so far and the total row count.
	OnProgress func(done, total int)
}

// New creates a new Importer instance
func New(searcher search.Searcher, st *store.Store, logger *zap.Logger) *Importer {
	return &Importer{
		searcher: searcher,
		store:    st,
		logger:   logger,
	}
}

// Import loads the CSV at path and appends one song per data row. Songs
// are stamped with the first day of month (YYYY-MM); an empty month
// means the current one. A row whose cover-art lookup fails is still
// imported, just without art. Returns the number of songs added.
func (i *Importer) Import(ctx context.Context, path, month string) (int, error) {
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return 0, fmt.Errorf("invalid month %q, want YYYY-MM", month)
	}
	addedAt := month + "-01T12:00:00Z"

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) <= 1 {
		return 0, nil
	}

	added := 0
	total := len(rows) - 1
	for n, row := range rows[1:] {
		select {
		case <-ctx.Done():
			return added, fmt.Errorf("import cancelled")
		default:
		}

		if len(row) < 3 {
			i.logger.Warn("skipping short row", zap.Int("row", n+2))
			i.progress(n+1, total)
			continue
		}

		// Multi-artist cells are ;-separated; keep the primary credit.
		artist := strings.TrimSpace(strings.SplitN(row[0], ";", 2)[0])
		title := strings.TrimSpace(row[1])
		album := strings.TrimSpace(row[2])
		if artist == "" || title == "" {
			i.logger.Warn("skipping row without artist or title", zap.Int("row", n+2))
			i.progress(n+1, total)
			continue
		}

		song := store.FromCandidate(search.Candidate{
			Title:       title,
			ArtistName:  artist,
			AlbumTitle:  album,
			CoverArtURL: i.lookupArt(ctx, artist, album),
		})
		song.AddedAt = addedAt

		if i.DryRun {
			i.logger.Info("would import", zap.String("title", title), zap.String("artist", artist))
			added++
			i.progress(n+1, total)
			continue
		}

		if _, err := i.store.Append(song); err != nil {
			return added, fmt.Errorf("failed to save song %q: %w", title, err)
		}
		i.logger.Info("imported", zap.String("title", title), zap.String("artist", artist))
		added++
		i.progress(n+1, total)
	}

	return added, nil
}

func (i *Importer) progress(done, total int) {
	if i.OnProgress != nil {
		i.OnProgress(done, total)
	}
}

// lookupArt searches releases for the album and derives its cover art
// URL. Lookup failures only cost the row its artwork.
func (i *Importer) lookupArt(ctx context.Context, artist, album string) string {
	if album == "" {
		return ""
	}

	results, err := i.searcher.Search(ctx, search.Request{
		Kind:   search.KindRelease,
		Artist: artist,
		Album:  album,
		Limit:  1,
	})
	if err != nil {
		i.logger.Warn("cover art lookup failed",
			zap.String("artist", artist), zap.String("album", album), zap.Error(err))
		return ""
	}
	if len(results) == 0 || results[0].ID == "" {
		return ""
	}
	return musicbrainz.CoverArtURL(results[0].ID)
}
