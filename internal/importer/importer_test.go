package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"songlog/internal/search"
	"songlog/internal/store"
)

type stubSearcher struct {
	results []search.Candidate
	err     error
	calls   int
}

func (s *stubSearcher) Name() string { return "stub" }

func (s *stubSearcher) Search(ctx context.Context, req search.Request) ([]search.Candidate, error) {
	s.calls++
	if req.Kind != search.KindRelease {
		return nil, errors.New("importer must search releases")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "songs.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "songs.json"))
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	return st
}

func TestImport(t *testing.T) {
	csv := "Artist,Title,Album\n" +
		"Radiohead;Thom Yorke,Creep,Pablo Honey\n" +
		"OutKast,Hey Ya,Speakerboxxx\n"
	path := writeCSV(t, csv)

	st := newTestStore(t)
	searcher := &stubSearcher{results: []search.Candidate{{ID: "rel-1", Title: "Pablo Honey"}}}
	imp := New(searcher, st, zap.NewNop())

	added, err := imp.Import(context.Background(), path, "2024-03")
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}

	songs := st.List()
	if len(songs) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(songs))
	}
	// Multi-artist cells keep only the primary credit.
	if songs[0].Artist != "Radiohead" {
		t.Errorf("Artist = %q, want %q", songs[0].Artist, "Radiohead")
	}
	if songs[0].AddedAt != "2024-03-01T12:00:00Z" {
		t.Errorf("AddedAt = %q, want month stamp", songs[0].AddedAt)
	}
	if songs[0].AlbumArt != "https://coverartarchive.org/release/rel-1/front-250" {
		t.Errorf("AlbumArt = %q", songs[0].AlbumArt)
	}
}

func TestImport_ArtLookupFailureIsNotFatal(t *testing.T) {
	path := writeCSV(t, "Artist,Title,Album\nRadiohead,Creep,Pablo Honey\n")

	st := newTestStore(t)
	searcher := &stubSearcher{err: errors.New("provider down")}
	imp := New(searcher, st, zap.NewNop())

	added, err := imp.Import(context.Background(), path, "2024-03")
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	if art := st.List()[0].AlbumArt; art != "" {
		t.Errorf("AlbumArt = %q, want empty on lookup failure", art)
	}
}

func TestImport_SkipsBadRows(t *testing.T) {
	csv := "Artist,Title,Album\n" +
		",No Artist,Some Album\n" +
		"short-row\n" +
		"OutKast,Hey Ya,Speakerboxxx\n"
	path := writeCSV(t, csv)

	st := newTestStore(t)
	searcher := &stubSearcher{}
	imp := New(searcher, st, zap.NewNop())

	added, err := imp.Import(context.Background(), path, "2024-03")
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	path := writeCSV(t, "Artist,Title,Album\nOutKast,Hey Ya,Speakerboxxx\n")

	st := newTestStore(t)
	imp := New(&stubSearcher{}, st, zap.NewNop())
	imp.DryRun = true

	added, err := imp.Import(context.Background(), path, "")
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	if got := st.List(); len(got) != 0 {
		t.Errorf("dry run must not persist songs, got %d", len(got))
	}
}

func TestImport_InvalidMonth(t *testing.T) {
	path := writeCSV(t, "Artist,Title,Album\n")
	imp := New(&stubSearcher{}, newTestStore(t), zap.NewNop())

	if _, err := imp.Import(context.Background(), path, "March 2024"); err == nil {
		t.Fatal("expected error for invalid month format")
	}
}
