package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"songlog/internal/config"
	"songlog/internal/search"
)

// runSearch parses the combined query, runs one provider search, and
// prints the candidates.
func runSearch(ctx context.Context, searcher search.Searcher, cfg config.Config, opts options) error {
	kind, ok := search.ParseKind(opts.kind)
	if !ok {
		return fmt.Errorf("invalid kind %q, want recording, release or artist", opts.kind)
	}

	limit := opts.limit
	if limit <= 0 {
		limit = cfg.SearchLimit
	}

	filter := search.Parse(opts.query)
	req := filter.Request(limit)
	req.Kind = kind

	candidates, err := searcher.Search(ctx, req)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	if len(candidates) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for _, c := range candidates {
		switch kind {
		case search.KindRecording:
			fmt.Printf("%s - %s [%s]\n", c.Title, c.ArtistName, c.AlbumTitle)
		default:
			fmt.Printf("%s (%s)\n", c.Title, c.ID)
		}
	}
	return nil
}
