package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"songlog/internal/artcache"
	"songlog/internal/config"
	"songlog/internal/importer"
	"songlog/internal/musicbrainz"
	"songlog/internal/progress"
	"songlog/internal/store"
)

func main() {
	opts, err := parseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfigFile(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
	if opts.verbose {
		cfg.Verbose = true
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, cfg, logger); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableCaller = true
	return cfg.Build()
}

func run(ctx context.Context, opts options, cfg config.Config, logger *zap.Logger) error {
	client := musicbrainz.New(cfg.UserAgent())

	switch opts.command {
	case cmdSearch:
		return runSearch(ctx, client, cfg, opts)

	case cmdImport:
		st, err := store.Open(cfg.DataFile)
		if err != nil {
			return err
		}
		imp := importer.New(client, st, logger)
		imp.DryRun = opts.dryRun
		update, finish := progressBar(cfg.Verbose)
		imp.OnProgress = update
		added, err := imp.Import(ctx, opts.csvPath, opts.month)
		finish()
		if err != nil {
			return err
		}
		logger.Info("import finished", zap.Int("added", added))
		return nil

	case cmdCacheArt:
		st, err := store.Open(cfg.DataFile)
		if err != nil {
			return err
		}
		cache := artcache.New(cfg.ArtCacheDir, logger)
		update, finish := progressBar(cfg.Verbose)
		cache.OnProgress = update
		fetched, err := cache.CacheAll(ctx, st.List())
		finish()
		if err != nil {
			return err
		}
		logger.Info("art cache finished", zap.Int("fetched", fetched))
		return nil

	case cmdTrim:
		st, err := store.Open(cfg.DataFile)
		if err != nil {
			return err
		}
		changed, err := st.TrimAll()
		if err != nil {
			return err
		}
		logger.Info("trim finished", zap.Int("changed", changed))
		return nil
	}

	return fmt.Errorf("unknown command")
}

// progressBar returns an update callback and a finish function. The bar
// is created on the first update, once the total is known, and skipped
// entirely in verbose mode where per-item logs replace it.
func progressBar(verbose bool) (func(done, total int), func()) {
	var bar *progress.Bar
	update := func(done, total int) {
		if verbose {
			return
		}
		if bar == nil {
			bar = progress.New(os.Stderr, total)
		}
		bar.Set(done)
	}
	finish := func() {
		if bar != nil {
			bar.Finish()
		}
	}
	return update, finish
}
