package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/sift/cache"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/export"
	"github.com/use-agent/sift/extract"
	"github.com/use-agent/sift/reprocess"
	"github.com/use-agent/sift/store"
)

// sift-replay runs one reprocessing pass from the command line, without the
// HTTP server: replay a site's stored captures through extraction and write
// the articles to the database or to a JSONL export file.
func main() {
	var (
		siteName  string
		sitesPath string
		exporter  string
		exportDir string
		workers   int
		markdown  bool
	)

	root := &cobra.Command{
		Use:           "sift-replay",
		Short:         "Replay stored page captures through article extraction",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), siteName, sitesPath, exporter, exportDir, workers, markdown)
		},
	}

	cfg := config.Load()
	root.Flags().StringVar(&siteName, "site", "", "site to reprocess (required)")
	root.Flags().StringVar(&sitesPath, "config", cfg.Sites.Path, "site configuration YAML")
	root.Flags().StringVar(&exporter, "exporter", "file", "article destination: file or database")
	root.Flags().StringVar(&exportDir, "export-dir", cfg.Reprocess.ExportDir, "directory for JSONL exports")
	root.Flags().IntVar(&workers, "workers", cfg.Reprocess.Workers, "extraction worker count")
	root.Flags().BoolVar(&markdown, "markdown", false, "add rendered Markdown content to exported articles")
	_ = root.MarkFlagRequired("site")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sift-replay:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, siteName, sitesPath, exporter, exportDir string, workers int, markdown bool) error {
	cfg := config.Load()
	cfg.Log.Format = "text"
	initLogger(cfg.Log)
	logger := slog.Default()

	sites, err := config.LoadSites(sitesPath)
	if err != nil {
		return err
	}
	site, ok := sites[siteName]
	if !ok {
		return fmt.Errorf("no site configuration for %q in %s", siteName, sitesPath)
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	pool, err := store.NewPool(dbCtx, cfg.Database.URL)
	dbCancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	blobs, err := store.NewBlobStore(cfg.Blob.Dir)
	if err != nil {
		return err
	}
	captures := store.NewCaptureStore(pool, blobs, logger)

	var sink reprocess.ArticleSink
	switch exporter {
	case "database":
		sink = store.NewArticleStore(pool)
	case "file":
		fileSink, err := export.NewExporter(exportDir, siteName, markdown, logger)
		if err != nil {
			return err
		}
		defer fileSink.Close()
		sink = fileSink
	default:
		return fmt.Errorf("unknown exporter %q: want file or database", exporter)
	}

	extractor := extract.New(cache.New(cfg.Cache.MaxEntries))
	reprocessor := reprocess.New(captures, sink, extractor, workers, logger)

	summary, err := reprocessor.Run(ctx, site)
	if summary != nil {
		fmt.Printf("pages read: %d  articles found: %d  written: %d  hit rate: %.1f%%  elapsed: %.1fs\n",
			summary.PagesRead, summary.ArticlesFound, summary.ArticlesWritten,
			summary.HitRatePercent, summary.ElapsedSeconds)
	}
	return err
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
