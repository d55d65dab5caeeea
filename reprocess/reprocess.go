package reprocess

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/extract"
	"github.com/use-agent/sift/models"
)

// CaptureSource lists stored captures and loads their bodies.
type CaptureSource interface {
	BySite(ctx context.Context, siteName string) ([]*models.Capture, error)
	Body(ctx context.Context, c *models.Capture) ([]byte, error)
}

// ArticleSink receives extracted articles. The database store and the
// JSONL exporter both satisfy it, so a run can target either.
type ArticleSink interface {
	Insert(ctx context.Context, a *models.Article) error
}

// Summary is the result of one reprocessing run.
type Summary struct {
	SiteName        string  `json:"site_name"`
	PagesRead       int     `json:"pages_read"`
	ArticlesFound   int     `json:"articles_found"`
	ArticlesWritten int     `json:"articles_written"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	HitRatePercent  float64 `json:"hit_rate_percent"`
}

// controlSignal tells the loop whether to keep consuming captures after a
// page has been handled.
type controlSignal int

const (
	signalContinue controlSignal = iota
	signalAbort
)

// Reprocessor replays stored captures through the extraction pipeline and
// writes the resulting articles to a sink.
type Reprocessor struct {
	captures  CaptureSource
	articles  ArticleSink
	extractor *extract.Extractor
	workers   int
	logger    *slog.Logger
}

// New builds a Reprocessor. workers below 1 is treated as 1.
func New(captures CaptureSource, articles ArticleSink, extractor *extract.Extractor, workers int, logger *slog.Logger) *Reprocessor {
	if workers < 1 {
		workers = 1
	}
	return &Reprocessor{
		captures:  captures,
		articles:  articles,
		extractor: extractor,
		workers:   workers,
		logger:    logger,
	}
}

// Run replays every capture stored for the site through extraction.
//
// Per-page failures (unreadable blob, broken HTML, bad field spec for this
// page) are logged and skipped: one rotten page must not sink a corpus
// replay. Duplicate articles are logged and counted as found but not
// written. A non-recoverable store failure (lost connection, quota
// exhausted) aborts the run and is returned; so is any unclassified insert
// failure. The summary reflects whatever completed before the abort.
func (r *Reprocessor) Run(ctx context.Context, site *config.SiteConfig) (*Summary, error) {
	start := time.Now()
	entries, err := r.captures.BySite(ctx, site.SiteName)
	if err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}

	r.logger.Info("reprocessing started",
		"site", site.SiteName, "captures", len(entries), "workers", r.workers,
	)

	summary := &Summary{SiteName: site.SiteName}
	var runErr error

	if r.workers == 1 {
		var mu sync.Mutex
		for _, entry := range entries {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			signal, err := r.processCapture(ctx, site, entry, summary, &mu)
			if signal == signalAbort {
				runErr = err
				break
			}
		}
	} else {
		runErr = r.runParallel(ctx, site, entries, summary)
	}

	elapsed := time.Since(start)
	summary.ElapsedSeconds = elapsed.Seconds()
	if summary.PagesRead > 0 {
		summary.HitRatePercent = 100 * float64(summary.ArticlesFound) / float64(summary.PagesRead)
	}

	r.logger.Info("reprocessing finished",
		"site", site.SiteName,
		"pages_read", summary.PagesRead,
		"articles_found", summary.ArticlesFound,
		"articles_written", summary.ArticlesWritten,
		"hit_rate_percent", fmt.Sprintf("%.1f", summary.HitRatePercent),
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return summary, runErr
}

// runParallel fans captures out over a bounded worker pool. The first abort
// signal cancels the pool; remaining workers drain and exit.
func (r *Reprocessor) runParallel(ctx context.Context, site *config.SiteConfig, entries []*models.Capture, summary *Summary) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		errOnce  sync.Once
		abortErr error
	)
	work := make(chan *models.Capture)

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range work {
				signal, err := r.processCapture(ctx, site, entry, summary, &mu)
				if signal == signalAbort {
					errOnce.Do(func() {
						abortErr = err
						cancel()
					})
					return
				}
			}
		}()
	}

feed:
	for _, entry := range entries {
		select {
		case work <- entry:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	// External cancellation must surface like any other abort; without this
	// a cancelled run is indistinguishable from a clean one.
	if abortErr == nil {
		abortErr = ctx.Err()
	}
	return abortErr
}

// processCapture replays one capture: load the body, gate on the article
// URL, extract, and write. mu guards the shared summary counters.
func (r *Reprocessor) processCapture(ctx context.Context, site *config.SiteConfig, entry *models.Capture, summary *Summary, mu *sync.Mutex) (controlSignal, error) {
	body, err := r.captures.Body(ctx, entry)
	if err != nil {
		r.logger.Warn("skipping capture with unreadable body",
			"site", site.SiteName, "url", entry.ResponseURL, "error", err,
		)
		return signalContinue, nil
	}
	entry.RawBody = body

	mu.Lock()
	summary.PagesRead++
	mu.Unlock()

	if !extract.IsArticleURL(site, entry.ResponseURL) {
		return signalContinue, nil
	}

	article, err := r.extractor.ExtractArticle(
		extract.PageFromCapture(entry), site, models.CrawlInfoFromCapture(entry))
	if err != nil {
		// A field-spec configuration error will repeat on every page of the
		// site; call it out so the operator fixes the config, not the page.
		if models.IsConfiguration(err) {
			r.logger.Warn("extraction skipped by broken field configuration",
				"site", site.SiteName, "url", entry.ResponseURL, "error", err,
			)
		} else {
			r.logger.Warn("extraction failed",
				"site", site.SiteName, "url", entry.ResponseURL, "error", err,
			)
		}
		return signalContinue, nil
	}
	if !article.HasContent() {
		return signalContinue, nil
	}

	mu.Lock()
	summary.ArticlesFound++
	mu.Unlock()

	switch err := r.articles.Insert(ctx, article); {
	case err == nil:
		mu.Lock()
		summary.ArticlesWritten++
		mu.Unlock()
	case models.IsRecoverable(err):
		r.logger.Info("duplicate article skipped",
			"site", site.SiteName, "url", article.ArticleURL,
		)
	case models.IsNonRecoverable(err):
		r.logger.Error("article store failure, aborting run",
			"site", site.SiteName, "url", article.ArticleURL, "error", err,
		)
		return signalAbort, err
	default:
		r.logger.Error("unclassified article store failure, aborting run",
			"site", site.SiteName, "url", article.ArticleURL, "error", err,
		)
		return signalAbort, err
	}
	return signalContinue, nil
}
