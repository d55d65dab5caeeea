package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/use-agent/sift/models"
)

// Exporter writes extracted articles to a per-site JSONL file instead of
// the database, for offline runs and corpus inspection. It satisfies the
// same sink interface as the article store, so the replay loop does not
// care which one it is writing to.
type Exporter struct {
	mu       sync.Mutex
	file     *os.File
	enc      *json.Encoder
	conv     *converter.Converter // nil unless Markdown output is enabled
	markdown bool
	logger   *slog.Logger
}

// exportRecord is an article plus the optional rendered Markdown body.
type exportRecord struct {
	*models.Article
	StructuredMarkdown *string `json:"structured_markdown,omitempty"`
}

// NewExporter opens (truncating) <dir>/<site>_extracted.jsonl. With
// markdown set, each record additionally carries the article content
// rendered as Markdown.
func NewExporter(dir, siteName string, markdown bool, logger *slog.Logger) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, siteName+"_extracted.jsonl")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create export file %s: %w", path, err)
	}

	e := &Exporter{
		file:     file,
		enc:      json.NewEncoder(file),
		markdown: markdown,
		logger:   logger,
	}
	if markdown {
		e.conv = newMarkdownConverter()
	}
	logger.Info("exporting articles", "path", path, "markdown", markdown)
	return e, nil
}

// Insert appends one article as a JSON line. Safe for concurrent use.
func (e *Exporter) Insert(_ context.Context, a *models.Article) error {
	record := exportRecord{Article: a}
	if e.markdown && a.StructuredContent != nil {
		md, err := toMarkdown(e.conv, *a.StructuredContent, a.ArticleURL)
		if err != nil {
			e.logger.Warn("markdown rendering failed",
				"url", a.ArticleURL, "error", err,
			)
		} else if md != "" {
			record.StructuredMarkdown = &md
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(&record); err != nil {
		return fmt.Errorf("write article %s: %w", a.ArticleURL, err)
	}
	return nil
}

// Close flushes and closes the export file.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.file.Close()
}
