package extract

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// Readable is the canonical output tuple of a readability pass.
type Readable struct {
	Title             string
	Byline            string
	StructuredContent string
	PlainContent      []string
}

// HasContent reports whether the pass found an article body.
func (r Readable) HasContent() bool {
	return len(r.PlainContent) > 0
}

// ExtractReadable runs the Mozilla Readability algorithm over an HTML
// fragment and returns the (title, byline, structured-content,
// plain-content) tuple.
//
// Extraction must never fail the caller: on a bad URL or a readability
// error it logs a warning and returns an empty Readable. Title and byline
// may be populated even when no content block was found, so callers should
// check HasContent rather than comparing against the zero value.
func ExtractReadable(fragment string, sourceURL string) Readable {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL",
			"url", sourceURL, "error", err,
		)
		return Readable{}
	}

	article, err := readability.FromReader(strings.NewReader(fragment), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed",
			"url", sourceURL, "error", err,
		)
		return Readable{}
	}

	content := strings.TrimSpace(article.Content)
	return Readable{
		Title:             strings.TrimSpace(article.Title),
		Byline:            strings.TrimSpace(article.Byline),
		StructuredContent: content,
		PlainContent:      PlainParagraphs(content),
	}
}
