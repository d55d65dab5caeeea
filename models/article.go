package models

import (
	"time"

	"github.com/google/uuid"
)

// Article is the extraction output for one captured page.
//
// Every field except ArticleURL and the crawl stamp is optional: absence is a
// meaningful value (the page had no such field), not an error, and optional
// fields serialize as JSON null so downstream consumers can tell "absent"
// from "empty". ArticleURL is always the resolved response URL, never the
// original request URL, so the same logical article maps to the same identity
// regardless of aliases or redirects.
type Article struct {
	ArticleURL        string         `json:"article_url"`
	Title             *string        `json:"title"`
	Byline            *string        `json:"byline"`
	PublicationDate   *string        `json:"publication_date"`
	Metadata          map[string]any `json:"metadata"`
	StructuredContent *string        `json:"structured_content"`
	PlainContent      []string       `json:"plain_content"`
	CrawlID           string         `json:"crawl_id"`
	CrawlDatetime     time.Time      `json:"crawl_datetime"`
	SiteName          string         `json:"site_name"`
}

// HasContent reports whether extraction found any article body. Pages
// without content are not considered articles and are never stored.
func (a *Article) HasContent() bool {
	return len(a.PlainContent) > 0
}

// SetMetadata stores a metadata value, lazily allocating the map so that
// articles with no configured metadata keep a null metadata field.
func (a *Article) SetMetadata(name string, value any) {
	if a.Metadata == nil {
		a.Metadata = make(map[string]any)
	}
	a.Metadata[name] = value
}

// Capture is a raw, previously fetched page. Captures are created once per
// fetch and are immutable thereafter; the body lives in blob storage under
// BlobKey and is loaded on demand during reprocessing.
type Capture struct {
	SiteName      string    `json:"site_name"`
	CrawlID       string    `json:"crawl_id"`
	CrawlDatetime time.Time `json:"crawl_datetime"`
	RequestURL    string    `json:"request_url"`
	ResponseURL   string    `json:"response_url"`
	StatusCode    int       `json:"status"`
	BlobKey       string    `json:"blob_key,omitempty"`
	RawBody       []byte    `json:"-"`
}

// CrawlInfo stamps extracted articles with the crawl they came from.
type CrawlInfo struct {
	CrawlID       string
	CrawlDatetime time.Time
	SiteName      string
}

// NewCrawlInfo starts a fresh crawl stamp for newly ingested captures.
// The datetime is truncated to whole seconds so it round-trips cleanly
// through ISO-8601 serialization.
func NewCrawlInfo(siteName string) *CrawlInfo {
	return &CrawlInfo{
		CrawlID:       uuid.NewString(),
		CrawlDatetime: time.Now().UTC().Truncate(time.Second),
		SiteName:      siteName,
	}
}

// CrawlInfoFromCapture rebuilds the crawl stamp of the crawl that originally
// fetched the capture, so reprocessed articles keep their provenance.
func CrawlInfoFromCapture(c *Capture) *CrawlInfo {
	return &CrawlInfo{
		CrawlID:       c.CrawlID,
		CrawlDatetime: c.CrawlDatetime,
		SiteName:      c.SiteName,
	}
}
