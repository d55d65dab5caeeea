package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/use-agent/sift/cache"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/simhash"
)

// Extractor turns captured pages into Articles. It is stateless apart from
// the shared compiled-selector cache, so one Extractor serves all sites and
// all workers concurrently.
type Extractor struct {
	selectors *cache.Cache
}

// New creates an Extractor backed by the given selector cache.
func New(selectors *cache.Cache) *Extractor {
	return &Extractor{selectors: selectors}
}

// Page is one fetched page handed to extraction: the raw body plus the URLs
// on both sides of any redirect chain.
type Page struct {
	RequestURL  string
	ResponseURL string
	Body        []byte
}

// PageFromCapture rebuilds the extraction input from a stored capture whose
// body has been loaded from blob storage.
func PageFromCapture(c *models.Capture) *Page {
	return &Page{
		RequestURL:  c.RequestURL,
		ResponseURL: c.ResponseURL,
		Body:        c.RawBody,
	}
}

// wholePageSpec selects the document root, yielding the full page HTML for
// the readability pass.
var wholePageSpec = &config.FieldSpec{
	SelectMethod:     config.SelectXPath,
	SelectExpression: "/html",
	MatchRule:        config.MatchSingle,
}

// ExtractArticle runs the full extraction pipeline for one page:
//
//  1. The readability pass over the whole page (minus excluded elements)
//     seeds title, byline and content.
//  2. Site-configured field specs override the seeded title and byline when
//     they match, and replace the content outright when configured.
//  3. The publication datetime is extracted and normalized.
//  4. Configured metadata specs are routed: well-known keys land on the
//     article's dedicated fields, everything else in the metadata map.
//
// The article's identity is always the response URL, so aliased or
// redirected request URLs converge on one stored article. Extraction is a
// pure function of (page, site config): re-running it on the same capture
// yields the same article apart from the crawl stamp.
//
// A broken field spec for a dedicated article field aborts the page with a
// configuration error; a broken metadata spec only loses that one key. A
// page with no extractable content still returns an article (the caller
// checks HasContent before storing it).
func (x *Extractor) ExtractArticle(page *Page, site *config.SiteConfig, crawl *models.CrawlInfo) (*models.Article, error) {
	doc, err := html.Parse(bytes.NewReader(page.Body))
	if err != nil {
		return nil, models.NewSiftError(models.ErrCodeInvalidInput, "page body is not parseable HTML", err)
	}

	article := &models.Article{ArticleURL: page.ResponseURL}

	pageHTML := string(page.Body)
	if values, err := x.Evaluate(doc, "page", wholePageSpec); err == nil && len(values) > 0 {
		pageHTML = values[0]
	}

	readable := ExtractReadable(removeExcluded(pageHTML, site.ExcludeTags), page.ResponseURL)
	article.Title = optional(SimplifyTitle(readable.Title))
	article.Byline = optional(SimplifyByline(readable.Byline))
	if readable.HasContent() {
		article.StructuredContent = optional(readable.StructuredContent)
		article.PlainContent = readable.PlainContent
	}

	if v, err := x.evaluateField(doc, "title", site.Article.Title); err != nil {
		return nil, err
	} else if s := SimplifyTitle(scalar(v)); s != "" {
		article.Title = &s
	}

	// Unlike title, a configured byline spec replaces the readability byline
	// even when it matches nothing: the site has declared where its byline
	// lives, and a page without one has no byline.
	if site.Article.Byline != nil {
		v, err := x.evaluateField(doc, "byline", site.Article.Byline)
		if err != nil {
			return nil, err
		}
		article.Byline = optional(SimplifyByline(scalar(v)))
	}

	// A configured content spec replaces the readability result outright,
	// including when it matches nothing. The readability pass is re-run
	// scoped to the selected fragment so the stored structure is normalized
	// the same way as the whole-page default.
	if site.Article.Content != nil {
		values, err := x.evaluateField(doc, "content", site.Article.Content)
		if err != nil {
			return nil, err
		}
		article.StructuredContent = nil
		article.PlainContent = nil
		if fragment := strings.TrimSpace(strings.Join(values, "\n")); fragment != "" {
			scoped := ExtractReadable(fragment, page.ResponseURL)
			if !scoped.HasContent() {
				// Short fragments can defeat the readability scorer; fall
				// back to a direct conversion of the selected markup.
				scoped = Readable{
					StructuredContent: fragment,
					PlainContent:      PlainParagraphs(fragment),
				}
			}
			if scoped.HasContent() {
				article.StructuredContent = optional(scoped.StructuredContent)
				article.PlainContent = scoped.PlainContent
			}
		}
	}

	if v, err := x.evaluateField(doc, "publication_datetime", site.Article.PublicationDatetime); err != nil {
		return nil, err
	} else if raw := scalar(v); raw != "" {
		x.setPublicationDate(article, raw, site)
	}

	if err := x.extractMetadata(doc, article, site); err != nil {
		return nil, err
	}

	if site.ContentDigests && article.HasContent() {
		article.SetMetadata("content_digests", ParagraphDigests(article.PlainContent))
		article.SetMetadata("content_fingerprint",
			fmt.Sprintf("%016x", simhash.FingerprintParagraphs(article.PlainContent)))
	}

	article.CrawlID = crawl.CrawlID
	article.CrawlDatetime = crawl.CrawlDatetime
	article.SiteName = crawl.SiteName
	return article, nil
}

// evaluateField wraps Evaluate for optional specs: a nil spec means the site
// does not configure the field, and zero matches logs the warning the
// evaluator leaves to its caller.
func (x *Extractor) evaluateField(doc *html.Node, field string, spec *config.FieldSpec) ([]string, error) {
	if spec == nil {
		return nil, nil
	}
	values, err := x.Evaluate(doc, field, spec)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		slog.Warn("field selector matched nothing",
			"field", field, "expression", spec.SelectExpression,
		)
	}
	return values, nil
}

// extractMetadata evaluates the site's metadata specs in deterministic key
// order. Unlike the dedicated article fields, a broken metadata spec only
// costs that key: the error is logged and extraction continues.
func (x *Extractor) extractMetadata(doc *html.Node, article *models.Article, site *config.SiteConfig) error {
	names := make([]string, 0, len(site.Metadata))
	for name := range site.Metadata {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values, err := x.evaluateField(doc, "metadata."+name, site.Metadata[name])
		if err != nil {
			slog.Warn("metadata field skipped",
				"site", site.SiteName, "field", name, "error", err,
			)
			continue
		}
		if len(values) == 0 {
			continue
		}

		switch name {
		case "title":
			if s := SimplifyTitle(values[0]); s != "" {
				article.Title = &s
			}
		case "byline", "author":
			if s := SimplifyByline(values[0]); s != "" {
				article.Byline = &s
			}
		case "publication_date", "publication_datetime":
			x.setPublicationDate(article, values[0], site)
		default:
			if site.Metadata[name].MatchRule == config.MatchAll {
				article.SetMetadata(name, values)
			} else {
				article.SetMetadata(name, values[0])
			}
		}
	}
	return nil
}

// setPublicationDate normalizes a raw date string onto the article. A string
// that defeats both parser tiers is logged and leaves the field absent; a
// bad date never fails the page.
func (x *Extractor) setPublicationDate(article *models.Article, raw string, site *config.SiteConfig) {
	normalized, ok := NormalizeDatetime(raw,
		site.Article.DatetimeFormat, false, site.Article.SimplifiedDatetimeFormats)
	if !ok {
		slog.Warn("unparseable publication datetime",
			"site", site.SiteName, "value", raw, "format", site.Article.DatetimeFormat,
		)
		return
	}
	article.PublicationDate = &normalized
}

// removeExcluded strips elements matching the site's exclude selectors from
// the page HTML before the readability pass, so boilerplate rails and
// comment blocks cannot win the content scoring.
func removeExcluded(pageHTML string, excludeTags []string) string {
	if len(excludeTags) == 0 {
		return pageHTML
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return pageHTML
	}
	for _, selector := range excludeTags {
		doc.Find(selector).Remove()
	}
	out, err := doc.Html()
	if err != nil {
		return pageHTML
	}
	return out
}

// scalar collapses an evaluation result to its first value.
func scalar(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// optional returns nil for the empty string, so absent fields serialize as
// JSON null instead of "".
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
