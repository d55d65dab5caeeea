package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/sift/cache"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
)

const articleTestPage = `<html><head><title>Site Title Bar</title></head><body>
<h1 class="headline">Bridge Closure Sparks Outrage</h1>
<div class="byline">By Jane Doe</div>
<span class="published">30/01/2019</span>
<div class="tags"><a>politics</a><a>transport</a></div>
<article>
<p>The bridge closure announced on Tuesday morning has drawn criticism from commuters
across the metropolitan area, with traffic backing up for miles during rush hour.</p>
<p>City officials defended the decision, pointing to a structural report that found
significant corrosion in several of the load-bearing supports under the eastern span.</p>
<p>Repairs are expected to take at least six months, and alternative routes are being
expanded to absorb the additional forty thousand daily crossings that normally use the
bridge, including three new express bus lines and extended ferry service hours.</p>
<p>Local business owners near the bridge approaches say foot traffic has already fallen
sharply, and several have asked the council for temporary rate relief while the closure
lasts. A spokesperson said the request would be considered at the next budget meeting.</p>
<p>Engineers first flagged the corrosion during a routine inspection last autumn, but
the follow-up survey that confirmed the extent of the damage was only completed this
month, after specialist divers examined the submerged portions of the piers.</p>
</article>
<div class="related">You may also like: ten other stories</div>
</body></html>`

func testCrawl() *models.CrawlInfo {
	return &models.CrawlInfo{
		CrawlID:       "f3c2a6de-9f0b-4b57-bb9d-0123456789ab",
		CrawlDatetime: time.Date(2019, 2, 1, 12, 0, 0, 0, time.UTC),
		SiteName:      "example",
	}
}

func testPage(responseURL string) *Page {
	return &Page{
		RequestURL:  "http://example.com/news/bridge?utm_source=feed",
		ResponseURL: responseURL,
		Body:        []byte(articleTestPage),
	}
}

func testSite() *config.SiteConfig {
	return &config.SiteConfig{
		SiteName: "example",
		Article: config.ArticleConfig{
			Title: &config.FieldSpec{
				SelectMethod:     config.SelectXPath,
				SelectExpression: `//h1[@class="headline"]/text()`,
				MatchRule:        config.MatchSingle,
			},
			Byline: &config.FieldSpec{
				SelectMethod:     config.SelectXPath,
				SelectExpression: `//div[@class="byline"]/text()`,
				MatchRule:        config.MatchFirst,
			},
			Content: &config.FieldSpec{
				SelectMethod:     config.SelectXPath,
				SelectExpression: `//article/p`,
				MatchRule:        config.MatchAll,
			},
			PublicationDatetime: &config.FieldSpec{
				SelectMethod:     config.SelectXPath,
				SelectExpression: `//span[@class="published"]/text()`,
				MatchRule:        config.MatchSingle,
			},
			DatetimeFormat: "DD/MM/YYYY",
		},
	}
}

func TestExtractArticle_IdentityIsResponseURL(t *testing.T) {
	x := New(cache.New(100))
	page := testPage("http://example.com/news/bridge")

	article, err := x.ExtractArticle(page, testSite(), testCrawl())
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/news/bridge", article.ArticleURL)
	assert.NotEqual(t, page.RequestURL, article.ArticleURL)
}

func TestExtractArticle_ConfiguredFields(t *testing.T) {
	x := New(cache.New(100))

	article, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), testSite(), testCrawl())
	require.NoError(t, err)

	require.NotNil(t, article.Title)
	assert.Equal(t, "Bridge Closure Sparks Outrage", *article.Title)

	require.NotNil(t, article.Byline)
	assert.Equal(t, "Jane Doe", *article.Byline)

	require.NotNil(t, article.PublicationDate)
	assert.Equal(t, "2019-01-30T00:00:00", *article.PublicationDate)

	require.True(t, article.HasContent())
	assert.Len(t, article.PlainContent, 5)
	assert.Contains(t, article.PlainContent[0], "bridge closure announced on Tuesday")
	assert.NotContains(t, *article.StructuredContent, "You may also like")

	assert.Equal(t, "f3c2a6de-9f0b-4b57-bb9d-0123456789ab", article.CrawlID)
	assert.Equal(t, "example", article.SiteName)
}

func TestExtractArticle_ContentSpecMatchingNothingMeansNoContent(t *testing.T) {
	x := New(cache.New(100))
	site := testSite()
	site.Article.Content.SelectExpression = `//div[@class="nonexistent"]`

	article, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), site, testCrawl())
	require.NoError(t, err)

	assert.False(t, article.HasContent())
	assert.Nil(t, article.StructuredContent)
}

func TestExtractArticle_BylineSpecMatchingNothingBlanksDefault(t *testing.T) {
	x := New(cache.New(100))
	site := testSite()
	site.Article.Byline.SelectExpression = `//div[@class="nonexistent"]/text()`

	article, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), site, testCrawl())
	require.NoError(t, err)
	assert.Nil(t, article.Byline)
}

func TestExtractArticle_ReadabilitySeedsUnconfiguredSite(t *testing.T) {
	x := New(cache.New(100))
	site := &config.SiteConfig{SiteName: "example"}

	article, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), site, testCrawl())
	require.NoError(t, err)

	assert.NotNil(t, article.Title)
	assert.True(t, article.HasContent())
}

func TestExtractArticle_MetadataRouting(t *testing.T) {
	x := New(cache.New(100))
	site := &config.SiteConfig{
		SiteName: "example",
		Metadata: map[string]*config.FieldSpec{
			"author": {
				SelectMethod:     config.SelectXPath,
				SelectExpression: `//div[@class="byline"]/text()`,
				MatchRule:        config.MatchSingle,
			},
			"publication_date": {
				SelectMethod:     config.SelectXPath,
				SelectExpression: `//span[@class="published"]/text()`,
				MatchRule:        config.MatchSingle,
			},
			"tags": {
				SelectMethod:     config.SelectXPath,
				SelectExpression: `//div[@class="tags"]/a/text()`,
				MatchRule:        config.MatchAll,
			},
			"section": {
				SelectMethod:     config.SelectXPath,
				SelectExpression: `//div[@class="tags"]/a[1]/text()`,
				MatchRule:        config.MatchFirst,
			},
		},
		Article: config.ArticleConfig{DatetimeFormat: "DD/MM/YYYY"},
	}

	article, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), site, testCrawl())
	require.NoError(t, err)

	// Well-known keys land on dedicated fields, not in the metadata map.
	require.NotNil(t, article.Byline)
	assert.Equal(t, "Jane Doe", *article.Byline)
	require.NotNil(t, article.PublicationDate)
	assert.Equal(t, "2019-01-30T00:00:00", *article.PublicationDate)
	assert.NotContains(t, article.Metadata, "author")
	assert.NotContains(t, article.Metadata, "publication_date")

	assert.Equal(t, []string{"politics", "transport"}, article.Metadata["tags"])
	assert.Equal(t, "politics", article.Metadata["section"])
}

func TestExtractArticle_BrokenMetadataSpecOnlyLosesThatKey(t *testing.T) {
	x := New(cache.New(100))
	site := testSite()
	site.Metadata = map[string]*config.FieldSpec{
		"tags": {
			SelectMethod:     config.SelectXPath,
			SelectExpression: `//div[@class="tags"]/a/text()`,
			MatchRule:        config.MatchSingle, // two tags match: ambiguous
		},
	}

	article, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), site, testCrawl())
	require.NoError(t, err)
	assert.NotContains(t, article.Metadata, "tags")
	assert.True(t, article.HasContent())
}

func TestExtractArticle_BrokenDedicatedSpecAbortsPage(t *testing.T) {
	x := New(cache.New(100))
	site := testSite()
	site.Article.Title.SelectExpression = `//div[@class="tags"]/a/text()` // matches two

	_, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), site, testCrawl())
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeAmbiguousSelector, models.CodeOf(err))
}

func TestExtractArticle_UnparseableDateLeavesFieldAbsent(t *testing.T) {
	x := New(cache.New(100))
	site := testSite()
	site.Article.DatetimeFormat = "unix"

	article, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), site, testCrawl())
	require.NoError(t, err)
	assert.Nil(t, article.PublicationDate)
	assert.True(t, article.HasContent())
}

func TestExtractArticle_ContentDigests(t *testing.T) {
	x := New(cache.New(100))
	site := testSite()
	site.ContentDigests = true

	article, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), site, testCrawl())
	require.NoError(t, err)

	digests, ok := article.Metadata["content_digests"].([]string)
	require.True(t, ok)
	assert.Len(t, digests, len(article.PlainContent))

	fingerprint, ok := article.Metadata["content_fingerprint"].(string)
	require.True(t, ok)
	assert.Len(t, fingerprint, 16)
}

func TestExtractArticle_Deterministic(t *testing.T) {
	x := New(cache.New(100))
	site := testSite()
	crawl := testCrawl()

	first, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), site, crawl)
	require.NoError(t, err)
	second, err := x.ExtractArticle(testPage("http://example.com/news/bridge"), site, crawl)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
