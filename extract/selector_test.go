package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/use-agent/sift/cache"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
)

const selectorTestPage = `<html><head><title>Page</title></head><body>
<h1 class="headline">  Main Headline  </h1>
<div class="byline" data-author="Jane Doe">By Jane Doe</div>
<p class="para">first paragraph</p>
<p class="para">second paragraph</p>
<p class="para">third paragraph</p>
</body></html>`

func testExtractor() *Extractor {
	return New(cache.New(100))
}

func parsePage(t *testing.T, page string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func xpathSpec(expression, rule string) *config.FieldSpec {
	return &config.FieldSpec{
		SelectMethod:     config.SelectXPath,
		SelectExpression: expression,
		MatchRule:        rule,
	}
}

func TestEvaluate_SingleTextMatch(t *testing.T) {
	doc := parsePage(t, selectorTestPage)

	got, err := testExtractor().Evaluate(doc, "title",
		xpathSpec(`//h1[@class="headline"]/text()`, config.MatchSingle))
	require.NoError(t, err)
	assert.Equal(t, []string{"Main Headline"}, got)
}

func TestEvaluate_SingleAmbiguous(t *testing.T) {
	doc := parsePage(t, selectorTestPage)

	_, err := testExtractor().Evaluate(doc, "content",
		xpathSpec(`//p[@class="para"]/text()`, config.MatchSingle))
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeAmbiguousSelector, models.CodeOf(err))
	assert.Contains(t, err.Error(), "3 elements")
}

func TestEvaluate_FirstTakesDocumentOrder(t *testing.T) {
	doc := parsePage(t, selectorTestPage)

	got, err := testExtractor().Evaluate(doc, "content",
		xpathSpec(`//p[@class="para"]/text()`, config.MatchFirst))
	require.NoError(t, err)
	assert.Equal(t, []string{"first paragraph"}, got)
}

func TestEvaluate_AllPreservesDocumentOrder(t *testing.T) {
	doc := parsePage(t, selectorTestPage)

	got, err := testExtractor().Evaluate(doc, "content",
		xpathSpec(`//p[@class="para"]/text()`, config.MatchAll))
	require.NoError(t, err)
	assert.Equal(t, []string{"first paragraph", "second paragraph", "third paragraph"}, got)
}

func TestEvaluate_ZeroMatchesIsSoft(t *testing.T) {
	doc := parsePage(t, selectorTestPage)
	x := testExtractor()

	for _, rule := range []string{config.MatchSingle, config.MatchFirst, config.MatchAll} {
		got, err := x.Evaluate(doc, "missing", xpathSpec(`//span[@class="nope"]`, rule))
		require.NoError(t, err, "rule %s", rule)
		assert.Empty(t, got, "rule %s", rule)
	}
}

func TestEvaluate_AttributeMatch(t *testing.T) {
	doc := parsePage(t, selectorTestPage)

	got, err := testExtractor().Evaluate(doc, "author",
		xpathSpec(`//div[@class="byline"]/@data-author`, config.MatchSingle))
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe"}, got)
}

func TestEvaluate_ElementMatchYieldsOuterHTML(t *testing.T) {
	doc := parsePage(t, selectorTestPage)

	got, err := testExtractor().Evaluate(doc, "byline",
		xpathSpec(`//div[@class="byline"]`, config.MatchSingle))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "<div")
	assert.Contains(t, got[0], "By Jane Doe")
}

func TestEvaluate_CSSSelector(t *testing.T) {
	doc := parsePage(t, selectorTestPage)

	got, err := testExtractor().Evaluate(doc, "content", &config.FieldSpec{
		SelectMethod:     config.SelectCSS,
		SelectExpression: "p.para",
		MatchRule:        config.MatchAll,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "first paragraph")
}

func TestEvaluate_BrokenSpecs(t *testing.T) {
	doc := parsePage(t, selectorTestPage)
	x := testExtractor()

	tests := []struct {
		name string
		spec *config.FieldSpec
	}{
		{"nil spec", nil},
		{"missing expression", &config.FieldSpec{SelectMethod: config.SelectXPath}},
		{"unknown method", &config.FieldSpec{SelectMethod: "regex", SelectExpression: ".*"}},
		{"unknown rule", xpathSpec(`//h1`, "most")},
		{"invalid xpath", xpathSpec(`///[`, config.MatchSingle)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := x.Evaluate(doc, "field", tt.spec)
			require.Error(t, err)
			assert.Equal(t, models.ErrCodeBadFieldSpec, models.CodeOf(err))
		})
	}
}

func TestEvaluate_DefaultRuleIsSingle(t *testing.T) {
	doc := parsePage(t, selectorTestPage)

	_, err := testExtractor().Evaluate(doc, "content",
		xpathSpec(`//p[@class="para"]/text()`, ""))
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeAmbiguousSelector, models.CodeOf(err))
}

func TestEvaluate_CachesCompiledExpressions(t *testing.T) {
	selectors := cache.New(100)
	x := New(selectors)
	doc := parsePage(t, selectorTestPage)

	_, err := x.Evaluate(doc, "title", xpathSpec(`//h1/text()`, config.MatchFirst))
	require.NoError(t, err)
	assert.Equal(t, 1, selectors.Len())

	_, err = x.Evaluate(doc, "title", xpathSpec(`//h1/text()`, config.MatchFirst))
	require.NoError(t, err)
	assert.Equal(t, 1, selectors.Len())
}
