package export

import (
	nurl "net/url"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// newMarkdownConverter creates a reusable, goroutine-safe Converter for
// rendering structured article content as Markdown:
//
//   - base plugin: strips script, style, iframe, noscript, head, meta, link,
//     input, textarea and HTML comments.
//   - commonmark plugin: standard Markdown rendering (headings, lists,
//     links, code blocks, emphasis, blockquotes).
//   - table plugin: preserves table structure with minimal cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// toMarkdown converts an article's structured HTML content to Markdown. The
// article's domain resolves relative links and images into absolute URLs so
// the exported Markdown is self-contained.
func toMarkdown(conv *converter.Converter, structuredHTML, articleURL string) (string, error) {
	domain := ""
	if u, err := nurl.Parse(articleURL); err == nil {
		domain = u.Host
	}
	return conv.ConvertString(structuredHTML, converter.WithDomain(domain))
}
