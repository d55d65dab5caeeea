package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// blockTags are elements whose closing boundary ends a plain-text paragraph.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "blockquote": true, "figcaption": true,
	"table": true, "tr": true, "pre": true, "header": true, "footer": true,
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// PlainParagraphs flattens structured article HTML into an ordered list of
// plain-text paragraphs: paragraph breaks at <br> and block-element
// boundaries, all markup stripped, whitespace collapsed and trimmed, empty
// paragraphs dropped.
func PlainParagraphs(structuredHTML string) []string {
	if strings.TrimSpace(structuredHTML) == "" {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(structuredHTML))
	if err != nil {
		return nil
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "br":
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	var paragraphs []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " "))
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return paragraphs
}

// ParagraphDigests returns the SHA-256 digest of each paragraph, used for
// cross-crawl duplicate analysis of article bodies.
func ParagraphDigests(paragraphs []string) []string {
	if len(paragraphs) == 0 {
		return nil
	}
	digests := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		sum := sha256.Sum256([]byte(p))
		digests[i] = hex.EncodeToString(sum[:])
	}
	return digests
}

// SimplifyTitle collapses internal whitespace runs left behind by
// multi-line markup inside headline elements.
func SimplifyTitle(title string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(title, " "))
}

// bylinePrefixRe strips the conventional attribution lead-in ("By Jane
// Doe", "by JANE DOE") that sites bake into the byline element.
var bylinePrefixRe = regexp.MustCompile(`(?i)^by[\s:]+`)

// SimplifyByline normalizes an extracted byline: whitespace collapsed,
// "By " prefix removed, trailing separators dropped.
func SimplifyByline(byline string) string {
	b := strings.TrimSpace(whitespaceRe.ReplaceAllString(byline, " "))
	b = bylinePrefixRe.ReplaceAllString(b, "")
	return strings.Trim(b, " ,|-")
}
