package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"github.com/use-agent/sift/cache"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
)

// Evaluate runs one field-selection spec against a parsed document and
// returns the matched values with leading/trailing whitespace stripped.
//
// Match-rule semantics:
//
//	single — exactly one match required; two or more is an ambiguous-selector
//	         configuration error naming the count and the expression.
//	first  — take the first match in document order, ignore the rest.
//	all    — the full ordered list of matches.
//
// Zero matches is a soft condition in every path: Evaluate returns an empty
// result and no error, and the caller decides whether to warn. Errors are
// reserved for broken configuration (missing keys, unknown method or rule,
// ambiguous single).
func (x *Extractor) Evaluate(doc *html.Node, field string, spec *config.FieldSpec) ([]string, error) {
	if spec == nil || spec.SelectMethod == "" || spec.SelectExpression == "" {
		return nil, models.NewSiftError(models.ErrCodeBadFieldSpec,
			fmt.Sprintf("field %q: select-method and select-expression are required", field), nil)
	}

	rule := spec.MatchRule
	if rule == "" {
		rule = config.MatchSingle
	}
	switch rule {
	case config.MatchSingle, config.MatchFirst, config.MatchAll:
	default:
		return nil, models.NewSiftError(models.ErrCodeBadFieldSpec,
			fmt.Sprintf("field %q: %q is not a valid match-rule", field, rule), nil)
	}

	var matches []string
	switch spec.SelectMethod {
	case config.SelectXPath:
		expr, err := x.compiledXPath(spec.SelectExpression)
		if err != nil {
			return nil, models.NewSiftError(models.ErrCodeBadFieldSpec,
				fmt.Sprintf("field %q: invalid xpath expression %q", field, spec.SelectExpression), err)
		}
		for _, n := range htmlquery.QuerySelectorAll(doc, expr) {
			matches = append(matches, strings.TrimSpace(xpathNodeValue(n)))
		}

	case config.SelectCSS:
		sel, err := x.compiledCSS(spec.SelectExpression)
		if err != nil {
			return nil, models.NewSiftError(models.ErrCodeBadFieldSpec,
				fmt.Sprintf("field %q: invalid css selector %q", field, spec.SelectExpression), err)
		}
		for _, n := range cascadia.QueryAll(doc, sel) {
			var buf bytes.Buffer
			if err := html.Render(&buf, n); err != nil {
				continue
			}
			matches = append(matches, strings.TrimSpace(buf.String()))
		}

	default:
		return nil, models.NewSiftError(models.ErrCodeBadFieldSpec,
			fmt.Sprintf("field %q: %q is not a valid select-method", field, spec.SelectMethod), nil)
	}

	if len(matches) == 0 {
		return nil, nil
	}

	switch rule {
	case config.MatchSingle:
		if len(matches) > 1 {
			return nil, models.NewSiftError(models.ErrCodeAmbiguousSelector,
				fmt.Sprintf("field %q: %d elements match %q, match-rule \"single\" permits exactly one",
					field, len(matches), spec.SelectExpression), nil)
		}
		return matches[:1], nil
	case config.MatchFirst:
		return matches[:1], nil
	}
	return matches, nil // MatchAll
}

// compiledXPath returns a compiled xpath expression, via the shared cache.
func (x *Extractor) compiledXPath(expression string) (*xpath.Expr, error) {
	key := cache.Key(config.SelectXPath, expression)
	if v, ok := x.selectors.Get(key); ok {
		return v.(*xpath.Expr), nil
	}
	expr, err := xpath.Compile(expression)
	if err != nil {
		return nil, err
	}
	x.selectors.Set(key, expr)
	return expr, nil
}

// compiledCSS returns a parsed css selector, via the shared cache.
func (x *Extractor) compiledCSS(expression string) (cascadia.Sel, error) {
	key := cache.Key(config.SelectCSS, expression)
	if v, ok := x.selectors.Get(key); ok {
		return v.(cascadia.Sel), nil
	}
	sel, err := cascadia.Parse(expression)
	if err != nil {
		return nil, err
	}
	x.selectors.Set(key, sel)
	return sel, nil
}

// xpathNodeValue serializes one xpath match.
//
// Element matches yield their outer HTML (so a content selector hands a
// complete fragment to the readability pass); text() matches yield the text
// node data; attribute matches — which htmlquery surfaces as synthetic
// parentless elements wrapping the value — yield the attribute value.
func xpathNodeValue(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return n.Data
	case html.ElementNode:
		if n.Parent == nil {
			// Synthetic attribute node.
			return htmlquery.InnerText(n)
		}
		return htmlquery.OutputHTML(n, true)
	default:
		return htmlquery.InnerText(n)
	}
}
