// Package query applies a site's selector expressions to parsed HTML.
//
// Two dialects are supported: CSS selectors, evaluated with goquery, and
// XPath expressions, evaluated with htmlquery. Both operate on the same
// golang.org/x/net/html tree, so callers never need to know which dialect a
// site uses. A selector that matches nothing, or that does not compile, yields
// an empty result.
package query

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Sentinels returned by First for the singular article fields.
const (
	NoTitle   = "No title found"
	NoSummary = "No summary found"
)

// Dialect names the query language of a selector expression.
type Dialect string

const (
	CSS   Dialect = "css"
	XPath Dialect = "xpath"
)

// Selector is a dialect-tagged selector expression.
type Selector struct {
	Dialect Dialect
	Expr    string
}

// ParseSelector reads a configured selector. A "xpath:" or "css:" prefix sets
// the dialect explicitly; anything else is a CSS selector.
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	dialect, expr := CSS, raw

	if prefix, rest, ok := strings.Cut(raw, ":"); ok && isDialectPrefix(prefix) {
		dialect, expr = Dialect(strings.ToLower(prefix)), strings.TrimSpace(rest)
	}

	if expr == "" {
		return Selector{}, fmt.Errorf("empty selector expression")
	}
	return Selector{Dialect: dialect, Expr: expr}, nil
}

func isDialectPrefix(s string) bool {
	switch Dialect(strings.ToLower(s)) {
	case CSS, XPath:
		return true
	}
	return false
}

// String renders the selector the way it is written in configuration.
func (s Selector) String() string {
	if s.Dialect == XPath {
		return string(XPath) + ":" + s.Expr
	}
	return s.Expr
}

// Parse parses an HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// Select returns the nodes under root matched by sel, in document order.
func Select(sel Selector, root *html.Node) []*html.Node {
	if root == nil || sel.Expr == "" {
		return nil
	}

	switch sel.Dialect {
	case XPath:
		nodes, err := htmlquery.QueryAll(root, sel.Expr)
		if err != nil {
			return nil
		}
		return nodes
	default:
		return goquery.NewDocumentFromNode(root).Find(sel.Expr).Nodes
	}
}

// Text returns the trimmed text content of n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(goquery.NewDocumentFromNode(n).Text())
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Value returns attribute key of n. XPath expressions may select the
// attribute itself (".../@href") or a text node, and those results carry the
// value as text.
func Value(n *html.Node, key string) (string, bool) {
	if v, ok := Attr(n, key); ok {
		return v, true
	}
	switch {
	case n == nil:
		return "", false
	case n.Type == html.TextNode:
		return strings.TrimSpace(n.Data), true
	case n.Type == html.ElementNode && n.Parent == nil && n.Data == key && len(n.Attr) == 0:
		// htmlquery detaches attribute results from the tree.
		return Text(n), true
	}
	return "", false
}

// First returns the text of the first match, or fallback when nothing
// matches.
func First(sel Selector, root *html.Node, fallback string) string {
	nodes := Select(sel, root)
	if len(nodes) == 0 {
		return fallback
	}
	return Text(nodes[0])
}

// All returns the trimmed text of every match. Empty matches are kept.
func All(sel Selector, root *html.Node) []string {
	nodes := Select(sel, root)
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		texts = append(texts, Text(n))
	}
	return texts
}

// JoinAll joins the text of every match with newlines.
func JoinAll(sel Selector, root *html.Node) string {
	return strings.Join(All(sel, root), "\n")
}
