package sources

import (
	"bytes"
	stdhtml "html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/i474232898/econ-dashboard/internal/common"
)

// textPolicy strips every tag; script and style bodies are dropped entirely.
var textPolicy = bluemonday.StrictPolicy()

// nodeText returns the visible text inside n, trimmed and with whitespace
// runs collapsed.
func nodeText(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return common.CollapseSpace(stdhtml.UnescapeString(textPolicy.Sanitize(buf.String())))
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// findAll returns every element below n for which match is true, in
// document order.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && match(c) {
			out = append(out, c)
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	walk(n)
	return out
}

// findFirst returns the first descendant element of n with the given tag.
func findFirst(n *html.Node, tag atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == tag {
			return c
		}
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// elementChildren lists the element children of n, which is what CSS
// :nth-child positions count.
func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func isCalendarRow(n *html.Node) bool {
	if n.DataAtom != atom.Tr {
		return false
	}
	v, ok := attr(n, "data-url")
	return ok && strings.Contains(v, "/calendar/")
}
