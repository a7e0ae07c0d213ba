package pipeline

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// mustParse parses an HTML string or fails the test.
func mustParse(t *testing.T, markup string) *html.Node {
	t.Helper()

	doc, err := Parse(strings.NewReader(markup), "text/html; charset=utf-8")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

// mustRender renders a tree or fails the test.
func mustRender(t *testing.T, doc *html.Node) string {
	t.Helper()

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		t.Fatalf("html.Render() error = %v", err)
	}
	return buf.String()
}

// textOf returns the concatenated text node data under n, unescaped.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// findText returns the first text node whose data contains substr.
func findText(n *html.Node, substr string) *html.Node {
	if n.Type == html.TextNode && strings.Contains(n.Data, substr) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findText(c, substr); found != nil {
			return found
		}
	}
	return nil
}

// findElement returns the first element with the given tag name.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findElements returns every element with the given tag name in document order.
func findElements(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	if n.Type == html.ElementNode && n.Data == tag {
		found = append(found, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		found = append(found, findElements(c, tag)...)
	}
	return found
}
