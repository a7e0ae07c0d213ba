package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrParse is returned when rendered markup cannot be decoded or parsed.
var ErrParse = errors.New("markup parse failed")

// ParseFile parses the renderer output at path.
// Open errors are returned as-is; decoding and parsing errors wrap ErrParse.
func ParseFile(path string) (*html.Node, error) {
	f, err := os.Open(path) // #nosec G304 -- renderer output inside the workspace
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, "")
}

// Parse decodes r using the charset declared in contentType or the
// document's <meta> tags (Word's filtered HTML is often windows-125x)
// and builds the document tree.
func Parse(r io.Reader, contentType string) (*html.Node, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: detecting charset: %v", ErrParse, err)
	}

	doc, err := html.Parse(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}

// Clone returns a deep copy of n detached from any parent.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
