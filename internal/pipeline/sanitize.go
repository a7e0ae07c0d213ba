package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultArtifacts are byte sequences the converters leave in text nodes.
// "Ã¹" is the UTF-8 encoding of "ù" read back as Latin-1, seen in
// LibreOffice output of some Cyrillic/Uzbek documents. It is stripped
// unconditionally, which also removes it from legitimate text; override
// with Sanitizer.Artifacts when a corpus shows otherwise.
var DefaultArtifacts = []string{"Ã¹"}

// Sanitizer cleans human-readable text nodes of a rendered document.
type Sanitizer struct {
	replacer *strings.Replacer
}

// NewSanitizer builds a Sanitizer that strips artifacts (DefaultArtifacts when nil)
// and escapes angle brackets. Empty artifact strings are ignored.
func NewSanitizer(artifacts []string) *Sanitizer {
	if artifacts == nil {
		artifacts = DefaultArtifacts
	}

	pairs := make([]string, 0, 2*len(artifacts)+4)
	for _, a := range artifacts {
		if a != "" {
			pairs = append(pairs, a, "")
		}
	}
	pairs = append(pairs, "<", "&lt;", ">", "&gt;")

	return &Sanitizer{replacer: strings.NewReplacer(pairs...)}
}

// Sanitize returns a cleaned copy of doc. Text under script, style, title
// and meta elements, and under spans styled white-space:nowrap, is kept verbatim.
func (s *Sanitizer) Sanitize(doc *html.Node) *html.Node {
	out := Clone(doc)
	s.walk(out, false)
	return out
}

// CleanText applies the text transformation to a single string.
func (s *Sanitizer) CleanText(text string) string {
	return s.replacer.Replace(text)
}

func (s *Sanitizer) walk(n *html.Node, verbatim bool) {
	switch n.Type {
	case html.ElementNode:
		if isVerbatim(n) {
			verbatim = true
		}
	case html.TextNode:
		if !verbatim {
			if cleaned := s.CleanText(n.Data); cleaned != n.Data {
				n.Data = cleaned
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.walk(c, verbatim)
	}
}

func isVerbatim(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Title, atom.Meta:
		return true
	case atom.Span:
		return isNoWrap(attr(n, "style"))
	}
	return false
}

// isNoWrap matches "white-space: nowrap" regardless of spacing and case.
func isNoWrap(style string) bool {
	if style == "" {
		return false
	}
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			return -1
		}
		return r
	}, strings.ToLower(style))
	return strings.Contains(compact, "white-space:nowrap")
}
