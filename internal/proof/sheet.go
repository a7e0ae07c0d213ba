package proof

import (
	"fmt"
	"regexp"
	"strings"
)

// Item is one question on the review sheet.
type Item struct {
	Question    string
	Answer      string
	Distractors []string
}

// Sheet is a titled list of items.
type Sheet struct {
	Title string
	Lang  string // html lang attribute, "uz" when empty
	Items []Item
}

// imgToken matches the inline image markup produced by the image embedder.
var imgToken = regexp.MustCompile(`<img\s[^>]*>`)

// mdEscaper escapes Markdown punctuation. Angle brackets and ampersands are
// left alone: the text already carries &lt; &gt; entities.
var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`#`, `\#`,
	`+`, `\+`,
	`-`, `\-`,
	`!`, `\!`,
	`|`, `\|`,
	`~`, `\~`,
	`=`, `\=`,
)

// Markdown renders the sheet. The correct answer is listed first, in bold.
func (s Sheet) Markdown() string {
	var b strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", EscapeMarkdown(s.Title))
	}
	fmt.Fprintf(&b, "<p class=\"meta\">%d</p>\n\n", len(s.Items))

	for i, it := range s.Items {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, EscapeMarkdown(flatten(it.Question)))
		if ans := flatten(it.Answer); ans != "" {
			fmt.Fprintf(&b, "- **%s**\n", EscapeMarkdown(ans))
		} else {
			b.WriteString("- \n")
		}
		for _, d := range it.Distractors {
			fmt.Fprintf(&b, "- %s\n", EscapeMarkdown(flatten(d)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// EscapeMarkdown backslash-escapes Markdown punctuation outside inline
// image tags.
func EscapeMarkdown(text string) string {
	locs := imgToken.FindAllStringIndex(text, -1)
	if locs == nil {
		return mdEscaper.Replace(text)
	}

	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		b.WriteString(mdEscaper.Replace(text[prev:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		prev = loc[1]
	}
	b.WriteString(mdEscaper.Replace(text[prev:]))
	return b.String()
}

// flatten keeps list items and headings on a single line.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
