package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultHeaderMarkers identify header rows by a lowercase substring of the
// question cell. Apostrophe variants are normalized before matching.
var DefaultHeaderMarkers = []string{
	"savol",
	"question",
	"to'g'ri javob",
	"correct answer",
	"савол",
	"тўғри жавоб",
}

// Row is one question row read from a table.
type Row struct {
	Question    string
	Answer      string
	Distractors []string
}

// ExtractReport counts rows that did not produce a Row.
type ExtractReport struct {
	Tables  int
	Short   int // fewer than three cells
	Blank   int // empty question and answer
	Headers int
}

// TableExtractor reads question rows from every table of a document.
// Column 0 is ignored (numbering), column 1 is the question, column 2 the
// correct answer and any further non-empty columns are distractors.
type TableExtractor struct {
	// HeaderMarkers overrides DefaultHeaderMarkers when non-nil.
	HeaderMarkers []string
}

// Extract walks tables in document order. Rows belong to their nearest
// enclosing table, so rows of a nested table are read once, with that table.
func (x *TableExtractor) Extract(doc *html.Node) ([]Row, ExtractReport) {
	markers := x.HeaderMarkers
	if markers == nil {
		markers = DefaultHeaderMarkers
	}

	var rows []Row
	var report ExtractReport

	goquery.NewDocumentFromNode(doc).Find("table").Each(func(_ int, table *goquery.Selection) {
		report.Tables++
		tableNode := table.Get(0)

		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if tr.Closest("table").Get(0) != tableNode {
				return
			}

			cells := tr.ChildrenFiltered("td, th")
			if cells.Length() < 3 {
				report.Short++
				return
			}

			texts := make([]string, cells.Length())
			cells.Each(func(i int, cell *goquery.Selection) {
				texts[i] = CellText(cell.Get(0))
			})

			question, answer := texts[1], texts[2]
			if question == "" && answer == "" {
				report.Blank++
				return
			}
			if isHeader(question, markers) {
				report.Headers++
				return
			}

			var distractors []string
			for _, d := range texts[3:] {
				if d != "" {
					distractors = append(distractors, d)
				}
			}
			rows = append(rows, Row{Question: question, Answer: answer, Distractors: distractors})
		})
	})

	return rows, report
}

// CellText joins the descendant text of n with single spaces, collapsing
// every run of Unicode whitespace (NBSP included) and trimming the ends.
func CellText(n *html.Node) string {
	var words []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			words = append(words, strings.Fields(n.Data)...)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(words, " ")
}

var apostrophes = strings.NewReplacer("‘", "'", "’", "'", "ʻ", "'", "ʼ", "'", "`", "'")

func isHeader(question string, markers []string) bool {
	q := apostrophes.Replace(strings.ToLower(question))
	for _, m := range markers {
		if m != "" && strings.Contains(q, m) {
			return true
		}
	}
	return false
}
