package pipeline

import (
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// TestTableExtractor_Extract - Row to record mapping
// ---------------------------------------------------------------------------

func TestTableExtractor_Extract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		markup     string
		want       []Row
		wantReport ExtractReport
	}{
		{
			name: "header then question",
			markup: `<table>
				<tr><th>№</th><th>Savol</th><th>To'g'ri javob</th><th>Muqobil 1</th></tr>
				<tr><td>1</td><td>2+2?</td><td>4</td><td>3</td><td>5</td></tr>
			</table>`,
			want:       []Row{{Question: "2+2?", Answer: "4", Distractors: []string{"3", "5"}}},
			wantReport: ExtractReport{Tables: 1, Headers: 1},
		},
		{
			name:       "exactly three cells yields no distractors",
			markup:     `<table><tr><td>1</td><td>Capital of Uzbekistan?</td><td>Tashkent</td></tr></table>`,
			want:       []Row{{Question: "Capital of Uzbekistan?", Answer: "Tashkent"}},
			wantReport: ExtractReport{Tables: 1},
		},
		{
			name:       "short rows skipped",
			markup:     `<table><tr><td>1</td><td>only two</td></tr><tr><td>x</td></tr></table>`,
			wantReport: ExtractReport{Tables: 1, Short: 2},
		},
		{
			name:       "blank question and answer skipped",
			markup:     `<table><tr><td>1</td><td> &nbsp; </td><td></td><td>orphan</td></tr></table>`,
			wantReport: ExtractReport{Tables: 1, Blank: 1},
		},
		{
			name:       "answer without question kept",
			markup:     `<table><tr><td>1</td><td></td><td>A</td></tr></table>`,
			want:       []Row{{Question: "", Answer: "A"}},
			wantReport: ExtractReport{Tables: 1},
		},
		{
			name:       "empty distractor cells dropped",
			markup:     `<table><tr><td>1</td><td>Q</td><td>A</td><td></td><td>D2</td><td> </td></tr></table>`,
			want:       []Row{{Question: "Q", Answer: "A", Distractors: []string{"D2"}}},
			wantReport: ExtractReport{Tables: 1},
		},
		{
			name: "whitespace collapsed across runs",
			markup: `<table><tr><td>1</td><td><p>What   is</p>
				<p>&nbsp;the <b>answer</b>?</p></td><td> forty&nbsp;&nbsp;two </td></tr></table>`,
			want:       []Row{{Question: "What is the answer ?", Answer: "forty two"}},
			wantReport: ExtractReport{Tables: 1},
		},
		{
			name: "tables in document order",
			markup: `<table><tr><td>1</td><td>Q1</td><td>A1</td></tr></table>
				<p>between</p>
				<table><tr><td>1</td><td>Q2</td><td>A2</td></tr></table>`,
			want: []Row{
				{Question: "Q1", Answer: "A1"},
				{Question: "Q2", Answer: "A2"},
			},
			wantReport: ExtractReport{Tables: 2},
		},
		{
			name: "nested table rows read once",
			markup: `<table><tr><td>1</td><td>Outer</td><td>A</td><td>
				<table><tr><td>9</td><td>Inner</td><td>B</td></tr></table>
			</td></tr></table>`,
			want: []Row{
				{Question: "Outer", Answer: "A", Distractors: []string{"9 Inner B"}},
				{Question: "Inner", Answer: "B"},
			},
			wantReport: ExtractReport{Tables: 2},
		},
		{
			name:       "no tables",
			markup:     `<p>Savol 1: ...</p>`,
			wantReport: ExtractReport{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, report := (&TableExtractor{}).Extract(mustParse(t, tt.markup))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rows = %#v, want %#v", got, tt.want)
			}
			if report != tt.wantReport {
				t.Errorf("report = %+v, want %+v", report, tt.wantReport)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsHeader - Localized header markers
// ---------------------------------------------------------------------------

func TestIsHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		question string
		want     bool
	}{
		{"Savol", true},
		{"SAVOLLAR", true},
		{"Question text", true},
		{"To‘g‘ri javob", true},
		{"Toʻgʻri javob", true},
		{"To`g`ri javob", true},
		{"Correct answer", true},
		{"Савол", true},
		{"Тўғри жавоб", true},
		{"Poytaxt qaysi?", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			t.Parallel()

			if got := isHeader(tt.question, DefaultHeaderMarkers); got != tt.want {
				t.Errorf("isHeader(%q) = %v, want %v", tt.question, got, tt.want)
			}
		})
	}
}

func TestTableExtractor_CustomMarkers(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<table><tr><td>#</td><td>Frage</td><td>Antwort</td></tr><tr><td>1</td><td>Savol?</td><td>Ha</td></tr></table>`)
	rows, report := (&TableExtractor{HeaderMarkers: []string{"frage"}}).Extract(doc)

	if report.Headers != 1 || len(rows) != 1 || rows[0].Question != "Savol?" {
		t.Errorf("rows = %#v, report = %+v", rows, report)
	}
}

// ---------------------------------------------------------------------------
// TestCellText - Embedded image text survives extraction
// ---------------------------------------------------------------------------

func TestCellText_InlineImage(t *testing.T) {
	t.Parallel()

	dir, markup := newWorkspace(t, map[string][]byte{"quiz_files/image001.png": pngBytes})
	doc := mustParse(t, `<table><tr><td>1</td><td>Rasmga qarang: <img src="quiz_files/image001.png"></td><td>A</td></tr></table>`)

	embedded, _ := (&ImageEmbedder{Root: dir}).Embed(NewSanitizer(nil).Sanitize(doc), markup)
	rows, _ := (&TableExtractor{}).Extract(embedded)

	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	want := `Rasmga qarang: <img src="data:image/png;base64,`
	if got := rows[0].Question; len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("question = %q, want prefix %q", got, want)
	}
}
