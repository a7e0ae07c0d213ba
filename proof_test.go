package doc2quiz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakePDF struct {
	gotHTML string
	err     error
	closed  bool
}

func (f *fakePDF) ToPDF(_ context.Context, htmlContent string) ([]byte, error) {
	f.gotHTML = htmlContent
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7"), nil
}

func (f *fakePDF) Close() error {
	f.closed = true
	return nil
}

var proofRecords = []QuestionRecord{
	{Question: "What is 2+2?", CorrectAnswer: "4", Distractors: []string{"3", "5"}},
}

func TestProof_HTML(t *testing.T) {
	t.Parallel()

	c := NewConverter()
	res, err := c.Proof(context.Background(), "Arithmetic", proofRecords, false)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	if res.PDF != nil {
		t.Error("PDF produced without request")
	}

	html := string(res.HTML)
	for _, want := range []string{"<title>Arithmetic</title>", "<style>", "<strong>4</strong>", "<li>3</li>"} {
		if !strings.Contains(html, want) {
			t.Errorf("review sheet missing %q", want)
		}
	}
}

func TestProof_PDF(t *testing.T) {
	t.Parallel()

	pdf := &fakePDF{}
	c := NewConverter(WithStyle("compact"))
	c.pdf = pdf

	res, err := c.Proof(context.Background(), "Quiz", proofRecords, true)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	if string(res.PDF) != "%PDF-1.7" {
		t.Errorf("PDF = %q", res.PDF)
	}
	if pdf.gotHTML != string(res.HTML) {
		t.Error("PDF rendered from different HTML than returned")
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if !pdf.closed {
		t.Error("Close did not release the PDF converter")
	}
}

func TestProof_PDFError(t *testing.T) {
	t.Parallel()

	c := NewConverter()
	c.pdf = &fakePDF{err: ErrBrowserConnect}

	if _, err := c.Proof(context.Background(), "Quiz", proofRecords, true); !errors.Is(err, ErrBrowserConnect) {
		t.Errorf("Proof() = %v, want ErrBrowserConnect", err)
	}
}

func TestProof_Styles(t *testing.T) {
	t.Parallel()

	cssFile := filepath.Join(t.TempDir(), "sheet.css")
	if err := os.WriteFile(cssFile, []byte("h2 { color: teal }"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		style   string
		want    string
		wantErr error
	}{
		{"inline css", "body { margin: 1cm }", "margin: 1cm", nil},
		{"css file", cssFile, "color: teal", nil},
		{"unknown name", "nonexistent", "", ErrStyleNotFound},
		{"missing file", filepath.Join(t.TempDir(), "none.css"), "", ErrStyleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewConverter(WithStyle(tt.style))
			res, err := c.Proof(context.Background(), "Q", proofRecords, false)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Proof() = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Proof: %v", err)
			}
			if !strings.Contains(string(res.HTML), tt.want) {
				t.Errorf("sheet missing %q", tt.want)
			}
		})
	}
}
