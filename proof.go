package doc2quiz

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/luxdoc/doc2quiz/internal/assets"
	"github.com/luxdoc/doc2quiz/internal/fileutil"
	"github.com/luxdoc/doc2quiz/internal/proof"
)

// ProofResult is a rendered review sheet.
type ProofResult struct {
	HTML []byte
	PDF  []byte // nil unless requested
}

// Proof renders records as a styled review sheet titled title. With
// withPDF the sheet is also printed through headless Chrome, started on the
// first request and kept until Close.
func (c *Converter) Proof(ctx context.Context, title string, records []QuestionRecord, withPDF bool) (*ProofResult, error) {
	c.proofMu.Lock()
	defer c.proofMu.Unlock()

	if c.sheet == nil {
		sheet, err := c.newSheetRenderer()
		if err != nil {
			return nil, err
		}
		c.sheet = sheet
	}

	items := make([]proof.Item, len(records))
	for i, r := range records {
		items[i] = proof.Item{Question: r.Question, Answer: r.CorrectAnswer, Distractors: r.Distractors}
	}

	page, err := c.sheet.ToHTML(ctx, proof.Sheet{Title: title, Items: items})
	if err != nil {
		return nil, fmt.Errorf("rendering review sheet: %w", err)
	}
	res := &ProofResult{HTML: []byte(page)}
	if !withPDF {
		return res, nil
	}

	if c.pdf == nil {
		c.pdf = newRodConverter(c.timeout)
	}
	res.PDF, err = c.pdf.ToPDF(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("printing review sheet: %w", err)
	}
	return res, nil
}

// newSheetRenderer resolves the style input: a CSS file path, inline CSS,
// or a style name looked up in the custom asset path and then the
// embedded styles.
func (c *Converter) newSheetRenderer() (*proof.Renderer, error) {
	loader, err := assets.NewResolver(c.assetPath)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	input := c.styleInput
	switch {
	case input == "":
		input = assets.DefaultStyleName
	case fileutil.IsFilePath(input):
		css, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrStyleNotFound, input, err)
		}
		return proof.NewRendererWithCSS(loader, string(css))
	case fileutil.IsCSS(input):
		return proof.NewRendererWithCSS(loader, input)
	}

	sheet, err := proof.NewRenderer(loader, input)
	if errors.Is(err, assets.ErrStyleNotFound) || errors.Is(err, assets.ErrInvalidAssetName) {
		return nil, fmt.Errorf("%w: %q", ErrStyleNotFound, input)
	}
	return sheet, err
}
