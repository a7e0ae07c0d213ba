package doc2quiz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/luxdoc/doc2quiz/internal/fileutil"
	"github.com/luxdoc/doc2quiz/internal/pipeline"
	"github.com/luxdoc/doc2quiz/internal/proof"
	"github.com/luxdoc/doc2quiz/internal/render"
)

// defaultTimeout bounds review sheet page loads when ctx has no deadline.
const defaultTimeout = 30 * time.Second

// Compile-time interface implementation checks.
var (
	_ Renderer     = (*render.LibreOffice)(nil)
	_ Renderer     = (*render.Word)(nil)
	_ pdfConverter = (*rodConverter)(nil)
	_ pdfRenderer  = (*rodRenderer)(nil)
)

// Converter turns office documents into quiz records and quiz text.
// Create with NewConverter, call Convert or ConvertFile, and Close when done.
// A Converter may be shared between goroutines; each call gets its own workspace.
type Converter struct {
	logger        *slog.Logger
	renderer      Renderer
	backend       string
	sofficePath   string
	workspaceDir  string
	artifacts     []string
	headerMarkers []string
	styleInput    string
	assetPath     string
	timeout       time.Duration

	sanitizer *pipeline.Sanitizer
	extractor *pipeline.TableExtractor

	rendererMu sync.Mutex

	proofMu sync.Mutex
	sheet   *proof.Renderer
	pdf     pdfConverter
}

// NewConverter creates a Converter. The rendering backend is probed on the
// first conversion unless WithRenderer fixes it.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		backend: render.BackendAuto,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.sanitizer = pipeline.NewSanitizer(c.artifacts)
	c.extractor = &pipeline.TableExtractor{HeaderMarkers: c.headerMarkers}
	return c
}

// DetectRenderer probes for a usable backend. backend is "auto", "libreoffice"
// or "word"; sofficePath optionally names the LibreOffice binary.
func DetectRenderer(ctx context.Context, backend, sofficePath string) (Renderer, error) {
	r, err := render.Select(ctx, backend, render.Options{SofficePath: sofficePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConverterUnavailable, err)
	}
	return r, nil
}

// Renderer returns the backend, probing for one on first use.
// A failed probe is not cached; the next call probes again.
func (c *Converter) Renderer(ctx context.Context) (Renderer, error) {
	c.rendererMu.Lock()
	defer c.rendererMu.Unlock()

	if c.renderer != nil {
		return c.renderer, nil
	}
	r, err := DetectRenderer(ctx, c.backend, c.sofficePath)
	if err != nil {
		return nil, err
	}
	c.logger.Info("renderer selected", "backend", r.Name())
	c.renderer = r
	return r, nil
}

// Convert extracts the quiz records of one document and, when in.Format is
// set, emits them as quiz text. Failures after input validation are
// *ConversionError values. The conversion workspace is removed on every
// path, including internal panics, which are recovered as ErrRenderFailure.
func (c *Converter) Convert(ctx context.Context, in Input) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = newConversionError(ErrRenderFailure, in.Path, fmt.Errorf("internal error: %v", r))
		}
	}()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	log := c.logger.With("input", in.Path)

	r, err := c.Renderer(ctx)
	if err != nil {
		return nil, newConversionError(ErrConverterUnavailable, in.Path, err)
	}

	ws, err := newWorkspace(c.workspaceDir, in.Path)
	if err != nil {
		return nil, newConversionError(ErrIOFailure, in.Path, err)
	}
	log.Debug("workspace created", "dir", ws.Dir)
	defer func() {
		if rmErr := ws.Remove(); rmErr != nil {
			log.Warn("workspace cleanup failed", "dir", ws.Dir, "error", rmErr)
		}
	}()

	start := time.Now()
	markup, err := r.Render(ctx, ws.Source, ws.Dir)
	if err != nil {
		if errors.Is(err, render.ErrUnavailable) {
			return nil, newConversionError(ErrConverterUnavailable, in.Path, err)
		}
		return nil, newConversionError(ErrRenderFailure, in.Path, err)
	}
	log.Debug("document rendered", "backend", r.Name(), "markup", filepath.Base(markup), "elapsed", time.Since(start))

	doc, err := pipeline.ParseFile(markup)
	if err != nil {
		if errors.Is(err, pipeline.ErrParse) {
			return nil, newConversionError(ErrParseFailure, in.Path, err)
		}
		return nil, newConversionError(ErrIOFailure, in.Path, err)
	}

	doc = c.sanitizer.Sanitize(doc)

	embedder := &pipeline.ImageEmbedder{Root: ws.Dir}
	doc, imgReport := embedder.Embed(doc, markup)
	for _, src := range imgReport.Dropped {
		log.Debug("image dropped", "src", src)
	}

	rows, rowReport := c.extractor.Extract(doc)
	if rowReport.Short+rowReport.Blank+rowReport.Headers > 0 {
		log.Debug("rows skipped",
			"short", rowReport.Short, "blank", rowReport.Blank, "headers", rowReport.Headers)
	}

	records := make([]QuestionRecord, len(rows))
	for i, row := range rows {
		records[i] = QuestionRecord{
			Question:      row.Question,
			CorrectAnswer: row.Answer,
			Distractors:   row.Distractors,
		}
	}

	res = &Result{Records: records, Renderer: r.Name()}
	if in.Format != "" {
		res.Text, err = Emit(in.Format, records)
		if err != nil {
			return nil, err
		}
	}

	log.Info("document converted",
		"records", len(records), "tables", rowReport.Tables,
		"images", imgReport.Embedded, "elapsed", time.Since(start))
	return res, nil
}

// ConvertFile converts in and writes the quiz text to out, replacing any
// existing file atomically. Parent directories of out are created.
func (c *Converter) ConvertFile(ctx context.Context, in, out string, format Format) (*Result, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if out == "" {
		return nil, fmt.Errorf("%w: output", ErrEmptyPath)
	}

	res, err := c.Convert(ctx, Input{Path: in, Format: format})
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, newConversionError(ErrIOFailure, in, err)
		}
	}
	if err := fileutil.WriteFileAtomic(out, []byte(res.Text), 0o644); err != nil {
		return nil, newConversionError(ErrIOFailure, in, err)
	}
	return res, nil
}

// Close releases the review sheet browser, if one was started.
func (c *Converter) Close() error {
	c.proofMu.Lock()
	defer c.proofMu.Unlock()

	if c.pdf != nil {
		err := c.pdf.Close()
		c.pdf = nil
		return err
	}
	return nil
}

// validateInput rejects inputs that cannot be converted before any
// workspace is created.
func validateInput(in Input) error {
	if strings.TrimSpace(in.Path) == "" {
		return ErrEmptyPath
	}
	if !fileutil.IsDocument(in.Path) {
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, filepath.Ext(in.Path))
	}
	if in.Format != "" {
		if err := in.Format.Validate(); err != nil {
			return err
		}
	}
	return nil
}
