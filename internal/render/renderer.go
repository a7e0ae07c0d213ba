package render

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/luxdoc/doc2quiz/internal/fileutil"
)

// Sentinel errors for rendering.
var (
	ErrUnavailable    = errors.New("document converter not available")
	ErrRenderFailed   = errors.New("document converter failed")
	ErrNoOutput       = errors.New("converter produced no HTML file")
	ErrUnknownBackend = errors.New("unknown renderer backend")
)

// Backend names.
const (
	BackendAuto        = "auto"
	BackendLibreOffice = "libreoffice"
	BackendWord        = "word"
)

// Renderer converts an office document into an HTML file plus an optional
// "<name>_files" assets directory inside outDir.
type Renderer interface {
	// Name identifies the backend in logs and diagnostics.
	Name() string

	// Available reports ErrUnavailable (wrapped) when the backend cannot run here.
	Available(ctx context.Context) error

	// Render converts srcPath and returns the path of the produced markup file.
	Render(ctx context.Context, srcPath, outDir string) (string, error)
}

// Options configure the built-in backends.
type Options struct {
	SofficePath string        // Explicit LibreOffice binary; empty searches PATH
	Runner      CommandRunner // Nil uses ExecRunner
}

func (o Options) runner() CommandRunner {
	if o.Runner != nil {
		return o.Runner
	}
	return &ExecRunner{}
}

// Select returns the backend named by name, probing availability.
// "auto" or "" probes the platform's backends in preference order.
func Select(ctx context.Context, name string, opts Options) (Renderer, error) {
	var r Renderer
	switch strings.ToLower(name) {
	case "", BackendAuto:
		return Detect(ctx, DefaultBackends(opts)...)
	case BackendLibreOffice:
		r = NewLibreOffice(opts)
	case BackendWord:
		r = NewWord(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}

	if err := r.Available(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Detect returns the first available backend.
func Detect(ctx context.Context, backends ...Renderer) (Renderer, error) {
	reasons := make([]string, 0, len(backends))
	for _, b := range backends {
		err := b.Available(ctx)
		if err == nil {
			return b, nil
		}
		reasons = append(reasons, err.Error())
	}
	if len(reasons) == 0 {
		return nil, fmt.Errorf("%w: no backends configured", ErrUnavailable)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnavailable, strings.Join(reasons, "; "))
}

// FindOutput locates the markup produced for srcPath in outDir,
// preferring "<stem>.htm" over "<stem>.html".
func FindOutput(srcPath, outDir string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	for _, ext := range []string{".htm", ".html"} {
		candidate := filepath.Join(outDir, stem+ext)
		if fileutil.FileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: expected %s.htm or %s.html in %s", ErrNoOutput, stem, stem, outDir)
}
