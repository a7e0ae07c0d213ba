package render

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"strings"
)

// sofficeNames are searched on PATH when no explicit binary is configured.
var sofficeNames = []string{"soffice", "libreoffice"}

// LibreOffice renders documents with `soffice --headless --convert-to html`.
type LibreOffice struct {
	Binary string
	Runner CommandRunner
}

var _ Renderer = (*LibreOffice)(nil)

// NewLibreOffice creates the LibreOffice backend.
func NewLibreOffice(opts Options) *LibreOffice {
	return &LibreOffice{Binary: opts.SofficePath, Runner: opts.runner()}
}

func (l *LibreOffice) Name() string { return BackendLibreOffice }

func (l *LibreOffice) Available(ctx context.Context) error {
	_, err := l.binary()
	return err
}

// Render converts srcPath into outDir. Each call uses a fresh user profile
// inside outDir, so concurrent calls never share a running office instance.
func (l *LibreOffice) Render(ctx context.Context, srcPath, outDir string) (string, error) {
	bin, err := l.binary()
	if err != nil {
		return "", err
	}

	profile, err := profileURL(filepath.Join(outDir, ".lo-profile"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	args := []string{
		"--headless",
		"--norestore",
		"--nolockcheck",
		"-env:UserInstallation=" + profile,
		"--convert-to", "html",
		"--outdir", outDir,
		srcPath,
	}

	_, stderr, err := l.Runner.Run(ctx, bin, args...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, ctxErr)
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrRenderFailed, strings.TrimSpace(stderr), err)
	}

	return FindOutput(srcPath, outDir)
}

func (l *LibreOffice) binary() (string, error) {
	if l.Binary != "" {
		path, err := l.Runner.LookPath(l.Binary)
		if err != nil {
			return "", fmt.Errorf("%w: libreoffice: %v", ErrUnavailable, err)
		}
		return path, nil
	}
	for _, name := range sofficeNames {
		if path, err := l.Runner.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: libreoffice: none of %s found on PATH", ErrUnavailable, strings.Join(sofficeNames, ", "))
}

// profileURL turns a directory into the file:/// URL form soffice expects.
func profileURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letter
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}
