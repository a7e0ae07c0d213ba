package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/luxdoc/doc2quiz"
	"github.com/luxdoc/doc2quiz/internal/assets"
	"github.com/luxdoc/doc2quiz/internal/config"
	"github.com/luxdoc/doc2quiz/internal/hints"
	"github.com/luxdoc/doc2quiz/internal/jobs"
	"github.com/luxdoc/doc2quiz/internal/render"
)

// Exit codes for the doc2quiz CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Successful conversion
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied
	ExitRenderer = 4 // Document converter or browser errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage errors checked first: an unknown backend also reads as unavailable.
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, render.ErrUnknownBackend) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, doc2quiz.ErrEmptyPath) ||
		errors.Is(err, doc2quiz.ErrUnsupportedExtension) ||
		errors.Is(err, doc2quiz.ErrInvalidFormat) ||
		errors.Is(err, doc2quiz.ErrStyleNotFound) ||
		errors.Is(err, jobs.ErrInvalidPrefix) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	// Converter and browser errors (exit 4)
	if errors.Is(err, doc2quiz.ErrConverterUnavailable) ||
		errors.Is(err, doc2quiz.ErrRenderFailure) ||
		errors.Is(err, doc2quiz.ErrBrowserConnect) ||
		errors.Is(err, doc2quiz.ErrPageCreate) ||
		errors.Is(err, doc2quiz.ErrPageLoad) ||
		errors.Is(err, doc2quiz.ErrPDFGeneration) {
		return ExitRenderer
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, doc2quiz.ErrIOFailure) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, render.ErrUnknownBackend):
		return ""
	case errors.Is(err, doc2quiz.ErrConverterUnavailable):
		return hints.ForConverterUnavailable()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, doc2quiz.ErrRenderFailure):
		return hints.ForRenderFailure()
	case errors.Is(err, doc2quiz.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, doc2quiz.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(userConfigPaths())
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

func userConfigPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "doc2quiz", "config.yaml")}
}
