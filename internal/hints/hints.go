// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/luxdoc/doc2quiz/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// GOOS is the platform used to tailor renderer hints. Overridden in tests.
var GOOS = runtime.GOOS

// ForConverterUnavailable returns hints when no document converter is installed.
func ForConverterUnavailable() string {
	var hints []string

	if GOOS == "windows" {
		hints = append(hints, "install Microsoft Word or LibreOffice")
	} else {
		hints = append(hints, "install LibreOffice (soffice must be on PATH)")
	}
	if os.Getenv("DOC2QUIZ_SOFFICE") == "" {
		hints = append(hints, "or point --soffice / DOC2QUIZ_SOFFICE at the binary")
	}
	if IsInContainer() {
		hints = append(hints, "in Docker, add libreoffice-writer to the image")
	}

	return formatHints(hints)
}

// ForRenderFailure returns a hint for documents the converter could not open.
func ForRenderFailure() string {
	return format("the document may be corrupt or password-protected; open and re-save it, then retry")
}

// ForNoRecords returns a hint when a document produced no questions.
func ForNoRecords() string {
	return format("questions must be in a table: number | question | correct answer | wrong answers...")
}

// ForBrowserConnect returns hints for browser connection errors (proof PDFs).
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow conversions.
func ForTimeout() string {
	return format("large documents with many images take longer; use --timeout 5m")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config dir.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), "/doc2quiz/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound returns hints for proof style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
