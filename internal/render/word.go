package render

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// wdFormatFilteredHTML is Word's WdSaveFormat for filtered HTML.
const wdFormatFilteredHTML = 10

// wordProbe succeeds when the Word COM server is registered.
const wordProbe = `if (Test-Path 'Registry::HKEY_CLASSES_ROOT\Word.Application\CLSID') { exit 0 } else { exit 1 }`

// Word renders documents by automating Microsoft Word through PowerShell COM.
type Word struct {
	PowerShell string // Empty searches PATH for powershell.exe then pwsh.exe
	Runner     CommandRunner
}

var _ Renderer = (*Word)(nil)

// NewWord creates the Word backend.
func NewWord(opts Options) *Word {
	return &Word{Runner: opts.runner()}
}

func (w *Word) Name() string { return BackendWord }

func (w *Word) Available(ctx context.Context) error {
	shell, err := w.shell()
	if err != nil {
		return err
	}
	if _, _, err := w.Runner.Run(ctx, shell, psArgs(wordProbe)...); err != nil {
		return fmt.Errorf("%w: word: COM server not registered", ErrUnavailable)
	}
	return nil
}

// Render opens a read-only copy in an invisible Word instance, saves it as
// filtered HTML and always quits Word, even when the document fails to open.
func (w *Word) Render(ctx context.Context, srcPath, outDir string) (string, error) {
	shell, err := w.shell()
	if err != nil {
		return "", err
	}

	src, err := filepath.Abs(srcPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out, err := filepath.Abs(filepath.Join(outDir, stem+".htm"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	_, stderr, err := w.Runner.Run(ctx, shell, psArgs(wordScript(src, out))...)
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

func (w *Word) shell() (string, error) {
	names := []string{"powershell.exe", "pwsh.exe"}
	if w.PowerShell != "" {
		names = []string{w.PowerShell}
	}
	for _, name := range names {
		if path, err := w.Runner.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: word: PowerShell not found", ErrUnavailable)
}

func psArgs(script string) []string {
	return []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", script}
}

// wordScript builds the automation script. Documents opened from the
// workspace may land in Protected View, in which case Open returns nothing
// and the document has to be taken from ProtectedViewWindows.
func wordScript(src, out string) string {
	return fmt.Sprintf(`$ErrorActionPreference = 'Stop'
$word = New-Object -ComObject Word.Application
try {
  $word.Visible = $false
  $word.DisplayAlerts = 0
  $doc = $word.Documents.Open(%s, $false, $true, $false)
  if ($doc -eq $null -and $word.ProtectedViewWindows.Count -gt 0) {
    $doc = $word.ProtectedViewWindows.Item(1).Edit()
  }
  if ($doc -eq $null) { throw 'document could not be opened' }
  $doc.SaveAs2(%s, %d)
  $doc.Close($false)
} finally {
  $word.Quit()
  [void][System.Runtime.InteropServices.Marshal]::ReleaseComObject($word)
}
`, psQuote(src), psQuote(out), wdFormatFilteredHTML)
}

// psQuote renders s as a single-quoted PowerShell literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
