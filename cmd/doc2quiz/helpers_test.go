package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// quizMarkup is what the fake renderer writes for every document.
const quizMarkup = `<html><body><table>
<tr><td>#</td><td>Savol</td><td>To'g'ri javob</td><td>Noto'g'ri</td></tr>
<tr><td>1</td><td>2+2?</td><td>4</td><td>3</td><td>5</td></tr>
<tr><td>2</td><td>Poytaxt?</td><td>Toshkent</td><td>Samarqand</td></tr>
</table></body></html>`

// fakeRenderer writes fixed markup, or fails for sources whose name
// contains "broken".
type fakeRenderer struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeRenderer) Name() string                    { return "fake" }
func (f *fakeRenderer) Available(context.Context) error { return nil }

func (f *fakeRenderer) Render(_ context.Context, src, outDir string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filepath.Base(src))
	f.mu.Unlock()

	if strings.Contains(filepath.Base(src), "broken") {
		return "", errors.New("source file could not be loaded")
	}
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out := filepath.Join(outDir, stem+".htm")
	return out, os.WriteFile(out, []byte(quizMarkup), 0o644)
}

func (f *fakeRenderer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// testEnvironment returns an Environment with captured output, a fixed
// clock, the fake renderer and only the given variables set.
func testEnvironment(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer, *fakeRenderer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	renderer := &fakeRenderer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC) },
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		Renderer: renderer,
	}
	return env, stdout, stderr, renderer
}

// setupTestDir creates a temp directory with the given file structure.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
