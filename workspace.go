package doc2quiz

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/luxdoc/doc2quiz/internal/fileutil"
)

// workspace is the private directory of a single conversion. The renderer
// writes its markup and assets directory next to the copied source.
type workspace struct {
	Dir    string
	Source string
}

// newWorkspace creates a unique directory under baseDir (os.TempDir() when
// empty) and copies src into it under its original base name.
func newWorkspace(baseDir, src string) (*workspace, error) {
	if baseDir != "" {
		if err := os.MkdirAll(baseDir, 0o750); err != nil {
			return nil, fmt.Errorf("creating workspace base: %w", err)
		}
	}

	dir, err := os.MkdirTemp(baseDir, "doc2quiz-*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	ws := &workspace{Dir: dir, Source: filepath.Join(dir, filepath.Base(src))}
	if err := fileutil.CopyFile(src, ws.Source); err != nil {
		_ = ws.Remove()
		return nil, fmt.Errorf("copying source: %w", err)
	}
	return ws, nil
}

// Remove deletes the workspace and everything the renderer left in it.
func (w *workspace) Remove() error {
	return os.RemoveAll(w.Dir)
}
