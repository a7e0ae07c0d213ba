//go:build windows

package render

// DefaultBackends lists the probing order on Windows: Word first, since it
// renders its own documents most faithfully, then LibreOffice.
func DefaultBackends(opts Options) []Renderer {
	return []Renderer{NewWord(opts), NewLibreOffice(opts)}
}
