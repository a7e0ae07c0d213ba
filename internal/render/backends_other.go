//go:build !windows

package render

// DefaultBackends lists the probing order outside Windows.
func DefaultBackends(opts Options) []Renderer {
	return []Renderer{NewLibreOffice(opts)}
}
