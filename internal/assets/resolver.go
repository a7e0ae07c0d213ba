package assets

import "errors"

// Resolver tries a custom directory first and falls back to embedded
// assets when the custom location lacks the requested asset.
type Resolver struct {
	custom   Loader // nil if no custom path configured
	embedded Loader
}

var _ Loader = (*Resolver)(nil)

// NewResolver creates a Resolver. An empty customBasePath uses embedded assets only.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

func (r *Resolver) LoadStyle(name string) (string, error) {
	return r.withFallback(func(l Loader) (string, error) { return l.LoadStyle(name) })
}

func (r *Resolver) LoadTemplate(name string) (string, error) {
	return r.withFallback(func(l Loader) (string, error) { return l.LoadTemplate(name) })
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

func (r *Resolver) withFallback(load func(Loader) (string, error)) (string, error) {
	if r.custom == nil {
		return load(r.embedded)
	}

	content, err := load(r.custom)
	if err == nil {
		return content, nil
	}
	// Only "not found" falls through; validation and I/O errors surface.
	if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrTemplateNotFound) {
		return "", err
	}
	return load(r.embedded)
}
