package doc2quiz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/luxdoc/doc2quiz/internal/render"
)

// QuestionRecord is one extracted quiz item.
// Question may contain inline image markup of the form
// <img src="data:<mime>;base64,<payload>">.
type QuestionRecord struct {
	Question      string
	CorrectAnswer string
	Distractors   []string
}

// Format selects the quiz interchange syntax.
type Format string

// Supported output formats.
const (
	FormatGIFT  Format = "gift"
	FormatHemis Format = "hemis"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatGIFT, FormatHemis}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// Validate reports ErrInvalidFormat for anything but gift or hemis.
func (f Format) Validate() error {
	switch f {
	case FormatGIFT, FormatHemis:
		return nil
	}
	return fmt.Errorf("%w: %q (want gift or hemis)", ErrInvalidFormat, string(f))
}

// Extension is the file extension used for emitted quizzes.
func (f Format) Extension() string {
	return ".txt"
}

func (f Format) String() string {
	return string(f)
}

// Input describes one conversion.
type Input struct {
	Path   string // .doc or .docx file
	Format Format // Empty = records only, no emitted text
}

// Result holds the extracted records and, when a format was requested,
// the emitted quiz text.
type Result struct {
	Records  []QuestionRecord
	Text     string
	Renderer string // backend that produced the markup
}

// Renderer converts an office document into browser markup.
// Implementations live in internal/render; tests substitute fakes.
type Renderer = render.Renderer

// Option configures a Converter.
type Option func(*Converter)

// WithRenderer fixes the rendering backend instead of probing on first use.
func WithRenderer(r Renderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}

// WithBackend names the backend probed on first use: "auto" (default),
// "libreoffice" or "word". Ignored when WithRenderer is set.
func WithBackend(name string) Option {
	return func(c *Converter) {
		if name != "" {
			c.backend = name
		}
	}
}

// WithSofficePath sets the LibreOffice binary. Empty searches PATH.
func WithSofficePath(path string) Option {
	return func(c *Converter) {
		c.sofficePath = path
	}
}

// WithLogger sets the structured logger. Default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWorkspaceDir sets the parent directory for per-conversion workspaces.
// Empty uses os.TempDir().
func WithWorkspaceDir(dir string) Option {
	return func(c *Converter) {
		c.workspaceDir = dir
	}
}

// WithArtifacts overrides the renderer artifact sequences stripped from text.
func WithArtifacts(artifacts []string) Option {
	return func(c *Converter) {
		c.artifacts = artifacts
	}
}

// WithHeaderMarkers overrides the header-row markers.
func WithHeaderMarkers(markers []string) Option {
	return func(c *Converter) {
		c.headerMarkers = markers
	}
}

// WithStyle sets the review sheet style: an embedded style name, a CSS file
// path, or raw CSS content.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.styleInput = style
	}
}

// WithAssetPath adds a directory of custom styles/ and templates/ that take
// precedence over the embedded review sheet assets.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.assetPath = dir
	}
}

// WithTimeout bounds review sheet page loads when ctx carries no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) {
		if d > 0 {
			c.timeout = d
		}
	}
}
