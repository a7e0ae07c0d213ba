// Package config loads and validates the doc2quiz YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/luxdoc/doc2quiz/internal/fileutil"
	"github.com/luxdoc/doc2quiz/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxPathLength     = 4096
	MaxURLLength      = 2048
	MaxArtifacts      = 16
	MaxArtifactLength = 32
	MaxTablePrefixLen = 32
	MaxWorkers        = 8
	MaxUploadMB       = 512
	MaxTimeout        = time.Hour
)

// Renderer backends accepted in renderer.backend.
const (
	BackendAuto        = "auto"
	BackendLibreOffice = "libreoffice"
	BackendWord        = "word"
)

// Defaults applied by DefaultConfig.
const (
	DefaultFormat      = "gift"
	DefaultTimeout     = 2 * time.Minute
	DefaultAddr        = ":8080"
	DefaultUploadDir   = "uploads"
	DefaultOutputDir   = "outputs"
	DefaultMaxUploadMB = 20
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
)

var tablePrefixPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Config holds all configuration for the CLI and the job service.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Sanitizer SanitizerConfig `yaml:"sanitizer"`
	Workers   int             `yaml:"workers"` // 0 = auto (GOMAXPROCS/2, clamped)
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Proof     ProofConfig     `yaml:"proof"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = next to the source document
	Format     string `yaml:"format"`     // "gift" or "hemis"
}

// RendererConfig selects the office-to-HTML backend.
type RendererConfig struct {
	Backend     string        `yaml:"backend"`     // "auto", "libreoffice", "word"
	SofficePath string        `yaml:"sofficePath"` // Empty = search PATH
	Timeout     time.Duration `yaml:"timeout"`     // Per-document budget applied by callers
}

// WorkspaceConfig controls where per-conversion scratch directories live.
type WorkspaceConfig struct {
	BaseDir string `yaml:"baseDir"` // Empty = os.TempDir()
}

// SanitizerConfig overrides the renderer artifact sequences stripped from text.
type SanitizerConfig struct {
	Artifacts []string `yaml:"artifacts"` // nil = built-in defaults
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json (serve only; the CLI logs text)
}

// ServerConfig configures the HTTP job service.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	UploadDir   string   `yaml:"uploadDir"`
	OutputDir   string   `yaml:"outputDir"`
	MaxUploadMB int      `yaml:"maxUploadMB"`
	CORSOrigins []string `yaml:"corsOrigins"`
	DatabaseURL string   `yaml:"databaseURL"` // Empty = in-memory job store
	TablePrefix string   `yaml:"tablePrefix"`
}

// ProofConfig configures the review sheet.
type ProofConfig struct {
	Style string `yaml:"style"` // Style name, CSS file path, or empty for the default
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Output:   OutputConfig{Format: DefaultFormat},
		Renderer: RendererConfig{Backend: BackendAuto, Timeout: DefaultTimeout},
		Log:      LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Server: ServerConfig{
			Addr:        DefaultAddr,
			UploadDir:   DefaultUploadDir,
			OutputDir:   DefaultOutputDir,
			MaxUploadMB: DefaultMaxUploadMB,
			CORSOrigins: []string{"*"},
		},
	}
}

// Validate checks enumerations, ranges and field lengths.
// Called automatically by LoadConfig, but available for callers that
// assemble a Config from flags or environment variables.
func (c *Config) Validate() error {
	paths := []struct{ name, value string }{
		{"input.defaultDir", c.Input.DefaultDir},
		{"output.defaultDir", c.Output.DefaultDir},
		{"renderer.sofficePath", c.Renderer.SofficePath},
		{"workspace.baseDir", c.Workspace.BaseDir},
		{"server.uploadDir", c.Server.UploadDir},
		{"server.outputDir", c.Server.OutputDir},
		{"proof.style", c.Proof.Style},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.name, p.value, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("server.databaseURL", c.Server.DatabaseURL, MaxURLLength); err != nil {
		return err
	}

	if err := validateOneOf("output.format", strings.ToLower(c.Output.Format), "", "gift", "hemis"); err != nil {
		return err
	}
	if err := validateOneOf("renderer.backend", strings.ToLower(c.Renderer.Backend), "", BackendAuto, BackendLibreOffice, BackendWord); err != nil {
		return err
	}
	if err := validateOneOf("log.level", strings.ToLower(c.Log.Level), "", "debug", "info", "warn", "error"); err != nil {
		return err
	}
	if err := validateOneOf("log.format", strings.ToLower(c.Log.Format), "", "text", "json"); err != nil {
		return err
	}

	if c.Renderer.Timeout < 0 || c.Renderer.Timeout > MaxTimeout {
		return fmt.Errorf("%w: renderer.timeout must be between 0 and %s, got %s", ErrInvalidValue, MaxTimeout, c.Renderer.Timeout)
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}
	if c.Server.MaxUploadMB < 0 || c.Server.MaxUploadMB > MaxUploadMB {
		return fmt.Errorf("%w: server.maxUploadMB must be between 0 and %d, got %d", ErrInvalidValue, MaxUploadMB, c.Server.MaxUploadMB)
	}

	if len(c.Sanitizer.Artifacts) > MaxArtifacts {
		return fmt.Errorf("%w: sanitizer.artifacts has %d entries (max %d)", ErrInvalidValue, len(c.Sanitizer.Artifacts), MaxArtifacts)
	}
	for i, a := range c.Sanitizer.Artifacts {
		if a == "" {
			return fmt.Errorf("%w: sanitizer.artifacts[%d] is empty", ErrInvalidValue, i)
		}
		if err := validateFieldLength(fmt.Sprintf("sanitizer.artifacts[%d]", i), a, MaxArtifactLength); err != nil {
			return err
		}
	}

	for i, origin := range c.Server.CORSOrigins {
		if err := validateFieldLength(fmt.Sprintf("server.corsOrigins[%d]", i), origin, MaxURLLength); err != nil {
			return err
		}
	}
	if p := c.Server.TablePrefix; p != "" {
		if err := validateFieldLength("server.tablePrefix", p, MaxTablePrefixLen); err != nil {
			return err
		}
		if !tablePrefixPattern.MatchString(p) {
			return fmt.Errorf("%w: server.tablePrefix %q must match %s", ErrInvalidValue, p, tablePrefixPattern)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateOneOf(fieldName, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%w: %s %q (allowed: %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed[1:], ", "))
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFile(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/doc2quiz/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	tried := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		local := name + ext
		if fileutil.FileExists(local) {
			return local, nil
		}
		tried = append(tried, local)
	}

	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(dir, "doc2quiz", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			tried = append(tried, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
