package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/luxdoc/doc2quiz/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Conversion
	ConfigPath   string        // DOC2QUIZ_CONFIG: config file path
	Format       string        // DOC2QUIZ_FORMAT: gift or hemis
	Renderer     string        // DOC2QUIZ_RENDERER: auto, libreoffice, word
	Soffice      string        // DOC2QUIZ_SOFFICE: LibreOffice binary
	Timeout      time.Duration // DOC2QUIZ_TIMEOUT: per-document timeout
	Workers      int           // DOC2QUIZ_WORKERS: parallel workers
	InputDir     string        // DOC2QUIZ_INPUT_DIR: default input directory
	OutputDir    string        // DOC2QUIZ_OUTPUT_DIR: default output directory
	WorkspaceDir string        // DOC2QUIZ_WORKSPACE_DIR: scratch parent
	ProofStyle   string        // DOC2QUIZ_PROOF_STYLE: review sheet style
	LogLevel     string        // DOC2QUIZ_LOG_LEVEL: debug, info, warn, error
	LogFormat    string        // DOC2QUIZ_LOG_FORMAT: text, json

	// Service
	Addr        string   // DOC2QUIZ_ADDR: listen address or port
	DatabaseURL string   // DOC2QUIZ_DATABASE_URL: PostgreSQL URL
	TablePrefix string   // DOC2QUIZ_TABLE_PREFIX: job table prefix
	UploadDir   string   // DOC2QUIZ_UPLOAD_DIR: stored uploads
	ResultDir   string   // DOC2QUIZ_RESULT_DIR: job results
	MaxUploadMB int      // DOC2QUIZ_MAX_UPLOAD_MB: upload limit
	CORSOrigins []string // DOC2QUIZ_CORS_ORIGINS: comma-separated origins
}

// knownEnvVars lists valid DOC2QUIZ_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOC2QUIZ_CONFIG":        true,
	"DOC2QUIZ_FORMAT":        true,
	"DOC2QUIZ_RENDERER":      true,
	"DOC2QUIZ_SOFFICE":       true,
	"DOC2QUIZ_TIMEOUT":       true,
	"DOC2QUIZ_WORKERS":       true,
	"DOC2QUIZ_INPUT_DIR":     true,
	"DOC2QUIZ_OUTPUT_DIR":    true,
	"DOC2QUIZ_WORKSPACE_DIR": true,
	"DOC2QUIZ_PROOF_STYLE":   true,
	"DOC2QUIZ_LOG_LEVEL":     true,
	"DOC2QUIZ_LOG_FORMAT":    true,
	"DOC2QUIZ_ADDR":          true,
	"DOC2QUIZ_DATABASE_URL":  true,
	"DOC2QUIZ_TABLE_PREFIX":  true,
	"DOC2QUIZ_UPLOAD_DIR":    true,
	"DOC2QUIZ_RESULT_DIR":    true,
	"DOC2QUIZ_MAX_UPLOAD_MB": true,
	"DOC2QUIZ_CORS_ORIGINS":  true,
	"DOC2QUIZ_CONTAINER":     true,
	// Test-only, read by the PostgreSQL integration tests.
	"DOC2QUIZ_TEST_DATABASE_URL": true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:   getenv("DOC2QUIZ_CONFIG"),
		Format:       getenv("DOC2QUIZ_FORMAT"),
		Renderer:     getenv("DOC2QUIZ_RENDERER"),
		Soffice:      getenv("DOC2QUIZ_SOFFICE"),
		InputDir:     getenv("DOC2QUIZ_INPUT_DIR"),
		OutputDir:    getenv("DOC2QUIZ_OUTPUT_DIR"),
		WorkspaceDir: getenv("DOC2QUIZ_WORKSPACE_DIR"),
		ProofStyle:   getenv("DOC2QUIZ_PROOF_STYLE"),
		LogLevel:     getenv("DOC2QUIZ_LOG_LEVEL"),
		LogFormat:    getenv("DOC2QUIZ_LOG_FORMAT"),
		Addr:         getenv("DOC2QUIZ_ADDR"),
		DatabaseURL:  getenv("DOC2QUIZ_DATABASE_URL"),
		TablePrefix:  getenv("DOC2QUIZ_TABLE_PREFIX"),
		UploadDir:    getenv("DOC2QUIZ_UPLOAD_DIR"),
		ResultDir:    getenv("DOC2QUIZ_RESULT_DIR"),
	}

	if timeout := getenv("DOC2QUIZ_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := getenv("DOC2QUIZ_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if mb := getenv("DOC2QUIZ_MAX_UPLOAD_MB"); mb != "" {
		if n, err := strconv.Atoi(mb); err == nil && n > 0 {
			cfg.MaxUploadMB = n
		}
	}
	if origins := getenv("DOC2QUIZ_CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized DOC2QUIZ_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, "DOC2QUIZ_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config values with every variable that is set.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by the commands).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setString(&cfg.Output.Format, env.Format)
	setString(&cfg.Renderer.Backend, env.Renderer)
	setString(&cfg.Renderer.SofficePath, env.Soffice)
	setString(&cfg.Input.DefaultDir, env.InputDir)
	setString(&cfg.Output.DefaultDir, env.OutputDir)
	setString(&cfg.Workspace.BaseDir, env.WorkspaceDir)
	setString(&cfg.Proof.Style, env.ProofStyle)
	setString(&cfg.Log.Level, env.LogLevel)
	setString(&cfg.Log.Format, env.LogFormat)
	setString(&cfg.Server.Addr, env.Addr)
	setString(&cfg.Server.DatabaseURL, env.DatabaseURL)
	setString(&cfg.Server.TablePrefix, env.TablePrefix)
	setString(&cfg.Server.UploadDir, env.UploadDir)
	setString(&cfg.Server.OutputDir, env.ResultDir)

	if env.Timeout > 0 {
		cfg.Renderer.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.MaxUploadMB > 0 {
		cfg.Server.MaxUploadMB = env.MaxUploadMB
	}
	if len(env.CORSOrigins) > 0 {
		cfg.Server.CORSOrigins = env.CORSOrigins
	}
}

// resolveConfig loads the config named by flagConfig (or DOC2QUIZ_CONFIG)
// and applies environment overrides. Flags are merged by the caller.
func resolveConfig(flagConfig string, env *Environment) (*config.Config, error) {
	ec := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	name := flagConfig
	if name == "" {
		name = ec.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(ec, cfg)
	return cfg, nil
}
