package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/luxdoc/doc2quiz"
	"github.com/luxdoc/doc2quiz/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrNoInput        = errors.New("no input specified")
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrWriteOutput    = errors.New("failed to write output file")
)

// conversionParams groups parameters shared across batch conversion.
type conversionParams struct {
	format   doc2quiz.Format
	timeout  time.Duration
	proof    bool
	proofPDF bool
}

// runConvert orchestrates the conversion of a file or directory.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		return usageError(err)
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := resolveConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if err := mergeConvertFlags(flags, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := doc2quiz.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}

	files, err := discoverFiles(inputPath, resolveOutputDir(flags.output, cfg), format)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no .doc or .docx files found in %s", ErrNoInput, inputPath)
	}

	logger := newCLILogger(env.Stderr, flags.common.verbose)
	poolSize := doc2quiz.ResolvePoolSize(cfg.Workers)
	if poolSize > len(files) {
		poolSize = len(files)
	}
	logger.Debug("starting conversion", "files", len(files), "workers", poolSize, "format", format)

	pool := doc2quiz.NewConverterPool(poolSize, converterOptions(cfg, logger, env)...)
	defer func() { _ = pool.Close() }()

	params := &conversionParams{
		format:   format,
		timeout:  cfg.Renderer.Timeout,
		proof:    flags.proof.enabled,
		proofPDF: flags.proof.pdf,
	}

	results := convertBatch(ctx, pool, files, params)

	failed, firstErr := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed == 0 {
		return nil
	}
	if len(results) == 1 {
		return firstErr
	}
	return fmt.Errorf("%d of %d conversion(s) failed: %w", failed, len(results), firstErr)
}

// usageError wraps flag parse errors, leaving --help untouched.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// mergeConvertFlags merges CLI flags into config. CLI values override config values.
func mergeConvertFlags(flags *convertFlags, cfg *config.Config) error {
	if flags.format != "" {
		cfg.Output.Format = flags.format
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.workspace != "" {
		cfg.Workspace.BaseDir = flags.workspace
	}
	if flags.proof.style != "" {
		cfg.Proof.Style = flags.proof.style
	}
	mergeRendererFlags(flags.renderer, cfg)

	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flags.timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: %q must be positive", ErrInvalidTimeout, flags.timeout)
		}
		cfg.Renderer.Timeout = d
	}
	return nil
}

func mergeRendererFlags(flags rendererFlags, cfg *config.Config) {
	if flags.backend != "" {
		cfg.Renderer.Backend = flags.backend
	}
	if flags.soffice != "" {
		cfg.Renderer.SofficePath = flags.soffice
	}
}

// converterOptions maps configuration onto converter options.
func converterOptions(cfg *config.Config, logger *slog.Logger, env *Environment) []doc2quiz.Option {
	opts := []doc2quiz.Option{
		doc2quiz.WithLogger(logger),
		doc2quiz.WithBackend(cfg.Renderer.Backend),
		doc2quiz.WithSofficePath(cfg.Renderer.SofficePath),
		doc2quiz.WithWorkspaceDir(cfg.Workspace.BaseDir),
		doc2quiz.WithStyle(cfg.Proof.Style),
		doc2quiz.WithTimeout(cfg.Renderer.Timeout),
	}
	if len(cfg.Sanitizer.Artifacts) > 0 {
		opts = append(opts, doc2quiz.WithArtifacts(cfg.Sanitizer.Artifacts))
	}
	if env.Renderer != nil {
		opts = append(opts, doc2quiz.WithRenderer(env.Renderer))
	}
	return opts
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}
