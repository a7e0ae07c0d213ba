package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/luxdoc/doc2quiz"
	"github.com/luxdoc/doc2quiz/internal/config"
	"github.com/luxdoc/doc2quiz/internal/jobs"
	"github.com/luxdoc/doc2quiz/internal/server"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// ErrServe wraps listener failures.
var ErrServe = errors.New("server failed")

// runServe starts the HTTP job service and blocks until ctx is canceled,
// then drains requests and waits for running conversions.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		return usageError(err)
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	// A missing .env is normal in production.
	if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", flags.envFile, err)
	}

	cfg, err := resolveConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	mergeServeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, cfg.Log.Level, cfg.Log.Format)
	if flags.common.verbose {
		logger = newLogger(env.Stderr, "debug", cfg.Log.Format)
	}

	defaultFormat, err := doc2quiz.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	for _, dir := range []string{cfg.Server.UploadDir, cfg.Server.OutputDir} {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}

	store, closeStore, err := openStore(ctx, cfg.Server, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	pool := doc2quiz.NewConverterPool(doc2quiz.ResolvePoolSize(cfg.Workers), converterOptions(cfg, logger, env)...)
	defer func() { _ = pool.Close() }()

	runner := jobs.NewRunner(store, pool, jobs.RunnerConfig{
		OutputDir: cfg.Server.OutputDir,
		Timeout:   cfg.Renderer.Timeout,
		Logger:    logger,
	})
	srv := server.New(store, runner, server.Config{
		UploadDir:      cfg.Server.UploadDir,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		CORSOrigins:    cfg.Server.CORSOrigins,
		DefaultFormat:  defaultFormat,
	}, logger)

	httpServer := &http.Server{
		Addr:              server.Addr(cfg.Server.Addr),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.Info("server starting",
		"addr", httpServer.Addr,
		"workers", pool.Size(),
		"format", defaultFormat,
		"persistent", cfg.Server.DatabaseURL != "",
	)
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		runner.Wait()
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%w: %v", ErrServe, err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}
	// ListenAndServe returns ErrServerClosed once Shutdown has been called.
	<-errCh
	runner.Wait()
	logger.Info("server stopped")
	return nil
}

// mergeServeFlags merges CLI flags into config. CLI values override config values.
func mergeServeFlags(flags *serveFlags, cfg *config.Config) {
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.databaseURL != "" {
		cfg.Server.DatabaseURL = flags.databaseURL
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	mergeRendererFlags(flags.renderer, cfg)
}

// openStore returns the PostgreSQL store when a database URL is configured
// and the in-memory store otherwise.
func openStore(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) (jobs.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("no database configured, jobs are kept in memory")
		return jobs.NewMemoryStore(), func() {}, nil
	}

	pool, err := jobs.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store, err := jobs.NewPostgresStore(pool, cfg.TablePrefix)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}

	logger.Info("database connected", "table_prefix", cfg.TablePrefix)
	return store, store.Close, nil
}
