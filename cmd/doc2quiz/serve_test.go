package main

// Notes:
// - The PostgreSQL branch of openStore is covered by the jobs package
//   integration tests; here only the in-memory store is opened.

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luxdoc/doc2quiz/internal/config"
	"github.com/luxdoc/doc2quiz/internal/jobs"
)

// ---------------------------------------------------------------------------
// TestMergeServeFlags - Flag precedence
// ---------------------------------------------------------------------------

func TestMergeServeFlags(t *testing.T) {
	t.Parallel()

	flags, err := parseServeFlags([]string{"-a", "9090", "--database-url", "postgres://db/quiz", "-w", "2", "--renderer", "word"})
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	mergeServeFlags(flags, cfg)

	if cfg.Server.Addr != "9090" || cfg.Server.DatabaseURL != "postgres://db/quiz" || cfg.Workers != 2 || cfg.Renderer.Backend != "word" {
		t.Errorf("merged config = %+v / workers %d", cfg.Server, cfg.Workers)
	}
	if flags.envFile != ".env" {
		t.Errorf("envFile default = %q", flags.envFile)
	}
}

func TestOpenStore_Memory(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, closeStore, err := openStore(context.Background(), config.ServerConfig{}, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()

	if _, ok := store.(*jobs.MemoryStore); !ok {
		t.Errorf("store = %T, want *jobs.MemoryStore", store)
	}
}

// ---------------------------------------------------------------------------
// TestRunServe - Startup and shutdown
// ---------------------------------------------------------------------------

func TestRunServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env, _, stderr, _ := testEnvironment(map[string]string{
		"DOC2QUIZ_UPLOAD_DIR": filepath.Join(dir, "uploads"),
		"DOC2QUIZ_RESULT_DIR": filepath.Join(dir, "results"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runServe(ctx, []string{"--addr", "127.0.0.1:0", "--env-file", filepath.Join(dir, "missing.env")}, env)
	if err != nil {
		t.Fatalf("runServe() error = %v", err)
	}

	if !isDir(filepath.Join(dir, "uploads")) || !isDir(filepath.Join(dir, "results")) {
		t.Error("upload and result directories should be created")
	}
	logs := stderr.String()
	for _, want := range []string{`"msg":"server starting"`, `"msg":"server stopped"`, "jobs are kept in memory"} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %q:\n%s", want, logs)
		}
	}
}

func TestRunServe_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		vars map[string]string
		want int
	}{
		{"unknown flag", []string{"--bogus"}, nil, ExitUsage},
		{"too many workers", []string{"-w", "99"}, nil, ExitUsage},
		{"bad format", nil, map[string]string{"DOC2QUIZ_FORMAT": "aiken"}, ExitUsage},
		{"bad table prefix", nil, map[string]string{"DOC2QUIZ_TABLE_PREFIX": "Drop;"}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _, _ := testEnvironment(tt.vars)
			args := append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, tt.args...)
			err := runServe(context.Background(), args, env)
			if err == nil {
				t.Fatal("runServe() error = nil")
			}
			if got := exitCodeFor(err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", err, got, tt.want)
			}
		})
	}
}
