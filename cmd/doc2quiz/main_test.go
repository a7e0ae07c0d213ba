package main

// Notes:
// - runMain is exercised end to end with the fake renderer injected through
//   Environment.Renderer; no office suite is needed.
// - main() itself (automaxprocs, signals, os.Exit) is not tested.

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestIsCommand - Command name detection
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"convert", true},
		{"serve", true},
		{"doctor", true},
		{"completion", true},
		{"version", true},
		{"help", true},
		{"foo", false},
		{"", false},
		{"quiz.docx", false},
		{"Convert", false},
	}

	for _, tt := range tests {
		if got := isCommand(tt.input); got != tt.want {
			t.Errorf("isCommand(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no command", args: []string{"doc2quiz"}, wantCode: ExitUsage, wantStderr: "Usage: doc2quiz"},
		{name: "unknown command", args: []string{"doc2quiz", "frobnicate"}, wantCode: ExitUsage, wantStderr: "Unknown command: frobnicate"},
		{name: "version", args: []string{"doc2quiz", "version"}, wantCode: ExitSuccess, wantStdout: "doc2quiz " + Version},
		{name: "help", args: []string{"doc2quiz", "help"}, wantCode: ExitSuccess, wantStdout: "Commands:"},
		{name: "help convert", args: []string{"doc2quiz", "help", "convert"}, wantCode: ExitSuccess, wantStdout: "--proof-pdf"},
		{name: "help serve", args: []string{"doc2quiz", "help", "serve"}, wantCode: ExitSuccess, wantStdout: "/download/{id}"},
		{name: "bad flag", args: []string{"doc2quiz", "convert", "--nope"}, wantCode: ExitUsage, wantStderr: "invalid usage"},
		{name: "convert help flag", args: []string{"doc2quiz", "convert", "--help"}, wantCode: ExitSuccess},
		{name: "missing input", args: []string{"doc2quiz", "convert", "missing.docx"}, wantCode: ExitIO},
		{name: "wrong extension", args: []string{"doc2quiz", "convert", "main_test.go"}, wantCode: ExitUsage, wantStderr: ".doc or .docx"},
		{name: "unsupported shell", args: []string{"doc2quiz", "completion", "tcsh"}, wantCode: ExitUsage, wantStderr: "unsupported shell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr, _ := testEnvironment(nil)
			code := runMain(context.Background(), tt.args, env)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout.String())
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr.String())
			}
		})
	}
}

func TestRunMain_BareDocumentPath(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"Test.docx": "x"})
	env, stdout, stderr, renderer := testEnvironment(nil)

	code := runMain(context.Background(), []string{"doc2quiz", filepath.Join(dir, "Test.docx")}, env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if renderer.callCount() != 1 {
		t.Errorf("renderer calls = %d, want 1", renderer.callCount())
	}
	if _, err := os.Stat(filepath.Join(dir, "Test.txt")); err != nil {
		t.Errorf("quiz not written: %v", err)
	}
	if !strings.Contains(stdout.String(), "(2 questions)") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunMain_RenderFailureExitCode(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"broken.docx": "x"})
	env, _, stderr, _ := testEnvironment(nil)

	code := runMain(context.Background(), []string{"doc2quiz", "convert", filepath.Join(dir, "broken.docx")}, env)
	if code != ExitRenderer {
		t.Errorf("exit code = %d, want %d", code, ExitRenderer)
	}
	if !strings.Contains(stderr.String(), "hint:") {
		t.Errorf("expected a hint in stderr:\n%s", stderr.String())
	}
}
