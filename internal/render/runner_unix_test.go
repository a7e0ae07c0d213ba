//go:build !windows

package render

import (
	"context"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestExecRunner - Real subprocesses
// ---------------------------------------------------------------------------

func TestExecRunner_Output(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := (&ExecRunner{}).Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(stdout) != "out" || strings.TrimSpace(stderr) != "err" {
		t.Errorf("stdout = %q, stderr = %q", stdout, stderr)
	}
}

func TestExecRunner_CancelKillsGroup(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	// The child sleep inherits the pipes; killing only sh would leave Run
	// waiting on them until WaitDelay.
	_, _, err := (&ExecRunner{}).Run(ctx, "sh", "-c", "sleep 30 & wait")
	if err == nil {
		t.Fatal("Run() error = nil, want killed")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Run() returned after %v, want prompt return on cancel", elapsed)
	}
}
