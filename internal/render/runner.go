package render

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/luxdoc/doc2quiz/internal/process"
)

// waitDelay bounds how long Run waits for output pipes after the process is killed.
const waitDelay = 5 * time.Second

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
	LookPath(file string) (string, error)
}

// ExecRunner implements CommandRunner using os/exec. When ctx ends the whole
// process group is killed, which reaps soffice.bin and WINWORD helpers too.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- backend binary and fixed arguments

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	process.SetProcessGroup(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (r *ExecRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
