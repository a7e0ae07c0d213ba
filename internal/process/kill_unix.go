//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; the renderer still reaps the direct child via Wait.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// SetProcessGroup places the command in its own process group so that
// KillProcessGroup reaches the converter's helper processes too.
func SetProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
