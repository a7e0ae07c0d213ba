//go:build windows

package process

import (
	"os/exec"
	"strconv"
	"syscall"
)

// createNewProcessGroup mirrors windows.CREATE_NEW_PROCESS_GROUP.
const createNewProcessGroup = 0x00000200

// KillProcessGroup kills a process and all its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillProcessGroup(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}

// SetProcessGroup starts the command in a new process group so Word or
// soffice helpers can be torn down as a tree.
func SetProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= createNewProcessGroup
}
