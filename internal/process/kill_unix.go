//go:build !windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// Configure places the command in its own process group so the whole tree
// can be signalled at once. Must be called before cmd.Start.
func Configure(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// Terminate asks the process group led by p to exit (SIGTERM).
func Terminate(p *os.Process) error {
	if err := syscall.Kill(-p.Pid, syscall.SIGTERM); err != nil {
		return p.Signal(syscall.SIGTERM)
	}
	return nil
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort; callers fall back to os.Process.Kill.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
