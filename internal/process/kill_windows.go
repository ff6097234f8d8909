//go:build windows

package process

import (
	"os"
	"os/exec"
	"strconv"
)

// Configure is a no-op on Windows; taskkill /T walks the tree instead.
func Configure(cmd *exec.Cmd) {}

// Terminate has no graceful equivalent on Windows, so it kills the tree.
func Terminate(p *os.Process) error {
	KillProcessGroup(p.Pid)
	return nil
}

// KillProcessGroup kills a process and all its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillProcessGroup(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is an int
}
