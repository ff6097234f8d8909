//go:build !windows

package process

// Notes:
// - Only PIDs owned by the test are signalled. PID 0 would target the test's
//   own process group.

import (
	"os/exec"
	"testing"
	"time"
)

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	// Must not panic on a PID that does not exist.
	KillProcessGroup(999999999)
}

func TestConfigure_TerminateGroup(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("sleep", "30")
	Configure(cmd)
	if !cmd.SysProcAttr.Setpgid {
		t.Fatal("Setpgid = false, want true")
	}
	if err := cmd.Start(); err != nil {
		t.Skipf("sleep unavailable: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if err := Terminate(cmd.Process); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		KillProcessGroup(cmd.Process.Pid)
		t.Fatal("process still running 5s after Terminate")
	}
}

func TestKillProcessGroup_KillsChild(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("sh", "-c", "trap '' TERM; sleep 30")
	Configure(cmd)
	if err := cmd.Start(); err != nil {
		t.Skipf("sh unavailable: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	KillProcessGroup(cmd.Process.Pid)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("process survived KillProcessGroup")
	}
}
