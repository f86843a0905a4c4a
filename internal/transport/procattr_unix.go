//go:build unix

package transport

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup puts the child in its own process group so Close can
// signal the whole group (the command server may itself fork helper
// processes for hooks) rather than only the direct child.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends sig to the child's process group. Returns nil if
// the child was never started (cmd.Process is nil), and falls back to
// killing just the process if signaling the group fails (e.g. the group
// is already gone).
func killProcessGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	if err := unix.Kill(-cmd.Process.Pid, sig); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
