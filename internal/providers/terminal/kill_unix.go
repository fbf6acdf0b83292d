//go:build !windows

package terminal

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcess puts a pipe-mode shell in its own process group so its
// jobs can be killed with it. pty.Start already makes the shell a session
// leader.
func configureProcess(cmd *exec.Cmd, usePTY bool) {
	if !usePTY {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}
}

// killProcess kills the shell's whole process group
func killProcess(p *os.Process) {
	if err := unix.Kill(-p.Pid, unix.SIGKILL); err != nil {
		_ = p.Kill()
	}
}
