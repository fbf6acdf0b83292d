//go:build windows

package terminal

import (
	"os"
	"os/exec"
)

func configureProcess(*exec.Cmd, bool) {}

func killProcess(p *os.Process) {
	_ = p.Kill()
}
