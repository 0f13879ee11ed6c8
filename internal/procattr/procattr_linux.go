//go:build linux

// Package procattr configures and signals the kiro-cli subprocess group.
package procattr

import (
	"os/exec"
	"syscall"
)

// Set puts the child in its own process group so interrupts reach the whole
// tree kiro-cli spawns for shell tools. Pdeathsig delivers SIGTERM to the
// child if the bridge dies without cleaning up.
func Set(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}
