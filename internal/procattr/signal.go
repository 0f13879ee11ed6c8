package procattr

import (
	"errors"
	"os"
	"syscall"
)

// SignalGroup sends sig to the process group led by p. A group that has
// already exited is not an error.
func SignalGroup(p *os.Process, sig syscall.Signal) error {
	if p == nil {
		return nil
	}
	err := syscall.Kill(-p.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// InterruptGroup delivers SIGINT, the same signal a terminal Ctrl-C sends,
// which kiro-cli treats as "stop the current response".
func InterruptGroup(p *os.Process) error {
	return SignalGroup(p, syscall.SIGINT)
}

// KillGroup sends SIGKILL to the process group led by p.
func KillGroup(p *os.Process) error {
	return SignalGroup(p, syscall.SIGKILL)
}
