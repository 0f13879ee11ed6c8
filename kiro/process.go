package kiro

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/bazelment/yoloswe/kiro-acp/internal/procattr"
)

// Line-wrap policies accepted by `kiro-cli chat --wrap`.
const (
	WrapAlways = "always"
	WrapNever  = "never"
	WrapAuto   = "auto"
)

// ChatRequest describes one `kiro-cli chat` turn.
type ChatRequest struct {
	Prompt     string
	WorkDir    string
	Agent      string
	Model      string
	TrustTools string
	Wrap       string
	// TrustAllTools is used only when TrustTools is empty. With both unset,
	// no tool is trusted.
	TrustAllTools bool
	Verbose       bool
	Resume        bool
}

// BuildChatArgs builds the CLI arguments for req.
//
// kiro-cli chat --no-interactive --wrap <policy> [--resume] [--agent <id>]
// [--model <id>] [--verbose] (--trust-all-tools | --trust-tools=<list>) <prompt>
func BuildChatArgs(req ChatRequest) []string {
	wrap := req.Wrap
	if wrap == "" {
		wrap = WrapNever
	}

	args := []string{"chat", "--no-interactive", "--wrap", wrap}

	if req.Resume {
		args = append(args, "--resume")
	}

	if req.Agent != "" {
		args = append(args, "--agent", req.Agent)
	}

	if req.Model != "" {
		args = append(args, "--model", req.Model)
	}

	if req.Verbose {
		args = append(args, "--verbose")
	}

	switch {
	case req.TrustTools != "":
		args = append(args, "--trust-tools="+req.TrustTools)
	case req.TrustAllTools:
		args = append(args, "--trust-all-tools")
	default:
		args = append(args, "--trust-tools=")
	}

	return append(args, req.Prompt)
}

// chatDrainDelay is how long output may keep flowing after kiro-cli exits,
// for example while a background child still holds its stdout.
const chatDrainDelay = 2 * time.Second

// Process is a running `kiro-cli chat` turn. Stdout and Stderr must be read
// concurrently with Wait; they reach EOF once Wait returns.
type Process struct {
	cmd     *exec.Cmd
	stdout  *io.PipeReader
	stderr  *io.PipeReader
	stdoutW *io.PipeWriter
	stderrW *io.PipeWriter
	mu      sync.Mutex
	exited  bool
}

// StartChat spawns `kiro-cli chat` for req. Cancelling ctx kills the
// process group.
func (c *Client) StartChat(ctx context.Context, req ChatRequest) (*Process, error) {
	cmd := c.command(ctx, BuildChatArgs(req)...)
	if req.WorkDir != "" {
		cmd.Dir = req.WorkDir
	}

	// exec copies into the pipe writers, so WaitDelay bounds how long Wait
	// keeps draining after the process exits.
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	cmd.WaitDelay = chatDrainDelay

	if err := cmd.Start(); err != nil {
		stdoutW.Close()
		stderrW.Close()
		if isNotFound(err) {
			return nil, &CLINotFoundError{Path: c.config.CLIPath, Cause: err}
		}
		return nil, &ProcessError{Message: "failed to start kiro-cli chat", Cause: err}
	}

	c.logger.Debug("started kiro-cli chat",
		"pid", cmd.Process.Pid,
		"agent", req.Agent,
		"model", req.Model,
		"resume", req.Resume)

	return &Process{
		cmd:     cmd,
		stdout:  stdoutR,
		stderr:  stderrR,
		stdoutW: stdoutW,
		stderrW: stderrW,
	}, nil
}

// Stdout returns the transcript stream.
func (p *Process) Stdout() io.Reader {
	return p.stdout
}

// Stderr returns the diagnostic stream.
func (p *Process) Stderr() io.Reader {
	return p.stderr
}

// Interrupt sends SIGINT to the process group. Interrupting an exited
// process is a no-op.
func (p *Process) Interrupt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited {
		return nil
	}
	return procattr.InterruptGroup(p.cmd.Process)
}

// Wait waits for the process to exit and returns its exit code. A process
// killed by a signal reports -1. Output still arriving chatDrainDelay after
// the exit is dropped. err is non-nil only when waiting itself failed.
func (p *Process) Wait() (int, error) {
	err := p.cmd.Wait()

	p.mu.Lock()
	p.exited = true
	p.mu.Unlock()
	p.stdoutW.Close()
	p.stderrW.Close()

	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		return p.cmd.ProcessState.ExitCode(), nil
	}
	return -1, &ProcessError{Message: "failed to wait for kiro-cli chat", Cause: err}
}
