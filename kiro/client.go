package kiro

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bazelment/yoloswe/kiro-acp/internal/procattr"
)

// DefaultCLIPath is the binary name looked up in PATH when no path is set.
const DefaultCLIPath = "kiro-cli"

// ClientConfig holds configuration for a Client.
type ClientConfig struct {
	Env          map[string]string
	Logger       *slog.Logger
	CLIPath      string
	ProbeTimeout time.Duration
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		CLIPath:      DefaultCLIPath,
		ProbeTimeout: 15 * time.Second,
	}
}

// Option configures a Client.
type Option func(*ClientConfig)

// WithCLIPath sets the kiro-cli binary path.
func WithCLIPath(path string) Option {
	return func(c *ClientConfig) {
		if path != "" {
			c.CLIPath = path
		}
	}
}

// WithEnv adds environment variables to every invocation.
func WithEnv(env map[string]string) Option {
	return func(c *ClientConfig) {
		if c.Env == nil {
			c.Env = make(map[string]string)
		}
		for k, v := range env {
			c.Env[k] = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// WithProbeTimeout bounds how long one-shot commands may run.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *ClientConfig) {
		c.ProbeTimeout = d
	}
}

// Client invokes kiro-cli.
type Client struct {
	logger *slog.Logger
	config ClientConfig
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	config := defaultClientConfig()
	for _, opt := range opts {
		opt(&config)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config: config,
		logger: logger.With("component", "kiro"),
	}
}

// CLIPath returns the configured binary path.
func (c *Client) CLIPath() string {
	return c.config.CLIPath
}

// command builds an exec.Cmd for args in its own process group. Cancelling
// ctx kills the whole group.
func (c *Client) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.config.CLIPath, args...)
	cmd.Env = os.Environ()
	for k, v := range c.config.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	procattr.Set(cmd)
	cmd.Cancel = func() error {
		return procattr.KillGroup(cmd.Process)
	}
	cmd.WaitDelay = time.Second
	return cmd
}

// run executes a one-shot command and returns its stdout. A non-zero exit is
// reported as a *ProcessError carrying stderr.
func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	if c.config.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ProbeTimeout)
		defer cancel()
	}

	cmd := c.command(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("running kiro-cli", "args", args)
	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if isNotFound(err) {
		return nil, &CLINotFoundError{Path: c.config.CLIPath, Cause: err}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &ProcessError{Message: "kiro-cli " + args[0] + " did not finish", Cause: ctxErr}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), &ProcessError{
			Message:  "kiro-cli " + strings.Join(args, " ") + " failed",
			Stderr:   strings.TrimSpace(stderr.String()),
			ExitCode: exitErr.ExitCode(),
			Cause:    err,
		}
	}
	return nil, &ProcessError{Message: "failed to run kiro-cli " + args[0], Cause: err}
}

// isNotFound reports whether a start error means the binary does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
