package kiro

import (
	"errors"
	"fmt"
)

// CLINotFoundError indicates the kiro-cli binary was not found.
type CLINotFoundError struct {
	Cause error
	Path  string
}

func (e *CLINotFoundError) Error() string {
	return fmt.Sprintf("kiro-cli binary not found at %q: %v", e.Path, e.Cause)
}

func (e *CLINotFoundError) Unwrap() error {
	return e.Cause
}

// ProcessError represents a failed kiro-cli invocation.
type ProcessError struct {
	Cause    error
	Message  string
	Stderr   string
	ExitCode int
}

func (e *ProcessError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("process error: %s (exit code %d)", e.Message, e.ExitCode)
	}
	return fmt.Sprintf("process error: %s", e.Message)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// NotAuthenticatedError indicates kiro-cli has no logged-in account.
type NotAuthenticatedError struct {
	Cause  error
	Detail string
}

func (e *NotAuthenticatedError) Error() string {
	if e.Detail != "" {
		return "kiro-cli is not authenticated: " + e.Detail
	}
	return "kiro-cli is not authenticated"
}

func (e *NotAuthenticatedError) Unwrap() error {
	return e.Cause
}

// MalformedOutputError indicates a kiro-cli command printed output that
// could not be parsed.
type MalformedOutputError struct {
	Cause   error
	Command string
	Output  string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("unexpected output from %s: %v", e.Command, e.Cause)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// Advice returns a one-line, user-facing explanation of err with the action
// that fixes it.
func Advice(err error) string {
	var (
		notFound  *CLINotFoundError
		notAuthed *NotAuthenticatedError
		malformed *MalformedOutputError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &notFound):
		return fmt.Sprintf("kiro-cli was not found (%s). Install kiro-cli or set KIRO_ACP_CLI_PATH to its location.", notFound.Path)
	case errors.As(err, &notAuthed):
		return "kiro-cli is not logged in. Run `kiro-cli login` in a terminal, then try again."
	case errors.As(err, &malformed):
		return fmt.Sprintf("Could not understand the output of `%s`. Check that kiro-cli is up to date.", malformed.Command)
	default:
		return "kiro-cli is not ready: " + err.Error()
	}
}
