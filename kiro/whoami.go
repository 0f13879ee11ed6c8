package kiro

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

const whoamiCommand = "kiro-cli whoami --format json"

// Account is the parsed output of `kiro-cli whoami --format json`.
type Account struct {
	AccountType string `json:"accountType"`
	Email       string `json:"email,omitempty"`
	Region      string `json:"region,omitempty"`
}

// Check verifies that kiro-cli is installed and logged in. The returned
// error is one of *CLINotFoundError, *NotAuthenticatedError or
// *MalformedOutputError; pass it to Advice for a user-facing message.
func (c *Client) Check(ctx context.Context) error {
	_, err := c.Whoami(ctx)
	return err
}

// Whoami returns the logged-in account.
func (c *Client) Whoami(ctx context.Context) (*Account, error) {
	out, err := c.run(ctx, "whoami", "--format", "json")
	if err != nil {
		var procErr *ProcessError
		if errors.As(err, &procErr) && procErr.ExitCode != 0 {
			return nil, &NotAuthenticatedError{Detail: procErr.Stderr, Cause: err}
		}
		return nil, err
	}
	return ParseWhoami(out)
}

// ParseWhoami parses whoami JSON output. The account type must be present
// and non-empty.
func ParseWhoami(out []byte) (*Account, error) {
	trimmed := strings.TrimSpace(string(out))
	var account Account
	if err := json.Unmarshal([]byte(trimmed), &account); err != nil {
		return nil, &MalformedOutputError{Command: whoamiCommand, Output: trimmed, Cause: err}
	}
	if account.AccountType == "" {
		return nil, &NotAuthenticatedError{Detail: "no account type reported"}
	}
	return &account, nil
}
