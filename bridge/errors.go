package bridge

import (
	"errors"

	"github.com/bazelment/yoloswe/kiro-acp/acp"
)

// Sentinel errors returned by session operations.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnknownMode      = errors.New("unknown mode")
	ErrUnknownModel     = errors.New("unknown model")
	ErrPromptInProgress = errors.New("a prompt is already running for this session")
)

// rpcError maps a session error onto the JSON-RPC error sent to the client.
func rpcError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrUnknownMode),
		errors.Is(err, ErrUnknownModel):
		return &acp.RPCError{Code: acp.ErrCodeInvalidParams, Message: err.Error(), Cause: err}
	case errors.Is(err, ErrPromptInProgress):
		return &acp.RPCError{Code: acp.ErrCodeInvalidRequest, Message: err.Error(), Cause: err}
	default:
		return err
	}
}
