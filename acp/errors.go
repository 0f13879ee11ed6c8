package acp

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrAlreadyServing is returned when Serve() is called twice.
	ErrAlreadyServing = errors.New("connection already serving")

	// ErrConnClosed is returned when writing to a connection whose peer is gone.
	ErrConnClosed = errors.New("connection is closed")
)

// RPCError is an error carrying a JSON-RPC error code. Agent methods return
// it (directly or wrapped) to control the error envelope sent to the client;
// any other error is reported as an internal error. Cause is not sent to
// the client.
type RPCError struct {
	Cause   error
	Data    interface{}
	Message string
	Code    int
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *RPCError) Unwrap() error {
	return e.Cause
}

// NewInvalidParams returns an invalid-params error.
func NewInvalidParams(message string) *RPCError {
	return &RPCError{Code: ErrCodeInvalidParams, Message: message}
}

// NewInvalidRequest returns an invalid-request error.
func NewInvalidRequest(message string) *RPCError {
	return &RPCError{Code: ErrCodeInvalidRequest, Message: message}
}

// NewInternalError returns an internal error.
func NewInternalError(message string) *RPCError {
	return &RPCError{Code: ErrCodeInternalError, Message: message}
}

// NewAuthRequired returns the ACP auth-required error.
func NewAuthRequired(message string) *RPCError {
	return &RPCError{Code: ErrCodeAuthRequired, Message: message}
}

// toRPCError maps an arbitrary handler error onto an RPCError.
func toRPCError(err error) *RPCError {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return NewInternalError(err.Error())
}

// ProtocolError represents a protocol-level error (e.g., malformed JSON).
type ProtocolError struct {
	Cause   error
	Message string
	Line    string
}

func (e *ProtocolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ProtocolError) Unwrap() error {
	return e.Cause
}
