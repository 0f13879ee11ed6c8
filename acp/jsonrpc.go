package acp

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC protocol version string.
const jsonrpcVersion = "2.0"

// ACP JSON-RPC method constants.
const (
	// Agent-provided methods (client sends, agent responds)
	MethodInitialize      = "initialize"
	MethodAuthenticate    = "authenticate"
	MethodSessionNew      = "session/new"
	MethodSessionPrompt   = "session/prompt"
	MethodSessionSetMode  = "session/set_mode"
	MethodSessionSetModel = "session/set_model"

	// Client-sent notifications
	MethodSessionCancel = "session/cancel"

	// Agent-sent notifications
	MethodSessionUpdate = "session/update"
)

// JSONRPCRequest represents a JSON-RPC 2.0 request or, when ID is empty, a
// notification. The ID is kept raw so that string and numeric ids are echoed
// back unchanged.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r *JSONRPCRequest) IsNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	Error   *JSONRPCError   `json:"error,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// JSONRPCNotification represents a JSON-RPC 2.0 notification (no id).
type JSONRPCNotification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error.
type JSONRPCError struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

// Standard JSON-RPC error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// ACP-specific error codes.
const (
	ErrCodeAuthRequired = -32000
)

// nullID is used for error responses to messages whose id cannot be read.
var nullID = json.RawMessage("null")

// newResponse creates a new JSON-RPC 2.0 response.
func newResponse(id json.RawMessage, result interface{}) (*JSONRPCResponse, error) {
	if result == nil {
		result = struct{}{}
	}
	resultData, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &JSONRPCResponse{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Result:  resultData,
	}, nil
}

// newErrorResponse creates a new JSON-RPC 2.0 error response.
func newErrorResponse(id json.RawMessage, rpcErr *RPCError) *JSONRPCResponse {
	if len(id) == 0 {
		id = nullID
	}
	return &JSONRPCResponse{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Error: &JSONRPCError{
			Code:    rpcErr.Code,
			Message: rpcErr.Message,
			Data:    rpcErr.Data,
		},
	}
}

// newNotification creates a new JSON-RPC 2.0 notification.
func newNotification(method string, params interface{}) (*JSONRPCNotification, error) {
	paramsData, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &JSONRPCNotification{
		JSONRPC: jsonrpcVersion,
		Method:  method,
		Params:  paramsData,
	}, nil
}

// decodeParams unmarshals request params into T. Missing or null params
// decode to the zero value.
func decodeParams[T any](raw json.RawMessage) (*T, error) {
	var out T
	if len(raw) == 0 || string(raw) == "null" {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, NewInvalidParams(fmt.Sprintf("invalid params: %v", err))
	}
	return &out, nil
}
