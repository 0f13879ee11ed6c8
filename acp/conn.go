package acp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// Agent is implemented by the agent behind a Conn. Each method runs on its
// own goroutine; Prompt may block for the whole turn.
type Agent interface {
	Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error)
	Authenticate(ctx context.Context, req *AuthenticateRequest) (*AuthenticateResponse, error)
	NewSession(ctx context.Context, req *NewSessionRequest) (*NewSessionResponse, error)
	Prompt(ctx context.Context, req *PromptRequest) (*PromptResponse, error)
	Cancel(ctx context.Context, req *CancelNotification) error
	SetSessionMode(ctx context.Context, req *SetSessionModeRequest) (*SetSessionModeResponse, error)
	SetSessionModel(ctx context.Context, req *SetSessionModelRequest) (*SetSessionModelResponse, error)
}

// Conn is the agent side of an ACP connection over a pair of byte streams,
// usually the process's stdin and stdout.
type Conn struct {
	agent    Agent
	reader   *bufio.Reader
	writer   io.Writer
	logger   *slog.Logger
	inflight sync.WaitGroup
	writeMu  sync.Mutex
	mu       sync.Mutex
	serving  bool
	closed   bool
}

// NewConn creates a connection that reads client messages from r and writes
// responses and notifications to w.
func NewConn(agent Agent, r io.Reader, w io.Writer, opts ...ConnOption) *Conn {
	config := defaultConnConfig()
	for _, opt := range opts {
		opt(&config)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Conn{
		agent:  agent,
		reader: bufio.NewReaderSize(r, readBufferSize),
		writer: w,
		logger: logger.With("component", "acp"),
	}
}

// Serve reads and dispatches messages until the peer closes the input
// stream or ctx is cancelled. Either way the context passed to in-flight
// handlers is cancelled and Serve waits for them to return. When ctx ends
// first, Serve returns ctx.Err(); the blocked read is abandoned.
func (c *Conn) Serve(ctx context.Context) error {
	c.mu.Lock()
	if c.serving {
		c.mu.Unlock()
		return ErrAlreadyServing
	}
	c.serving = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.inflight.Wait()
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
	}()

	lines := make(chan readResult)
	go c.readLoop(ctx, lines)

	for {
		var r readResult
		select {
		case <-ctx.Done():
			c.logger.Debug("serve cancelled", "error", ctx.Err())
			return ctx.Err()
		case r = <-lines:
		}

		if len(bytes.TrimSpace(r.line)) > 0 {
			c.handleMessage(ctx, r.line)
		}
		if r.err != nil {
			if errors.Is(r.err, io.EOF) {
				c.logger.Debug("input closed")
				return nil
			}
			return &ProtocolError{Message: "failed to read message", Cause: r.err}
		}
	}
}

type readResult struct {
	err  error
	line []byte
}

// readLoop feeds input lines to Serve until a read fails or ctx is done.
func (c *Conn) readLoop(ctx context.Context, lines chan<- readResult) {
	for {
		line, err := c.readLine()
		select {
		case lines <- readResult{line: line, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// SessionUpdate sends a session/update notification to the client.
func (c *Conn) SessionUpdate(_ context.Context, notif SessionNotification) error {
	msg, err := newNotification(MethodSessionUpdate, notif)
	if err != nil {
		return err
	}
	return c.writeJSON(msg)
}

// readLine reads a single newline-delimited JSON message. A final message
// without a trailing newline is returned together with io.EOF.
func (c *Conn) readLine() ([]byte, error) {
	line, err := c.reader.ReadBytes('\n')
	return bytes.TrimRight(line, "\r\n"), err
}

// handleMessage processes a single JSON-RPC message from the client.
func (c *Conn) handleMessage(ctx context.Context, line []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		c.logger.Warn("failed to parse message", "error", err, "line", string(line))
		c.sendError(nullID, &RPCError{Code: ErrCodeParseError, Message: "parse error"})
		return
	}

	if req.Method == "" {
		// Responses to agent-initiated requests; this agent sends none.
		c.logger.Debug("ignoring message without method", "id", string(req.ID))
		return
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.dispatch(ctx, &req)
	}()
}

// dispatch routes a request or notification to the agent and writes the
// response for requests.
func (c *Conn) dispatch(ctx context.Context, req *JSONRPCRequest) {
	c.logger.Debug("dispatching", "method", req.Method, "id", string(req.ID))

	if req.IsNotification() {
		c.handleNotification(ctx, req)
		return
	}

	var (
		result interface{}
		err    error
	)

	switch req.Method {
	case MethodInitialize:
		result, err = call(ctx, req.Params, c.agent.Initialize)
	case MethodAuthenticate:
		result, err = call(ctx, req.Params, c.agent.Authenticate)
	case MethodSessionNew:
		result, err = call(ctx, req.Params, c.agent.NewSession)
	case MethodSessionPrompt:
		result, err = call(ctx, req.Params, c.agent.Prompt)
	case MethodSessionSetMode:
		result, err = call(ctx, req.Params, c.agent.SetSessionMode)
	case MethodSessionSetModel:
		result, err = call(ctx, req.Params, c.agent.SetSessionModel)
	case MethodSessionCancel:
		// Tolerate clients that send cancel as a request.
		var params *CancelNotification
		params, err = decodeParams[CancelNotification](req.Params)
		if err == nil {
			err = c.agent.Cancel(ctx, params)
		}
	default:
		err = &RPCError{Code: ErrCodeMethodNotFound, Message: "unknown method: " + req.Method}
	}

	if err != nil {
		rpcErr := toRPCError(err)
		c.logger.Debug("request failed", "method", req.Method, "code", rpcErr.Code, "error", rpcErr.Message)
		c.sendError(req.ID, rpcErr)
		return
	}
	c.sendResponse(req.ID, result)
}

// handleNotification processes notifications from the client. Unknown
// notifications are ignored.
func (c *Conn) handleNotification(ctx context.Context, req *JSONRPCRequest) {
	switch req.Method {
	case MethodSessionCancel:
		params, err := decodeParams[CancelNotification](req.Params)
		if err != nil {
			c.logger.Warn("invalid cancel notification", "error", err)
			return
		}
		if err := c.agent.Cancel(ctx, params); err != nil {
			c.logger.Warn("cancel failed", "session_id", params.SessionID, "error", err)
		}
	default:
		c.logger.Debug("ignoring notification", "method", req.Method)
	}
}

// call decodes params into Req and invokes the agent method.
func call[Req any, Resp any](ctx context.Context, raw json.RawMessage, fn func(context.Context, *Req) (*Resp, error)) (interface{}, error) {
	params, err := decodeParams[Req](raw)
	if err != nil {
		return nil, err
	}
	resp, err := fn(ctx, params)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// sendResponse sends a JSON-RPC response to the client.
func (c *Conn) sendResponse(id json.RawMessage, result interface{}) {
	resp, err := newResponse(id, result)
	if err != nil {
		c.sendError(id, NewInternalError("failed to encode result: "+err.Error()))
		return
	}
	if err := c.writeJSON(resp); err != nil {
		c.logger.Debug("failed to write response", "error", err)
	}
}

// sendError sends a JSON-RPC error response to the client.
func (c *Conn) sendError(id json.RawMessage, rpcErr *RPCError) {
	if err := c.writeJSON(newErrorResponse(id, rpcErr)); err != nil {
		c.logger.Debug("failed to write error response", "error", err)
	}
}

// writeJSON writes one message followed by a newline.
func (c *Conn) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrConnClosed
	}

	_, err = c.writer.Write(data)
	return err
}
