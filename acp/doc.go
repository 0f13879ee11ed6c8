// Package acp implements the agent side of the Agent Client Protocol (ACP).
//
// ACP is an open standard for communication between code editors and
// AI coding agents, using JSON-RPC 2.0 over stdio. An editor spawns the
// agent binary and exchanges newline-delimited JSON messages with it. This
// package owns the wire format and the connection loop; the agent behavior
// is supplied by an implementation of the Agent interface.
//
// # Basic Usage
//
//	agent := mybridge.NewAgent(...)
//	conn := acp.NewConn(agent, os.Stdin, os.Stdout, acp.WithLogger(logger))
//	agent.SetNotifier(conn)
//
//	if err := conn.Serve(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Streaming Updates
//
// While a session/prompt request is in flight the agent reports progress
// with session/update notifications:
//
//	_ = conn.SessionUpdate(ctx, acp.SessionNotification{
//	    SessionID: id,
//	    Update:    acp.NewAgentMessageChunk("hello\n"),
//	})
//
// Each request is dispatched on its own goroutine so that a session/cancel
// notification can be handled while a prompt is still running. Writes to the
// peer are serialized by the connection.
package acp
