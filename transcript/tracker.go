package transcript

import (
	"strings"

	"github.com/google/uuid"

	"github.com/bazelment/yoloswe/kiro-acp/agentstream"
)

// IDFunc generates tool call identifiers.
type IDFunc func() string

// NewToolCallID returns a fresh, never reused tool call identifier.
func NewToolCallID() string {
	return "tool-" + uuid.NewString()
}

type toolCall struct {
	id     string
	output []string
}

// ToolCallTracker follows at most one open tool call at a time and emits its
// lifecycle events. Every progress and end event carries the full output
// accumulated so far.
type ToolCallTracker struct {
	open  *toolCall
	newID IDFunc
}

// NewToolCallTracker creates a tracker. A nil newID uses NewToolCallID.
func NewToolCallTracker(newID IDFunc) *ToolCallTracker {
	if newID == nil {
		newID = NewToolCallID
	}
	return &ToolCallTracker{newID: newID}
}

// Open reports whether a tool call is open.
func (t *ToolCallTracker) Open() bool {
	return t.open != nil
}

// Start opens a new tool call. An already open call is completed first.
func (t *ToolCallTracker) Start(command, tool string) []agentstream.Event {
	events := t.Finish(false)

	t.open = &toolCall{id: t.newID()}
	title := tool
	if command != "" {
		title = tool + ": " + command
	}
	return append(events, ToolStartEvent{
		ID:    t.open.id,
		Kind:  ToolKind(tool),
		Title: title,
		Input: map[string]interface{}{
			"command": command,
			"tool":    tool,
		},
	})
}

// Append records one output line of the open call. It is a no-op when no
// call is open.
func (t *ToolCallTracker) Append(line string) []agentstream.Event {
	if t.open == nil {
		return nil
	}
	t.open.output = append(t.open.output, line)
	return []agentstream.Event{ToolProgressEvent{ID: t.open.id, Output: t.output()}}
}

// Finish closes the open call, if any, as completed or failed.
func (t *ToolCallTracker) Finish(failed bool) []agentstream.Event {
	if t.open == nil {
		return nil
	}
	ev := ToolEndEvent{ID: t.open.id, Output: t.output(), Failed: failed}
	t.open = nil
	return []agentstream.Event{ev}
}

// FinishExit closes the open call after the subprocess exited. Only exit
// code 0 counts as success; a negative code means the code is unknown.
func (t *ToolCallTracker) FinishExit(exitCode int) []agentstream.Event {
	return t.Finish(exitCode != 0)
}

func (t *ToolCallTracker) output() string {
	return strings.Join(t.open.output, "\n")
}
