package transcript

import "github.com/bazelment/yoloswe/kiro-acp/agentstream"

// TextEvent is a chunk of assistant prose.
type TextEvent struct {
	Text string
}

func (e TextEvent) StreamEventKind() agentstream.EventKind { return agentstream.KindText }
func (e TextEvent) StreamDelta() string                    { return e.Text }

// ThoughtEvent is a chunk of assistant reasoning.
type ThoughtEvent struct {
	Text string
}

func (e ThoughtEvent) StreamEventKind() agentstream.EventKind { return agentstream.KindThinking }
func (e ThoughtEvent) StreamDelta() string                    { return e.Text }

// ToolStartEvent announces a tool call.
type ToolStartEvent struct {
	Input map[string]interface{}
	ID    string
	Kind  string
	Title string
}

func (e ToolStartEvent) StreamEventKind() agentstream.EventKind  { return agentstream.KindToolStart }
func (e ToolStartEvent) StreamToolCallID() string                { return e.ID }
func (e ToolStartEvent) StreamToolKind() string                  { return e.Kind }
func (e ToolStartEvent) StreamToolTitle() string                 { return e.Title }
func (e ToolStartEvent) StreamToolInput() map[string]interface{} { return e.Input }

// ToolProgressEvent carries the full output of a running tool call.
type ToolProgressEvent struct {
	ID     string
	Output string
}

func (e ToolProgressEvent) StreamEventKind() agentstream.EventKind { return agentstream.KindToolProgress }
func (e ToolProgressEvent) StreamToolCallID() string               { return e.ID }
func (e ToolProgressEvent) StreamToolOutput() string               { return e.Output }

// ToolEndEvent is the single terminal event of a tool call.
type ToolEndEvent struct {
	ID     string
	Output string
	Failed bool
}

func (e ToolEndEvent) StreamEventKind() agentstream.EventKind { return agentstream.KindToolEnd }
func (e ToolEndEvent) StreamToolCallID() string               { return e.ID }
func (e ToolEndEvent) StreamToolOutput() string               { return e.Output }
func (e ToolEndEvent) StreamToolFailed() bool                 { return e.Failed }

var (
	_ agentstream.Text         = TextEvent{}
	_ agentstream.Text         = ThoughtEvent{}
	_ agentstream.ToolStart    = ToolStartEvent{}
	_ agentstream.ToolProgress = ToolProgressEvent{}
	_ agentstream.ToolEnd      = ToolEndEvent{}
)
