package agentstream

// EventKind identifies the category of a translated transcript event.
type EventKind int

const (
	// KindUnknown is the zero value. Consumers skip events of this kind.
	KindUnknown EventKind = iota
	KindText
	KindThinking
	KindToolStart
	KindToolProgress
	KindToolEnd
)

func (k EventKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindThinking:
		return "thinking"
	case KindToolStart:
		return "tool_start"
	case KindToolProgress:
		return "tool_progress"
	case KindToolEnd:
		return "tool_end"
	default:
		return "unknown"
	}
}

// Event is implemented by every translated event.
type Event interface {
	StreamEventKind() EventKind
}

// Text carries a chunk of assistant prose or reasoning. Both KindText and
// KindThinking events implement it.
type Text interface {
	Event
	StreamDelta() string
}

// ToolStart announces a new tool invocation.
type ToolStart interface {
	Event
	StreamToolCallID() string
	StreamToolKind() string
	StreamToolTitle() string
	StreamToolInput() map[string]interface{}
}

// ToolProgress reports the full output accumulated so far for a running tool.
type ToolProgress interface {
	Event
	StreamToolCallID() string
	StreamToolOutput() string
}

// ToolEnd reports the terminal state of a tool invocation together with its
// full output.
type ToolEnd interface {
	Event
	StreamToolCallID() string
	StreamToolOutput() string
	StreamToolFailed() bool
}
