package acp

// ACP protocol version supported by this package.
const ProtocolVersion = 1

// --- Initialize ---

// InitializeRequest is sent by the client to establish the connection.
type InitializeRequest struct {
	ClientCapabilities *ClientCapabilities `json:"clientCapabilities,omitempty"`
	ClientInfo         *Implementation     `json:"clientInfo,omitempty"`
	ProtocolVersion    int                 `json:"protocolVersion"`
}

// InitializeResponse is returned by the agent with its capabilities.
type InitializeResponse struct {
	AgentCapabilities *AgentCapabilities `json:"agentCapabilities,omitempty"`
	AgentInfo         *Implementation    `json:"agentInfo,omitempty"`
	AuthMethods       []AuthMethod       `json:"authMethods"`
	ProtocolVersion   int                `json:"protocolVersion"`
}

// Implementation identifies a client or agent.
type Implementation struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version,omitempty"`
}

// ClientCapabilities advertises what the client supports.
type ClientCapabilities struct {
	Fs       *FsCapability `json:"fs,omitempty"`
	Terminal bool          `json:"terminal,omitempty"`
}

// FsCapability describes file system capabilities.
type FsCapability struct {
	ReadTextFile  bool `json:"readTextFile"`
	WriteTextFile bool `json:"writeTextFile"`
}

// AgentCapabilities advertises what the agent supports.
type AgentCapabilities struct {
	PromptCapabilities *PromptCapabilities `json:"promptCapabilities,omitempty"`
	LoadSession        bool                `json:"loadSession"`
}

// PromptCapabilities lists the content block types accepted in prompts
// beyond plain text and resource links.
type PromptCapabilities struct {
	Image           bool `json:"image"`
	Audio           bool `json:"audio"`
	EmbeddedContext bool `json:"embeddedContext"`
}

// AuthMethod describes an authentication method.
type AuthMethod struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// --- Authenticate ---

// AuthenticateRequest selects one of the advertised auth methods.
type AuthenticateRequest struct {
	MethodID string `json:"methodId"`
}

// AuthenticateResponse is empty on success.
type AuthenticateResponse struct{}

// --- Session ---

// NewSessionRequest creates a new conversation session.
type NewSessionRequest struct {
	CWD        string            `json:"cwd"`
	McpServers []McpServerConfig `json:"mcpServers"`
}

// McpServerConfig configures an MCP server for the session. The bridge
// accepts the field for protocol compatibility; the CLI loads MCP servers
// from its own agent configuration.
type McpServerConfig struct {
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"`
	Command string   `json:"command,omitempty"`
	URL     string   `json:"url,omitempty"`
	Args    []string `json:"args,omitempty"`
}

// NewSessionResponse returns the created session info.
type NewSessionResponse struct {
	Modes     *SessionModeState  `json:"modes,omitempty"`
	Models    *SessionModelState `json:"models,omitempty"`
	SessionID string             `json:"sessionId"`
}

// SessionModeState lists the session's modes and the current selection.
type SessionModeState struct {
	CurrentModeID  string        `json:"currentModeId"`
	AvailableModes []SessionMode `json:"availableModes"`
}

// SessionMode describes a selectable mode (a kiro-cli agent).
type SessionMode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SessionModelState lists the session's models and the current selection.
type SessionModelState struct {
	CurrentModelID  string      `json:"currentModelId"`
	AvailableModels []ModelInfo `json:"availableModels"`
}

// ModelInfo describes a selectable model.
type ModelInfo struct {
	ModelID     string `json:"modelId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SetSessionModeRequest changes the current mode of a session.
type SetSessionModeRequest struct {
	SessionID string `json:"sessionId"`
	ModeID    string `json:"modeId"`
}

// SetSessionModeResponse is empty on success.
type SetSessionModeResponse struct{}

// SetSessionModelRequest changes the current model of a session.
type SetSessionModelRequest struct {
	SessionID string `json:"sessionId"`
	ModelID   string `json:"modelId"`
}

// SetSessionModelResponse is empty on success.
type SetSessionModelResponse struct{}

// --- Prompt ---

// PromptRequest sends a user prompt to the agent.
type PromptRequest struct {
	SessionID string         `json:"sessionId"`
	Prompt    []ContentBlock `json:"prompt"`
}

// Stop reasons reported in PromptResponse.
const (
	StopReasonEndTurn   = "end_turn"
	StopReasonCancelled = "cancelled"
	StopReasonRefusal   = "refusal"
)

// PromptResponse indicates the prompt turn has completed.
type PromptResponse struct {
	StopReason string `json:"stopReason"`
}

// --- Cancel ---

// CancelNotification is sent by the client to cancel a prompt.
type CancelNotification struct {
	SessionID string `json:"sessionId"`
}

// --- Content Blocks ---

// Content block type discriminators.
const (
	ContentTypeText         = "text"
	ContentTypeImage        = "image"
	ContentTypeAudio        = "audio"
	ContentTypeResourceLink = "resource_link"
	ContentTypeResource     = "resource"
)

// ContentBlock represents typed content in prompts and messages.
// Discriminated by the Type field.
type ContentBlock struct {
	// EmbeddedResource
	Resource *EmbeddedResource `json:"resource,omitempty"`

	// Common
	Type string `json:"type"`

	// TextContent
	Text string `json:"text,omitempty"`

	// ImageContent / AudioContent
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"` // base64-encoded
	URI      string `json:"uri,omitempty"`

	// ResourceLink
	Name string `json:"name,omitempty"`
}

// EmbeddedResource is the payload of a "resource" content block. Exactly one
// of Text and Blob is set by well-behaved clients.
type EmbeddedResource struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// NewTextContent creates a text content block.
func NewTextContent(text string) ContentBlock {
	return ContentBlock{Type: ContentTypeText, Text: text}
}

// --- Session Update (notification from agent) ---

// Session update type constants.
const (
	UpdateTypeAgentMessage   = "agent_message_chunk"
	UpdateTypeAgentThought   = "agent_thought_chunk"
	UpdateTypeToolCall       = "tool_call"
	UpdateTypeToolCallUpdate = "tool_call_update"
	UpdateTypeCurrentMode    = "current_mode_update"
)

// Tool call kinds used by this agent.
const (
	ToolKindExecute = "execute"
	ToolKindOther   = "other"
)

// Tool call statuses.
const (
	ToolStatusPending    = "pending"
	ToolStatusInProgress = "in_progress"
	ToolStatusCompleted  = "completed"
	ToolStatusFailed     = "failed"
)

// SessionNotification is the params for a session/update notification.
type SessionNotification struct {
	SessionID string        `json:"sessionId"`
	Update    SessionUpdate `json:"update"`
}

// SessionUpdate is a discriminated union of update types.
// The Type field determines which other fields are populated. Content holds
// a *ContentBlock for message and thought chunks, and a []ToolCallContent
// for tool calls.
type SessionUpdate struct {
	Content  any            `json:"content,omitempty"`
	RawInput map[string]any `json:"rawInput,omitempty"`

	// Discriminator
	Type string `json:"sessionUpdate"`

	// tool_call / tool_call_update fields
	ToolCallID string `json:"toolCallId,omitempty"`
	Title      string `json:"title,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Status     string `json:"status,omitempty"`

	// current_mode_update fields
	CurrentModeID string `json:"currentModeId,omitempty"`
}

// ToolCallContent is one entry of a tool call's content list.
type ToolCallContent struct {
	Content *ContentBlock `json:"content,omitempty"`
	Type    string        `json:"type"` // "content"
}

// NewAgentMessageChunk creates an agent_message_chunk update carrying text.
func NewAgentMessageChunk(text string) SessionUpdate {
	block := NewTextContent(text)
	return SessionUpdate{Type: UpdateTypeAgentMessage, Content: &block}
}

// NewAgentThoughtChunk creates an agent_thought_chunk update carrying text.
func NewAgentThoughtChunk(text string) SessionUpdate {
	block := NewTextContent(text)
	return SessionUpdate{Type: UpdateTypeAgentThought, Content: &block}
}

// NewToolCall creates the tool_call update announcing a new invocation.
func NewToolCall(id, title, kind string, rawInput map[string]any) SessionUpdate {
	return SessionUpdate{
		Type:       UpdateTypeToolCall,
		ToolCallID: id,
		Title:      title,
		Kind:       kind,
		Status:     ToolStatusInProgress,
		RawInput:   rawInput,
	}
}

// NewToolCallUpdate creates a tool_call_update with a status and, when
// output is non-empty, the full accumulated output as text content.
func NewToolCallUpdate(id, status, output string) SessionUpdate {
	u := SessionUpdate{
		Type:       UpdateTypeToolCallUpdate,
		ToolCallID: id,
		Status:     status,
	}
	if output != "" {
		block := NewTextContent(output)
		u.Content = []ToolCallContent{{Type: "content", Content: &block}}
	}
	return u
}

// NewCurrentModeUpdate creates a current_mode_update notification.
func NewCurrentModeUpdate(modeID string) SessionUpdate {
	return SessionUpdate{Type: UpdateTypeCurrentMode, CurrentModeID: modeID}
}

// TextContent returns the text of a message or thought chunk, or "" when the
// update carries no single content block.
func (u SessionUpdate) TextContent() string {
	if block, ok := u.Content.(*ContentBlock); ok && block != nil {
		return block.Text
	}
	return ""
}

// ToolOutput returns the text of the first tool call content entry, or "".
func (u SessionUpdate) ToolOutput() string {
	if items, ok := u.Content.([]ToolCallContent); ok && len(items) > 0 && items[0].Content != nil {
		return items[0].Content.Text
	}
	return ""
}
