package agent

import "github.com/tara-vision/taragent/internal/storage"

// Message roles on the chat completions wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in the conversation history. Content is omitted from
// the wire entirely when empty, so assistant turns that only carry tool calls
// serialize without a content field.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a completed model-requested tool invocation.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries a tool name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolSpec declares one tool in the request's tools array.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec is the declared contract of a tool: name, description and a
// JSON-Schema object describing its parameters.
type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolExecutor is the boundary between the session and the local tool
// implementations. Execute runs a tool by name with raw JSON arguments;
// argument and I/O failures come back as errors, never panics.
type ToolExecutor interface {
	Specs() []ToolSpec
	Has(name string) bool
	Execute(name, argsJSON string) (string, error)
}

// DiffSeparator splits a tool result into a model-facing part and a
// display-only part. Text after the separator is shown to the user and
// never enters the conversation history.
const DiffSeparator = "@@DIFF@@"

// chatRequest is the body POSTed to /chat/completions.
type chatRequest struct {
	Model         string         `json:"model"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
	Stream        bool           `json:"stream"`
	Messages      []Message      `json:"messages"`
	Tools         []ToolSpec     `json:"tools,omitempty"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// EventKind discriminates decoded stream events.
type EventKind int

const (
	// EventContent carries a fragment of assistant text.
	EventContent EventKind = iota
	// EventToolCall carries a fragment of an index-addressed tool call.
	EventToolCall
	// EventDone signals end of stream; buffered state can be finalized.
	EventDone
)

// StreamEvent is one decoded increment of a streamed model response. Events
// are transient: produced and consumed within a single model call.
type StreamEvent struct {
	Kind  EventKind
	Text  string
	Delta ToolCallDelta
}

// ToolCallDelta is one fragment of a tool call. Index addresses the logical
// call within the turn; ID and Name are set on whichever fragment first
// carries them, Args arrives split across arbitrarily many fragments.
type ToolCallDelta struct {
	Index int
	ID    string
	Name  string
	Args  string
}

// streamChunk mirrors one SSE payload from an OpenAI-compatible endpoint.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string          `json:"content"`
			ToolCalls []toolCallChunk `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *storage.TokenUsage `json:"usage"`
}

type toolCallChunk struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}
