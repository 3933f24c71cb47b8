// Package llm defines the chat-completion request, response, and streaming
// shapes the execution engine speaks, plus the accumulator that folds a
// stream of partial fragments into the same completion shape a buffered
// call returns.
package llm

// Message is a single role-tagged message in a chat completion request or
// response.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`

	// Reasoning carries provider thinking output; present only when the
	// provider emitted any.
	Reasoning string `json:"reasoning,omitempty"`

	// ToolCalls are tool invocations requested by the assistant.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is one tool invocation within an assistant message. During
// streaming, providers send these as partial fragments ordered by Index.
type ToolCall struct {
	Index    int          `json:"index,omitempty"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"` // "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall names the function and carries its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ErrorResponse is the JSON error body returned by the API surface.
type ErrorResponse struct {
	Error string `json:"error"`

	// Details carries structured context for validation failures: the
	// missing variable names, the unresolved global paths, or the
	// offending include reference.
	Details any `json:"details,omitempty"`
}
