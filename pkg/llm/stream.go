package llm

import "encoding/json"

// EventType tags a stream event.
type EventType string

const (
	// EventMessage carries a partial completion fragment.
	EventMessage EventType = "message"

	// EventDone is the terminal sentinel. A stream that closes without one
	// was truncated and must not be treated as a valid completion.
	EventDone EventType = "done"
)

// StreamEvent is one event of a streamed execution: either a fragment to
// merge or the done sentinel.
type StreamEvent struct {
	Type  EventType `json:"type"`
	Delta *Delta    `json:"delta,omitempty"`
}

// Delta is a partial completion fragment. Every field is optional;
// the accumulator's merge rules decide how each one folds into the final
// Completion.
type Delta struct {
	ID       string `json:"id,omitempty"`
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider,omitempty"`
	Created  int64  `json:"created,omitempty"`

	Index        *int   `json:"index,omitempty"`
	Role         string `json:"role,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`

	Content   string     `json:"content,omitempty"`
	Reasoning string     `json:"reasoning,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	Usage *Usage `json:"usage,omitempty"`
}

// chunk is the provider-side "chat.completion.chunk" wire shape.
type chunk struct {
	ID       string `json:"id"`
	Created  int64  `json:"created"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Choices  []struct {
		Index *int `json:"index"`
		Delta struct {
			Role      string     `json:"role"`
			Content   string     `json:"content"`
			Reasoning string     `json:"reasoning"`
			ToolCalls []ToolCall `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// ParseChunk adapts one provider streaming chunk into a Delta.
func ParseChunk(data []byte) (*Delta, error) {
	var c chunk
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}

	d := &Delta{
		ID:       c.ID,
		Model:    c.Model,
		Provider: c.Provider,
		Created:  c.Created,
		Usage:    c.Usage,
	}

	if len(c.Choices) > 0 {
		choice := c.Choices[0]
		d.Index = choice.Index
		d.Role = choice.Delta.Role
		d.Content = choice.Delta.Content
		d.Reasoning = choice.Delta.Reasoning
		d.ToolCalls = choice.Delta.ToolCalls
		d.FinishReason = choice.FinishReason
	}

	return d, nil
}
