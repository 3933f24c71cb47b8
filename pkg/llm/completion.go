package llm

// ObjectChatCompletion is the canonical object tag on a completed
// chat-completion response, in both buffered and accumulated form.
const ObjectChatCompletion = "chat.completion"

// Completion is the canonical chat-completion result. The buffered
// execution path and the stream accumulator both produce this shape, and
// for the same logical model output the two must be structurally
// identical.
type Completion struct {
	ID       string   `json:"id,omitempty"`
	Object   string   `json:"object"`
	Created  int64    `json:"created,omitempty"`
	Model    string   `json:"model,omitempty"`
	Provider string   `json:"provider,omitempty"`
	Choices  []Choice `json:"choices"`
	Usage    *Usage   `json:"usage,omitempty"`
}

// Choice is one completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Usage counts tokens for a completion. Streamed providers deliver these
// fields across multiple partial fragments; see Accumulator for the merge
// rules.
type Usage struct {
	PromptTokens     *int `json:"prompt_tokens,omitempty"`
	CompletionTokens *int `json:"completion_tokens,omitempty"`
	TotalTokens      *int `json:"total_tokens,omitempty"`
	ReasoningTokens  *int `json:"reasoning_tokens,omitempty"`
}

// Text returns the first choice's content, or "" for an empty completion.
func (c *Completion) Text() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}
