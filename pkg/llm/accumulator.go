package llm

import "strings"

// Accumulator folds a finite, forward-only sequence of stream events into
// one Completion structurally identical to what a buffered call would have
// returned for the same model output.
//
// The fold is inherently sequential and single-consumer: events must be
// added strictly in arrival order and no concurrent writers are permitted.
//
// Merge rules, applied per event:
//   - content and reasoning deltas concatenate onto running strings
//   - tool_call fragments append in order, never deduplicated
//   - usage fields deep-merge; an unset (null) incoming field never clears
//     a previously seen value
//   - id, model, provider, created, role, index, and finish_reason take
//     the first non-empty value seen and are never overwritten
type Accumulator struct {
	id       string
	model    string
	provider string
	created  int64

	index        *int
	role         string
	finishReason string

	content   strings.Builder
	reasoning strings.Builder
	toolCalls []ToolCall
	usage     *Usage

	sawDelta bool
	done     bool
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add folds one event into the accumulator state. Events after the done
// sentinel are ignored.
func (a *Accumulator) Add(ev StreamEvent) {
	if a.done {
		return
	}
	if ev.Type == EventDone {
		a.done = true
		return
	}
	if ev.Delta == nil {
		return
	}

	d := ev.Delta
	a.sawDelta = true

	if a.id == "" {
		a.id = d.ID
	}
	if a.model == "" {
		a.model = d.Model
	}
	if a.provider == "" {
		a.provider = d.Provider
	}
	if a.created == 0 {
		a.created = d.Created
	}
	if a.index == nil {
		a.index = d.Index
	}
	if a.role == "" {
		a.role = d.Role
	}
	if a.finishReason == "" {
		a.finishReason = d.FinishReason
	}

	a.content.WriteString(d.Content)
	a.reasoning.WriteString(d.Reasoning)
	a.toolCalls = append(a.toolCalls, d.ToolCalls...)

	if d.Usage != nil {
		a.mergeUsage(d.Usage)
	}
}

// mergeUsage folds a usage fragment. Provider streams legitimately carry
// partial usage mid-stream, so only set fields are taken.
func (a *Accumulator) mergeUsage(u *Usage) {
	if a.usage == nil {
		a.usage = &Usage{}
	}
	if u.PromptTokens != nil {
		a.usage.PromptTokens = u.PromptTokens
	}
	if u.CompletionTokens != nil {
		a.usage.CompletionTokens = u.CompletionTokens
	}
	if u.TotalTokens != nil {
		a.usage.TotalTokens = u.TotalTokens
	}
	if u.ReasoningTokens != nil {
		a.usage.ReasoningTokens = u.ReasoningTokens
	}
}

// Done reports whether the done sentinel has been seen. A stream that is
// exhausted while Done is false was truncated; callers must surface that as
// an execution error, not a partial completion.
func (a *Accumulator) Done() bool {
	return a.done
}

// Completion emits the accumulated result.
func (a *Accumulator) Completion() *Completion {
	role := a.role
	if role == "" {
		role = "assistant"
	}

	msg := Message{
		Role:      role,
		Content:   a.content.String(),
		Reasoning: a.reasoning.String(),
		ToolCalls: a.toolCalls,
	}

	index := 0
	if a.index != nil {
		index = *a.index
	}

	c := &Completion{
		ID:       a.id,
		Object:   ObjectChatCompletion,
		Created:  a.created,
		Model:    a.model,
		Provider: a.provider,
		Usage:    a.usage,
		Choices: []Choice{{
			Index:        index,
			Message:      msg,
			FinishReason: a.finishReason,
		}},
	}

	if !a.sawDelta {
		c.Choices = nil
	}

	return c
}
