package llm

import "encoding/json"

// ChatRequest is the outbound chat-completions request the engine hands to
// a transport.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream,omitempty"`

	// Generation parameters. Pointers distinguish "unset" from zero.
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`

	// Extra carries provider-specific options that don't map to common
	// parameters; they are merged into the serialized request verbatim.
	Extra map[string]any `json:"-"`
}

// MarshalJSON serializes the request with Extra entries merged into the
// top-level object. Named fields take precedence over Extra on collision.
func (r ChatRequest) MarshalJSON() ([]byte, error) {
	type plain ChatRequest
	raw, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return raw, nil
	}

	merged := make(map[string]any, len(r.Extra))
	for k, v := range r.Extra {
		merged[k] = v
	}
	var named map[string]json.RawMessage
	if err := json.Unmarshal(raw, &named); err != nil {
		return nil, err
	}
	for k, v := range named {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// ModelConfig is the caller-facing model configuration attached to an
// execute call. Stream selection is always explicit at the call site: the
// API route defaults it to false, the CLI defaults it to true.
type ModelConfig struct {
	Model       string         `json:"model"`
	Stream      bool           `json:"stream,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   *int           `json:"max_tokens,omitempty"`
	TopP        *float64       `json:"top_p,omitempty"`
	Stop        []string       `json:"stop,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}
