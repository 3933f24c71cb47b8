// Package transport sends chat completion requests to an OpenAI-compatible
// upstream provider over HTTP.
package transport

import (
	"context"
	"io"

	"github.com/promptlane/promptlane/pkg/llm"
)

// Transport sends chat completion requests to an upstream provider.
type Transport interface {
	// Complete sends a buffered (non-streaming) request and returns the
	// parsed completion.
	Complete(ctx context.Context, req *llm.ChatRequest) (*llm.Completion, error)

	// Stream sends a streaming request and returns the raw SSE response
	// body. The caller owns the ReadCloser and must close it.
	Stream(ctx context.Context, req *llm.ChatRequest) (io.ReadCloser, error)
}
