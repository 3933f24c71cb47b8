// Package engine executes compiled prompts against an upstream LLM
// provider through a transport, in buffered or streaming mode.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptlane/promptlane/pkg/llm"
	"github.com/promptlane/promptlane/pkg/llm/transport"
	"github.com/promptlane/promptlane/pkg/prompt"
)

// ExecutionError wraps a provider or transport failure during execution.
type ExecutionError struct {
	ExecutionID string
	Err         error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution %s failed: %v", e.ExecutionID, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Engine executes compiled prompts. It performs no retries: a failed
// request surfaces as an ExecutionError and the caller decides.
type Engine struct {
	transport transport.Transport
	logger    *zap.Logger
}

// New creates an Engine backed by the given transport.
func New(tr transport.Transport, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{transport: tr, logger: logger}
}

// buildRequest converts a compiled prompt and model config into the
// outbound chat request. Text prompts become a single user message.
func buildRequest(compiled *prompt.Compiled, config llm.ModelConfig) *llm.ChatRequest {
	var messages []llm.Message
	switch compiled.Kind {
	case prompt.KindChat:
		messages = make([]llm.Message, 0, len(compiled.Messages))
		for _, m := range compiled.Messages {
			messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
		}
	default:
		messages = []llm.Message{{Role: "user", Content: compiled.Content}}
	}

	return &llm.ChatRequest{
		Model:       config.Model,
		Messages:    messages,
		Temperature: config.Temperature,
		MaxTokens:   config.MaxTokens,
		TopP:        config.TopP,
		Stop:        config.Stop,
		Extra:       config.Extra,
	}
}

// Execute sends a compiled prompt as a buffered request and returns the
// complete response.
func (e *Engine) Execute(ctx context.Context, compiled *prompt.Compiled, config llm.ModelConfig) (*llm.Completion, error) {
	executionID := uuid.NewString()
	req := buildRequest(compiled, config)

	e.logger.Debug("executing prompt",
		zap.String("execution_id", executionID),
		zap.String("model", config.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	completion, err := e.transport.Complete(ctx, req)
	if err != nil {
		return nil, &ExecutionError{ExecutionID: executionID, Err: err}
	}
	return completion, nil
}

// ExecuteStream sends a compiled prompt as a streaming request. Events
// arrive on the returned Stream until the provider's done sentinel or an
// error.
func (e *Engine) ExecuteStream(ctx context.Context, compiled *prompt.Compiled, config llm.ModelConfig) (*Stream, error) {
	executionID := uuid.NewString()
	req := buildRequest(compiled, config)

	e.logger.Debug("executing prompt with streaming",
		zap.String("execution_id", executionID),
		zap.String("model", config.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	body, err := e.transport.Stream(ctx, req)
	if err != nil {
		return nil, &ExecutionError{ExecutionID: executionID, Err: err}
	}

	return newStream(executionID, body), nil
}
