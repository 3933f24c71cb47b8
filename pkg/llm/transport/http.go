package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/promptlane/promptlane/pkg/llm"
	"github.com/promptlane/promptlane/pkg/utils"
)

const chatCompletionsPath = "/chat/completions"

// Config holds HTTP transport configuration.
type Config struct {
	// BaseURL is the provider API root, e.g. "https://openrouter.ai/api/v1".
	BaseURL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Timeout bounds a full buffered request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout is generous because LLM requests can be slow, especially
// with reasoning models.
const DefaultTimeout = 5 * time.Minute

// HTTP is a Transport for OpenAI-compatible chat completion APIs.
type HTTP struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// UpstreamError is a non-2xx response from the provider.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, utils.Truncate(e.Body, 2048))
}

// NewHTTP creates an HTTP transport for the configured provider.
func NewHTTP(config Config, logger *zap.Logger) *HTTP {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{
		config: config,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Complete sends a buffered chat completion request.
func (t *HTTP) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.Completion, error) {
	req.Stream = false

	httpResp, err := t.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read upstream response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: httpResp.StatusCode, Body: string(respBody)}
	}

	var completion llm.Completion
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, fmt.Errorf("could not parse upstream response: %w", err)
	}

	t.logger.Debug("received completion from upstream",
		zap.String("model", completion.Model),
		zap.String("id", completion.ID),
	)

	return &completion, nil
}

// Stream sends a streaming chat completion request and returns the raw
// SSE response body.
func (t *HTTP) Stream(ctx context.Context, req *llm.ChatRequest) (io.ReadCloser, error) {
	req.Stream = true

	httpResp, err := t.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, &UpstreamError{StatusCode: httpResp.StatusCode, Body: string(respBody)}
	}

	return httpResp.Body, nil
}

func (t *HTTP) send(ctx context.Context, req *llm.ChatRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not encode request: %w", err)
	}

	url := t.config.BaseURL + chatCompletionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.config.APIKey)
	}
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	t.logger.Debug("forwarding request to upstream",
		zap.String("url", url),
		zap.String("model", req.Model),
		zap.Bool("stream", req.Stream),
	)

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	return httpResp, nil
}
