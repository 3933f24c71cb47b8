package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/promptlane/promptlane/pkg/engine"
	"github.com/promptlane/promptlane/pkg/llm"
	"github.com/promptlane/promptlane/pkg/prompt"
	"github.com/promptlane/promptlane/pkg/schema"
)

// ExecuteRequest is the body of POST /v1/execute. The prompt is either a
// registry reference (slug, optional version) or an inline definition.
// Streaming is off unless requested explicitly.
type ExecuteRequest struct {
	Slug    string `json:"slug,omitempty"`
	Version string `json:"version,omitempty"`

	Type     prompt.Kind          `json:"type,omitempty"`
	Content  string               `json:"content,omitempty"`
	Messages []prompt.ChatMessage `json:"messages,omitempty"`
	Schema   []schema.Variable    `json:"schema,omitempty"`

	Variables map[string]any `json:"variables,omitempty"`
	Global    map[string]any `json:"global,omitempty"`

	Model  llm.ModelConfig `json:"model"`
	Stream *bool           `json:"stream,omitempty"`
}

// handleExecute compiles the requested prompt and runs it against the
// upstream provider, buffered by default or as an SSE stream.
func (s *Server) handleExecute(c *fiber.Ctx) error {
	var req ExecuteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
			Error: "invalid request body",
		})
	}
	if req.Slug == "" && req.Type == prompt.KindChat && len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
			Error: "chat prompts need at least one message",
		})
	}

	compiled, err := s.compileFor(&req)
	if err != nil {
		return respondError(c, err)
	}

	config := req.Model
	if config.Model == "" {
		config.Model = s.config.Model
	}
	streaming := req.Stream != nil && *req.Stream
	config.Stream = streaming

	if streaming {
		return s.executeStreaming(c, compiled, config)
	}

	completion, err := s.engine.Execute(c.Context(), compiled, config)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(completion)
}

// compileFor resolves the request to a compiled prompt, from the registry
// when a slug is given and inline otherwise.
func (s *Server) compileFor(req *ExecuteRequest) (*prompt.Compiled, error) {
	if req.Slug != "" {
		stored, err := s.store.Get(req.Slug, req.Version)
		if err != nil {
			return nil, err
		}
		input := s.store.CompileInput(stored, req.Variables, req.Global)
		return prompt.Compile(&input)
	}

	kind := req.Type
	if kind == "" {
		kind = prompt.KindText
	}
	return prompt.Compile(&prompt.CompileInput{
		Kind:      kind,
		Content:   req.Content,
		Messages:  req.Messages,
		Variables: req.Schema,
		Includes:  s.store.IncludeRefs(),
		Payload:   req.Variables,
		Global:    req.Global,
	})
}

// executeStreaming relays the engine's event stream to the client as SSE.
func (s *Server) executeStreaming(c *fiber.Ctx, compiled *prompt.Compiled, config llm.ModelConfig) error {
	// Use context.Background() instead of c.Context() because fasthttp
	// recycles its RequestCtx after the handler returns, but the relay
	// goroutine runs after that and needs the upstream connection open.
	stream, err := s.engine.ExecuteStream(context.Background(), compiled, config)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("Connection", "keep-alive")

	// io.Pipe gives per-chunk backpressure: pw.Write blocks until
	// fasthttp's chunked writer has flushed to the socket.
	pr, pw := io.Pipe()
	go s.relayStream(stream, pw)

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// relayStream writes engine events to the pipe in SSE wire format,
// ending with the done sentinel or an error event.
func (s *Server) relayStream(stream *engine.Stream, pw *io.PipeWriter) {
	defer pw.Close()
	defer stream.Close()

	for ev := range stream.Events() {
		if ev.Type == llm.EventDone {
			if _, err := fmt.Fprint(pw, "data: [DONE]\n\n"); err != nil {
				return
			}
			continue
		}

		payload, err := json.Marshal(ev.Delta)
		if err != nil {
			s.logger.Warn("failed to encode stream delta", zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(pw, "data: %s\n\n", payload); err != nil {
			// Client went away; Close unblocks the engine goroutine.
			return
		}
	}

	if err := stream.Err(); err != nil {
		s.logger.Warn("stream ended with error", zap.Error(err))
		payload, _ := json.Marshal(llm.ErrorResponse{Error: err.Error()})
		_, _ = fmt.Fprintf(pw, "event: error\ndata: %s\n\n", payload)
	}
}
