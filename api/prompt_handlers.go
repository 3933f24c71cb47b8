package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/promptlane/promptlane/pkg/llm"
	"github.com/promptlane/promptlane/pkg/prompt"
	"github.com/promptlane/promptlane/pkg/schema"
)

// CompileRequest is the body of POST /v1/compile: an inline prompt plus
// the payload and global context to compile it against.
type CompileRequest struct {
	Type     prompt.Kind          `json:"type,omitempty"`
	Content  string               `json:"content,omitempty"`
	Messages []prompt.ChatMessage `json:"messages,omitempty"`
	Schema   []schema.Variable    `json:"schema,omitempty"`

	Variables map[string]any `json:"variables,omitempty"`
	Global    map[string]any `json:"global,omitempty"`
}

// PromptCompileRequest is the body of POST /v1/prompts/:slug/compile.
type PromptCompileRequest struct {
	Version   string         `json:"version,omitempty"`
	Variables map[string]any `json:"variables,omitempty"`
	Global    map[string]any `json:"global,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListPrompts returns the latest version of every stored prompt.
func (s *Server) handleListPrompts(c *fiber.Ctx) error {
	prompts := s.store.List()
	return c.JSON(map[string]any{
		"count":   len(prompts),
		"prompts": prompts,
	})
}

// handleCompile compiles an inline prompt without touching the registry,
// except to resolve include directives.
func (s *Server) handleCompile(c *fiber.Ctx) error {
	var req CompileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
			Error: "invalid request body",
		})
	}

	kind := req.Type
	if kind == "" {
		kind = prompt.KindText
	}
	if kind == prompt.KindChat && len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
			Error: "chat prompts need at least one message",
		})
	}

	compiled, err := prompt.Compile(&prompt.CompileInput{
		Kind:      kind,
		Content:   req.Content,
		Messages:  req.Messages,
		Variables: req.Schema,
		Includes:  s.store.IncludeRefs(),
		Payload:   req.Variables,
		Global:    req.Global,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(compiled)
}

// handleCompilePrompt compiles a stored prompt by slug and version.
func (s *Server) handleCompilePrompt(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var req PromptCompileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
				Error: "invalid request body",
			})
		}
	}

	stored, err := s.store.Get(slug, req.Version)
	if err != nil {
		return respondError(c, err)
	}

	input := s.store.CompileInput(stored, req.Variables, req.Global)
	compiled, err := prompt.Compile(&input)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(compiled)
}
