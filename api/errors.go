package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/promptlane/promptlane/pkg/engine"
	"github.com/promptlane/promptlane/pkg/llm"
	"github.com/promptlane/promptlane/pkg/prompt"
	"github.com/promptlane/promptlane/pkg/schema"
	"github.com/promptlane/promptlane/pkg/store"
	"github.com/promptlane/promptlane/pkg/template"
	"github.com/promptlane/promptlane/pkg/version"
)

// respondError maps the pipeline's typed errors onto HTTP statuses and a
// JSON error body. Author mistakes (bad templates, bad payloads) are 4xx;
// upstream execution failures are 502.
func respondError(c *fiber.Ctx, err error) error {
	var (
		parseErr   *template.ParseError
		missing    *prompt.MissingVariablesError
		badType    *schema.InvalidTypeError
		globals    *prompt.MissingGlobalsError
		noInclude  *prompt.IncludeNotFoundError
		badVersion *version.InvalidVersionError
		notFound   *store.NotFoundError
		execErr    *engine.ExecutionError
	)

	switch {
	case errors.As(err, &parseErr):
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
			Error:   "template parse error",
			Details: parseErr.Error(),
		})

	case errors.As(err, &missing):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(llm.ErrorResponse{
			Error:   "missing required variables",
			Details: missing.Names,
		})

	case errors.As(err, &badType):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(llm.ErrorResponse{
			Error:   "invalid variable type",
			Details: badType.Error(),
		})

	case errors.As(err, &globals):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(llm.ErrorResponse{
			Error:   "missing global context",
			Details: globals.Paths,
		})

	case errors.As(err, &noInclude):
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{
			Error:   "include not found",
			Details: noInclude.Error(),
		})

	case errors.As(err, &badVersion):
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
			Error:   "invalid version",
			Details: badVersion.Error(),
		})

	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{
			Error:   "prompt not found",
			Details: notFound.Error(),
		})

	case errors.As(err, &execErr):
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{
			Error:   "execution failed",
			Details: execErr.Error(),
		})

	default:
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{
			Error: "internal error",
		})
	}
}
