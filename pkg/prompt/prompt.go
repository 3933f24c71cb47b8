// Package prompt ties the template, schema, and version packages into the
// compile pipeline: it reconciles declared and scanned variable schemas,
// resolves includes by slug and semantic version, validates caller payloads
// and global context, and renders the final text or chat messages.
//
// The package consumes plain in-memory records supplied by the caller (a
// storage layer, the HTTP API, or a test) and returns plain structures; it
// performs no I/O and retains nothing across calls.
package prompt

import (
	"fmt"
	"strings"

	"github.com/promptlane/promptlane/pkg/schema"
)

// Kind distinguishes single-text prompts from chat prompts.
type Kind string

const (
	KindText Kind = "text"
	KindChat Kind = "chat"
)

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one role-tagged message of a chat prompt, before or after
// rendering.
type ChatMessage struct {
	Role    Role   `json:"role" toml:"role"`
	Content string `json:"content" toml:"content"`
}

// IncludeRef is an already-loaded included prompt version: its identity,
// the variables it declares, and its raw template content. Loading these
// records is the storage collaborator's job; the pipeline only reads them
// for the duration of one compilation.
type IncludeRef struct {
	Slug      string
	Version   string
	Variables []schema.Variable
	Content   string
}

// MissingVariablesError is the hard precondition failure for a payload that
// lacks required variables. Callers recover by re-prompting for Names.
type MissingVariablesError struct {
	Names []string
}

func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf("missing required variables: %s", strings.Join(e.Names, ", "))
}

// MissingGlobalsError reports global-context paths the template references
// but the supplied context does not carry.
type MissingGlobalsError struct {
	Paths []string
}

func (e *MissingGlobalsError) Error() string {
	return fmt.Sprintf("missing global context: %s", strings.Join(e.Paths, ", "))
}

// IncludeNotFoundError reports an include directive that no loaded
// reference satisfies.
type IncludeNotFoundError struct {
	Slug    string
	Version string
}

func (e *IncludeNotFoundError) Error() string {
	v := e.Version
	if v == "" {
		v = "latest"
	}
	return fmt.Sprintf("included prompt not found: %s@%s", e.Slug, v)
}
