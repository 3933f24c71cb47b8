// Package store loads prompt definitions from a directory of TOML files
// and serves them by slug and semantic version.
//
// Each .toml file defines one version of one prompt:
//
//	slug = "greeting"
//	version = "1.0.0"
//	type = "text"
//	content = "Hello {{ name }}!"
//
//	[[variables]]
//	name = "name"
//	type = "string"
//	required = true
//
// Chat prompts carry [[messages]] tables instead of content. Multiple
// files may share a slug with different versions; lookups resolve
// "latest" by semver ordering.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/promptlane/promptlane/pkg/prompt"
	"github.com/promptlane/promptlane/pkg/schema"
	"github.com/promptlane/promptlane/pkg/version"
)

// Prompt is one stored prompt version.
type Prompt struct {
	Slug        string               `toml:"slug" json:"slug"`
	Version     string               `toml:"version" json:"version"`
	Kind        prompt.Kind          `toml:"type" json:"type"`
	Description string               `toml:"description,omitempty" json:"description,omitempty"`
	Content     string               `toml:"content,omitempty" json:"content,omitempty"`
	Messages    []prompt.ChatMessage `toml:"messages,omitempty" json:"messages,omitempty"`
	Variables   []schema.Variable    `toml:"variables,omitempty" json:"variables,omitempty"`
	Includes    []string             `toml:"includes,omitempty" json:"includes,omitempty"`
}

// NotFoundError reports a slug/version pair with no stored prompt.
type NotFoundError struct {
	Slug    string
	Version string
}

func (e *NotFoundError) Error() string {
	if e.Version == "" || e.Version == version.Latest {
		return fmt.Sprintf("prompt %q not found", e.Slug)
	}
	return fmt.Sprintf("prompt %q version %s not found", e.Slug, e.Version)
}

// Store is an in-memory index over a prompt directory. It is safe for
// concurrent readers; Reload and the watcher take the write lock.
type Store struct {
	dir    string
	logger *zap.Logger

	mu      sync.RWMutex
	prompts map[string][]*Prompt
}

// Open loads every .toml prompt file under dir.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{dir: dir, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the prompt directory, replacing the index atomically.
// A file that fails to parse is skipped with a warning so one bad file
// cannot take down the rest of the registry.
func (s *Store) Reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("could not read prompt directory: %w", err)
	}

	prompts := make(map[string][]*Prompt)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		p, err := loadFile(path)
		if err != nil {
			s.logger.Warn("skipping invalid prompt file",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		prompts[p.Slug] = append(prompts[p.Slug], p)
	}

	s.mu.Lock()
	s.prompts = prompts
	s.mu.Unlock()

	s.logger.Debug("loaded prompt directory",
		zap.String("dir", s.dir),
		zap.Int("slugs", len(prompts)),
	)
	return nil
}

func loadFile(path string) (*Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Prompt
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	if p.Slug == "" {
		return nil, fmt.Errorf("missing slug")
	}
	if !version.IsValid(p.Version) {
		return nil, &version.InvalidVersionError{Input: p.Version}
	}
	if p.Kind == "" {
		p.Kind = prompt.KindText
	}
	if p.Kind != prompt.KindText && p.Kind != prompt.KindChat {
		return nil, fmt.Errorf("unknown prompt type %q", p.Kind)
	}
	return &p, nil
}

// Get returns the stored prompt for slug at the given version. An empty
// or "latest" version resolves to the highest semver for the slug.
func (s *Store) Get(slug, ver string) (*Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.prompts[slug]
	if len(versions) == 0 {
		return nil, &NotFoundError{Slug: slug, Version: ver}
	}

	if ver == "" || ver == version.Latest {
		candidates := make([]string, 0, len(versions))
		for _, p := range versions {
			candidates = append(candidates, p.Version)
		}
		latest, err := version.LatestOf(candidates)
		if err != nil {
			return nil, err
		}
		ver = latest
	}

	for _, p := range versions {
		if p.Version == ver {
			return p, nil
		}
	}
	return nil, &NotFoundError{Slug: slug, Version: ver}
}

// List returns the latest version of every stored prompt, sorted by slug.
func (s *Store) List() []*Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slugs := make([]string, 0, len(s.prompts))
	for slug := range s.prompts {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	out := make([]*Prompt, 0, len(slugs))
	for _, slug := range slugs {
		versions := s.prompts[slug]
		candidates := make([]string, 0, len(versions))
		for _, p := range versions {
			candidates = append(candidates, p.Version)
		}
		latest, err := version.LatestOf(candidates)
		if err != nil {
			continue
		}
		for _, p := range versions {
			if p.Version == latest {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// IncludeRefs exposes stored prompt versions as include candidates for
// the compiler's resolver. Chat prompts have no content to splice into a
// template, so only text prompts qualify.
func (s *Store) IncludeRefs() []prompt.IncludeRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var refs []prompt.IncludeRef
	for _, versions := range s.prompts {
		for _, p := range versions {
			if p.Kind == prompt.KindChat {
				continue
			}
			refs = append(refs, prompt.IncludeRef{
				Slug:      p.Slug,
				Version:   p.Version,
				Variables: p.Variables,
				Content:   p.Content,
			})
		}
	}
	return refs
}

// CompileInput builds the compiler input for a stored prompt.
func (s *Store) CompileInput(p *Prompt, payload, global map[string]any) prompt.CompileInput {
	return prompt.CompileInput{
		Kind:      p.Kind,
		Content:   p.Content,
		Messages:  p.Messages,
		Variables: p.Variables,
		Includes:  s.IncludeRefs(),
		Payload:   payload,
		Global:    global,
	}
}
