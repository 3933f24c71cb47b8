package prompt

import (
	"github.com/promptlane/promptlane/pkg/schema"
	"github.com/promptlane/promptlane/pkg/template"
)

// CompileInput is everything one compilation needs, supplied by the caller
// as plain in-memory structures: the prompt version record (content or
// messages plus its declared schema), the pre-loaded include references,
// the caller payload, and the project's global context.
type CompileInput struct {
	Kind     Kind
	Content  string        // KindText
	Messages []ChatMessage // KindChat

	Variables []schema.Variable // declared schema (may be empty)
	Includes  []IncludeRef

	Payload map[string]any
	Global  map[string]any
}

// Compiled is the immutable result of a successful compilation.
type Compiled struct {
	Kind     Kind          `json:"kind"`
	Content  string        `json:"content,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`

	// Schema is the reconciled variable set the payload was validated
	// against; callers surface it to authors for editing and diffing.
	Schema []schema.Variable `json:"schema,omitempty"`
}

// Compile runs the full pipeline: parse, scan, reconcile the declared
// schema with scanned and included variables, validate the payload and
// global context, and render. Failures are the typed errors of this
// package, pkg/template, and pkg/schema, never panics.
func Compile(in *CompileInput) (*Compiled, error) {
	templates, err := parseAll(in)
	if err != nil {
		return nil, err
	}

	resolver := NewResolver(in.Includes)
	merged, err := reconcile(in, templates, resolver)
	if err != nil {
		return nil, err
	}

	res, err := schema.Validate(merged, in.Payload)
	if err != nil {
		return nil, err
	}
	if len(res.MissingRequired) > 0 {
		return nil, &MissingVariablesError{Names: res.MissingRequired}
	}

	var missingGlobals []string
	for _, t := range templates {
		for _, path := range MissingGlobals(t, in.Global) {
			if !contains(missingGlobals, path) {
				missingGlobals = append(missingGlobals, path)
			}
		}
	}
	if len(missingGlobals) > 0 {
		return nil, &MissingGlobalsError{Paths: missingGlobals}
	}

	ctx := &template.Context{
		Variables: res.Variables,
		Global:    in.Global,
		Include:   resolver.Resolve,
	}

	out := &Compiled{Kind: in.Kind, Schema: merged}

	if in.Kind == KindChat {
		out.Messages = make([]ChatMessage, 0, len(in.Messages))
		for i, t := range templates {
			content, err := t.Render(ctx)
			if err != nil {
				return nil, err
			}
			out.Messages = append(out.Messages, ChatMessage{
				Role:    in.Messages[i].Role,
				Content: content,
			})
		}
		return out, nil
	}

	out.Content, err = templates[0].Render(ctx)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScanSchema returns the reconciled variable schema for the input without
// validating or rendering. Authors use this to diff a declared schema
// against what the template actually references.
func ScanSchema(in *CompileInput) ([]schema.Variable, error) {
	templates, err := parseAll(in)
	if err != nil {
		return nil, err
	}
	return reconcile(in, templates, NewResolver(in.Includes))
}

// parseAll parses the prompt's template sources: one for a text prompt,
// one per message for a chat prompt.
func parseAll(in *CompileInput) ([]*template.Template, error) {
	if in.Kind == KindChat {
		templates := make([]*template.Template, 0, len(in.Messages))
		for _, m := range in.Messages {
			t, err := template.Parse(m.Content)
			if err != nil {
				return nil, err
			}
			templates = append(templates, t)
		}
		return templates, nil
	}

	t, err := template.Parse(in.Content)
	if err != nil {
		return nil, err
	}
	return []*template.Template{t}, nil
}

// reconcile combines the declared schema with the scanned schema and the
// schemas of the includes the templates actually reference.
//
// Declared entries own their names outright: an authored schema may
// downgrade a scanner-inferred required flag, so scanned descriptors never
// upgrade declared ones. Referenced includes' variables then merge with
// the monotonic required rule of schema.Merge.
func reconcile(in *CompileInput, templates []*template.Template, resolver *Resolver) ([]schema.Variable, error) {
	var scanned []schema.Variable
	seen := make(map[string]bool)
	for _, t := range templates {
		for _, v := range template.Scan(t) {
			if seen[v.Name] {
				continue
			}
			seen[v.Name] = true
			scanned = append(scanned, v)
		}
	}

	own := make([]schema.Variable, 0, len(in.Variables)+len(scanned))
	declared := make(map[string]bool, len(in.Variables))
	for _, v := range in.Variables {
		declared[v.Name] = true
		own = append(own, v)
	}
	for _, v := range scanned {
		if !declared[v.Name] {
			own = append(own, v)
		}
	}

	includeVars, err := includeVariables(templates, resolver)
	if err != nil {
		return nil, err
	}

	return schema.Merge(own, includeVars...), nil
}

// includeVariables resolves the include directives the templates reference
// and gathers their declared variables, transitively. Each slug@version is
// visited once; depth is bounded the same way rendering bounds it, with
// cycle reporting left to Render.
func includeVariables(templates []*template.Template, resolver *Resolver) ([][]schema.Variable, error) {
	var out [][]schema.Variable
	visited := make(map[string]bool)

	var walk func(t *template.Template, depth int) error
	walk = func(t *template.Template, depth int) error {
		if depth >= template.MaxIncludeDepth {
			return nil
		}
		for _, n := range template.ScanIncludes(t) {
			ref, err := resolver.lookup(n.Slug, n.Version)
			if err != nil {
				return err
			}
			key := ref.Slug + "@" + ref.Version
			if visited[key] {
				continue
			}
			visited[key] = true
			out = append(out, ref.Variables)

			sub, err := template.Parse(ref.Content)
			if err != nil {
				return err
			}
			if err := walk(sub, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, t := range templates {
		if err := walk(t, 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
