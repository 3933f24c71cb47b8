package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxIncludeDepth bounds recursive include expansion. The include graph is
// expected to be shallow; hitting the cap almost always means a cycle.
const MaxIncludeDepth = 16

// IncludeFunc resolves an include directive to raw template content.
// version is "" or "latest" for the highest available version.
type IncludeFunc func(slug, version string) (string, error)

// Context carries the values a render evaluates against. Variables is the
// caller payload (augmented with defaults by validation); Global is the
// project-level context addressed via the `global.` namespace. Include is
// invoked for every `{% include %}` directive; a nil Include fails any
// template that uses includes.
type Context struct {
	Variables map[string]any
	Global    map[string]any
	Include   IncludeFunc
}

// Render evaluates the template against the context and returns the final
// text. Included content is parsed and rendered recursively against the
// same context. Paths that do not resolve render as empty; validation is
// responsible for catching genuinely missing variables before rendering, so
// rendering never fails for an unknown path. Rendering is synchronous and
// side-effect free.
func (t *Template) Render(ctx *Context) (string, error) {
	r := &renderer{ctx: ctx}

	var sb strings.Builder
	if err := r.renderNodes(&sb, t.Nodes, nil); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type renderer struct {
	ctx   *Context
	depth int
}

// scope is a linked chain of loop-variable bindings, innermost first.
type scope struct {
	name  string
	value any
	next  *scope
}

func (r *renderer) renderNodes(sb *strings.Builder, nodes []Node, sc *scope) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *TextNode:
			sb.WriteString(n.Text)

		case *VarNode:
			sb.WriteString(stringify(r.lookup(n.Path, sc)))

		case *IfNode:
			branch := n.Then
			if truthy(r.lookup(n.Cond, sc)) == n.Negated {
				branch = n.Else
			}
			if err := r.renderNodes(sb, branch, sc); err != nil {
				return err
			}

		case *ForNode:
			items, _ := r.lookup(n.Path, sc).([]any)
			for _, item := range items {
				bound := &scope{name: n.Var, value: item, next: sc}
				if err := r.renderNodes(sb, n.Body, bound); err != nil {
					return err
				}
			}

		case *IncludeNode:
			if err := r.renderInclude(sb, n, sc); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *renderer) renderInclude(sb *strings.Builder, n *IncludeNode, sc *scope) error {
	if r.ctx.Include == nil {
		return fmt.Errorf("include %q: no include resolver configured", n.Slug)
	}
	if r.depth >= MaxIncludeDepth {
		return fmt.Errorf("include %q: max include depth %d exceeded (include cycle?)", n.Slug, MaxIncludeDepth)
	}

	content, err := r.ctx.Include(n.Slug, n.Version)
	if err != nil {
		return err
	}

	sub, err := Parse(content)
	if err != nil {
		return fmt.Errorf("include %q: %w", n.Slug, err)
	}

	r.depth++
	defer func() { r.depth-- }()

	return r.renderNodes(sb, sub.Nodes, sc)
}

// lookup resolves a dotted path against loop scopes, then the global
// namespace, then caller variables. Unresolvable paths yield nil.
func (r *renderer) lookup(path []string, sc *scope) any {
	for s := sc; s != nil; s = s.next {
		if s.name == path[0] {
			return walk(s.value, path[1:])
		}
	}

	if path[0] == GlobalNamespace && len(path) > 1 {
		return walk(r.ctx.Global, path[1:])
	}

	if r.ctx.Variables == nil {
		return nil
	}

	// Dotted payload keys take precedence over nested traversal so callers
	// may supply either {"user.name": "x"} or {"user": {"name": "x"}}.
	joined := strings.Join(path, ".")
	if v, ok := r.ctx.Variables[joined]; ok {
		return v
	}

	return walk(r.ctx.Variables, path)
}

// walk descends into nested maps segment by segment.
func walk(v any, segments []string) any {
	if v == nil {
		return nil
	}
	if len(segments) == 0 {
		return v
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return walk(m[segments[0]], segments[1:])
}

// truthy reports whether a value selects an if-branch: null, false, and the
// empty string/list/object are false, everything else (including zero
// numbers) is true.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// stringify renders a resolved value as template output. Objects and arrays
// serialize as compact JSON.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}
