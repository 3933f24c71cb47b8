// Package template implements the prompt template dialect: `{{ path }}`
// interpolation with dotted-path access, `{% if %}`/`{% for %}` control
// blocks, and the `{% include "slug@version" %}` directive. A reserved
// `global.` namespace addresses context supplied by the project rather than
// the caller payload.
//
// The package is split into three pure, synchronous operations: Parse
// (source → AST), Scan (AST → inferred variable schema), and Render
// (AST + context → text). None of them retain state across calls.
package template

import (
	"fmt"
	"strings"
)

// GlobalNamespace is the reserved path prefix for project-level context.
const GlobalNamespace = "global"

const (
	openVar  = "{{"
	closeVar = "}}"
	openTag  = "{%"
	closeTag = "%}"
)

// ParseError reports malformed template syntax with the byte offset and
// 1-based line of the failure.
type ParseError struct {
	Msg    string
	Offset int
	Line   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("template parse error at line %d (offset %d): %s", e.Line, e.Offset, e.Msg)
}

// Node is one parsed element of a template.
type Node interface {
	node()
}

// TextNode is a literal run of template text.
type TextNode struct {
	Text string
}

// VarNode is a `{{ path }}` interpolation site.
type VarNode struct {
	Path   []string
	Offset int
}

// IfNode is a `{% if path %} … {% else %} … {% endif %}` block.
// Negated is set for `{% if not path %}`.
type IfNode struct {
	Cond    []string
	Negated bool
	Then    []Node
	Else    []Node
	Offset  int
}

// ForNode is a `{% for ident in path %} … {% endfor %}` block. The loop
// variable shadows payload variables of the same name inside the body.
type ForNode struct {
	Var    string
	Path   []string
	Body   []Node
	Offset int
}

// IncludeNode is a `{% include "slug@version" %}` directive. Version is
// empty when the directive names only a slug, which resolves to the latest
// available version.
type IncludeNode struct {
	Slug    string
	Version string
	Offset  int
}

func (*TextNode) node()    {}
func (*VarNode) node()     {}
func (*IfNode) node()      {}
func (*ForNode) node()     {}
func (*IncludeNode) node() {}

// Template is a parsed template ready for scanning and rendering.
type Template struct {
	Source string
	Nodes  []Node
}

// Parse parses template source into an AST. Syntactically invalid input
// returns a *ParseError; semantically unknown but well-formed paths never
// fail at parse time.
func Parse(source string) (*Template, error) {
	p := &parser{src: source}

	nodes, stop, err := p.parseNodes(nil)
	if err != nil {
		return nil, err
	}
	if stop != "" {
		return nil, p.errorf(p.pos, "unexpected {%% %s %%}", stop)
	}

	return &Template{Source: source, Nodes: nodes}, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(offset int, format string, args ...any) *ParseError {
	line := 1 + strings.Count(p.src[:offset], "\n")
	return &ParseError{
		Msg:    fmt.Sprintf(format, args...),
		Offset: offset,
		Line:   line,
	}
}

// parseNodes parses until EOF or until a block-terminating tag named in
// stops is seen. It returns the parsed nodes and the terminating tag
// keyword ("" at EOF).
func (p *parser) parseNodes(stops []string) ([]Node, string, error) {
	var nodes []Node

	for p.pos < len(p.src) {
		rest := p.src[p.pos:]

		iVar := strings.Index(rest, openVar)
		iTag := strings.Index(rest, openTag)

		next := -1
		isTag := false
		switch {
		case iVar == -1 && iTag == -1:
			// no more expression sites
		case iTag == -1 || (iVar != -1 && iVar < iTag):
			next = iVar
		default:
			next = iTag
			isTag = true
		}

		if next == -1 {
			nodes = append(nodes, &TextNode{Text: rest})
			p.pos = len(p.src)
			return nodes, "", nil
		}

		if next > 0 {
			nodes = append(nodes, &TextNode{Text: rest[:next]})
		}
		p.pos += next

		if !isTag {
			node, err := p.parseVar()
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, node)
			continue
		}

		keyword, fields, offset, err := p.parseTag()
		if err != nil {
			return nil, "", err
		}

		for _, stop := range stops {
			if keyword == stop {
				if len(fields) > 0 {
					return nil, "", p.errorf(offset, "unexpected arguments after %q", keyword)
				}
				return nodes, keyword, nil
			}
		}

		node, err := p.parseBlock(keyword, fields, offset)
		if err != nil {
			return nil, "", err
		}
		nodes = append(nodes, node)
	}

	return nodes, "", nil
}

// parseVar consumes a `{{ path }}` site starting at p.pos.
func (p *parser) parseVar() (*VarNode, error) {
	start := p.pos
	end := strings.Index(p.src[p.pos:], closeVar)
	if end == -1 {
		return nil, p.errorf(start, "unclosed %q", openVar)
	}

	inner := strings.TrimSpace(p.src[p.pos+len(openVar) : p.pos+end])
	path, err := p.parsePath(inner, start)
	if err != nil {
		return nil, err
	}

	p.pos += end + len(closeVar)
	return &VarNode{Path: path, Offset: start}, nil
}

// parseTag consumes a `{% … %}` site and returns its keyword, remaining
// fields, and the tag's source offset.
func (p *parser) parseTag() (string, []string, int, error) {
	start := p.pos
	end := strings.Index(p.src[p.pos:], closeTag)
	if end == -1 {
		return "", nil, 0, p.errorf(start, "unclosed %q", openTag)
	}

	inner := strings.TrimSpace(p.src[p.pos+len(openTag) : p.pos+end])
	p.pos += end + len(closeTag)

	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return "", nil, 0, p.errorf(start, "empty tag")
	}

	return fields[0], fields[1:], start, nil
}

// parseBlock dispatches a non-terminating tag keyword.
func (p *parser) parseBlock(keyword string, fields []string, offset int) (Node, error) {
	switch keyword {
	case "if":
		return p.parseIf(fields, offset)
	case "for":
		return p.parseFor(fields, offset)
	case "include":
		return p.parseInclude(fields, offset)
	case "else", "endif", "endfor":
		return nil, p.errorf(offset, "unexpected {%% %s %%}", keyword)
	default:
		return nil, p.errorf(offset, "unknown tag %q", keyword)
	}
}

func (p *parser) parseIf(fields []string, offset int) (*IfNode, error) {
	negated := false
	if len(fields) > 0 && fields[0] == "not" {
		negated = true
		fields = fields[1:]
	}
	if len(fields) != 1 {
		return nil, p.errorf(offset, "if expects a single path")
	}

	cond, err := p.parsePath(fields[0], offset)
	if err != nil {
		return nil, err
	}

	then, stop, err := p.parseNodes([]string{"else", "endif"})
	if err != nil {
		return nil, err
	}

	node := &IfNode{Cond: cond, Negated: negated, Then: then, Offset: offset}

	if stop == "else" {
		node.Else, stop, err = p.parseNodes([]string{"endif"})
		if err != nil {
			return nil, err
		}
	}
	if stop != "endif" {
		return nil, p.errorf(offset, "unterminated if block")
	}

	return node, nil
}

func (p *parser) parseFor(fields []string, offset int) (*ForNode, error) {
	if len(fields) != 3 || fields[1] != "in" {
		return nil, p.errorf(offset, "for expects %q", "for ident in path")
	}
	if !isIdent(fields[0]) {
		return nil, p.errorf(offset, "invalid loop variable %q", fields[0])
	}

	path, err := p.parsePath(fields[2], offset)
	if err != nil {
		return nil, err
	}

	body, stop, err := p.parseNodes([]string{"endfor"})
	if err != nil {
		return nil, err
	}
	if stop != "endfor" {
		return nil, p.errorf(offset, "unterminated for block")
	}

	return &ForNode{Var: fields[0], Path: path, Body: body, Offset: offset}, nil
}

func (p *parser) parseInclude(fields []string, offset int) (*IncludeNode, error) {
	if len(fields) != 1 {
		return nil, p.errorf(offset, "include expects a quoted reference")
	}

	ref := fields[0]
	if len(ref) < 2 || ref[0] != '"' || ref[len(ref)-1] != '"' {
		return nil, p.errorf(offset, "include reference must be quoted")
	}
	ref = ref[1 : len(ref)-1]

	slug, ver := ref, ""
	if at := strings.IndexByte(ref, '@'); at != -1 {
		slug, ver = ref[:at], ref[at+1:]
	}
	if slug == "" {
		return nil, p.errorf(offset, "include reference has no slug")
	}

	return &IncludeNode{Slug: slug, Version: ver, Offset: offset}, nil
}

// parsePath splits a dotted path expression into segments, validating each
// segment is an identifier.
func (p *parser) parsePath(expr string, offset int) ([]string, error) {
	if expr == "" {
		return nil, p.errorf(offset, "empty expression")
	}

	segments := strings.Split(expr, ".")
	for _, seg := range segments {
		if !isIdent(seg) {
			return nil, p.errorf(offset, "invalid path %q", expr)
		}
	}

	return segments, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
