package template

import (
	"strings"

	"github.com/promptlane/promptlane/pkg/schema"
)

// use kinds recorded during the scan walk.
const (
	useInterp = iota
	useCond
	useLoop
)

type use struct {
	path    string
	kind    int
	guarded bool
}

// Scan walks the template's expression sites and infers the variable schema
// the template references. Paths under the `global.` namespace and loop
// variables are excluded.
//
// Inference rules: an interpolated leaf is STRING, a path used only as an
// `if` condition is BOOLEAN, a `for` iteration target is JSON, and any path
// with deeper accesses beneath it is JSON with children. A variable is
// required unless every non-condition use sits inside a conditional that
// guards the same path (equal or prefix); condition uses alone never make a
// variable required — testing a path is itself the fallback for its absence.
//
// Descriptors are deduplicated by name in order of first appearance.
func Scan(t *Template) []schema.Variable {
	uses := collect(t.Nodes, nil, nil)

	var filtered []use
	for _, u := range uses {
		if strings.SplitN(u.path, ".", 2)[0] == GlobalNamespace {
			continue
		}
		filtered = append(filtered, u)
	}

	return build(filtered, "")
}

// ScanGlobals returns the distinct `global.`-namespace paths the template
// references, with the namespace prefix stripped, in order of first
// appearance.
func ScanGlobals(t *Template) []string {
	uses := collect(t.Nodes, nil, nil)

	var paths []string
	seen := make(map[string]bool)
	for _, u := range uses {
		root, rest, ok := strings.Cut(u.path, ".")
		if root != GlobalNamespace || !ok {
			continue
		}
		if seen[rest] {
			continue
		}
		seen[rest] = true
		paths = append(paths, rest)
	}

	return paths
}

// ScanIncludes returns the template's include directives in document
// order, including those nested inside conditionals and loops.
func ScanIncludes(t *Template) []*IncludeNode {
	return collectIncludes(t.Nodes)
}

func collectIncludes(nodes []Node) []*IncludeNode {
	var includes []*IncludeNode
	for _, n := range nodes {
		switch n := n.(type) {
		case *IncludeNode:
			includes = append(includes, n)
		case *IfNode:
			includes = append(includes, collectIncludes(n.Then)...)
			includes = append(includes, collectIncludes(n.Else)...)
		case *ForNode:
			includes = append(includes, collectIncludes(n.Body)...)
		}
	}
	return includes
}

// collect gathers every path use in node order. guards holds the condition
// paths in scope for the current branch; loops holds in-scope loop
// variables, whose paths are not prompt variables.
func collect(nodes []Node, guards []string, loops map[string]bool) []use {
	var uses []use

	record := func(path []string, kind int) {
		if loops[path[0]] {
			return
		}
		p := strings.Join(path, ".")
		uses = append(uses, use{path: p, kind: kind, guarded: isGuarded(guards, p)})
	}

	for _, n := range nodes {
		switch n := n.(type) {
		case *VarNode:
			record(n.Path, useInterp)

		case *IfNode:
			record(n.Cond, useCond)
			cond := strings.Join(n.Cond, ".")

			thenGuards, elseGuards := guards, guards
			if n.Negated {
				elseGuards = append(append([]string{}, guards...), cond)
			} else {
				thenGuards = append(append([]string{}, guards...), cond)
			}

			uses = append(uses, collect(n.Then, thenGuards, loops)...)
			uses = append(uses, collect(n.Else, elseGuards, loops)...)

		case *ForNode:
			record(n.Path, useLoop)

			bodyLoops := make(map[string]bool, len(loops)+1)
			for k := range loops {
				bodyLoops[k] = true
			}
			bodyLoops[n.Var] = true

			uses = append(uses, collect(n.Body, guards, bodyLoops)...)
		}
	}

	return uses
}

// isGuarded reports whether path sits under any in-scope condition guard.
func isGuarded(guards []string, path string) bool {
	for _, g := range guards {
		if path == g || strings.HasPrefix(path, g+".") {
			return true
		}
	}
	return false
}

// build folds recorded uses into descriptors for the paths directly under
// the given prefix ("" for roots), recursing for nested shapes.
func build(uses []use, prefix string) []schema.Variable {
	var order []string
	grouped := make(map[string][]use)

	for _, u := range uses {
		if prefix != "" && !strings.HasPrefix(u.path, prefix+".") {
			continue
		}

		rel := u.path
		if prefix != "" {
			rel = strings.TrimPrefix(u.path, prefix+".")
		}
		name := strings.SplitN(rel, ".", 2)[0]
		full := name
		if prefix != "" {
			full = prefix + "." + name
		}

		if _, ok := grouped[full]; !ok {
			order = append(order, full)
		}
		grouped[full] = append(grouped[full], u)
	}

	vars := make([]schema.Variable, 0, len(order))
	for _, name := range order {
		group := grouped[name]

		v := schema.Variable{
			Name: name,
			Type: inferType(group, name),
		}

		for _, u := range group {
			if u.kind != useCond && !u.guarded {
				v.Required = true
			}
		}

		if v.Type == schema.TypeJSON {
			v.Children = build(group, name)
		}

		vars = append(vars, v)
	}

	return vars
}

// inferType decides a descriptor's type from the uses at and beneath it.
func inferType(group []use, name string) schema.Type {
	hasChildren := false
	hasLoop := false
	hasInterp := false

	for _, u := range group {
		switch {
		case u.path != name:
			hasChildren = true
		case u.kind == useLoop:
			hasLoop = true
		case u.kind == useInterp:
			hasInterp = true
		}
	}

	switch {
	case hasChildren, hasLoop:
		return schema.TypeJSON
	case hasInterp:
		return schema.TypeString
	default:
		return schema.TypeBoolean
	}
}
