// Package cliargs parses variable and global-context flags shared by the
// compile and run commands.
package cliargs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseAssignments folds repeated key=value flags into a payload map.
// Values that parse as JSON (numbers, booleans, arrays, objects, quoted
// strings) are decoded; anything else is taken as a plain string. Dotted
// keys create nested maps.
func ParseAssignments(assignments []string) (map[string]any, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	out := make(map[string]any)
	for _, a := range assignments {
		key, raw, ok := strings.Cut(a, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q (want key=value)", a)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}

		set(out, strings.Split(key, "."), value)
	}
	return out, nil
}

// DecodeJSON decodes a JSON object flag. Empty input yields nil.
func DecodeJSON(s string) (map[string]any, error) {
	if s == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return out, nil
}

// Merge overlays b onto a, returning a new map. Either side may be nil.
func Merge(a, b map[string]any) map[string]any {
	if a == nil && b == nil {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func set(m map[string]any, path []string, value any) {
	if len(path) == 1 {
		m[path[0]] = value
		return
	}
	child, ok := m[path[0]].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m[path[0]] = child
	}
	set(child, path[1:], value)
}
