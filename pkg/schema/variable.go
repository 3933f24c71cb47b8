// Package schema defines the typed variable tree a prompt declares or has
// inferred from its template, and the merge and validation rules applied to
// it before compilation.
package schema

import "fmt"

// Type is the declared type of a prompt variable.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeJSON    Type = "json"
)

// Variable describes one variable referenced by a prompt template.
// Name is a dotted path for nested JSON fields ("user.name"). Children is
// only populated for JSON-typed variables. Variables are treated as
// immutable once compilation begins.
type Variable struct {
	Name     string     `json:"name" toml:"name"`
	Type     Type       `json:"type" toml:"type"`
	Required bool       `json:"required" toml:"required"`
	Default  any        `json:"default_value,omitempty" toml:"default,omitempty"`
	Children []Variable `json:"children,omitempty" toml:"children,omitempty"`
}

// InvalidTypeError reports a payload value whose Go type does not match the
// variable's declared type.
type InvalidTypeError struct {
	Name     string
	Expected Type
	Actual   string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("variable %q: expected %s, got %s", e.Name, e.Expected, e.Actual)
}

// actualType names the Go-side type of a payload value for error messages.
func actualType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	case map[string]any, []any:
		return "json"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// matches reports whether a payload value satisfies the declared type.
// JSON accepts objects and arrays; numbers accept any numeric Go kind
// (payloads decoded from JSON arrive as float64).
func matches(t Type, v any) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		switch v.(type) {
		case float64, float32, int, int32, int64, uint, uint32, uint64:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeJSON:
		switch v.(type) {
		case map[string]any, []any:
			return true
		}
		return false
	}
	return false
}
