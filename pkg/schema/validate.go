package schema

// Result is the outcome of validating a caller payload against a merged
// variable schema. Variables is a copy of the payload augmented with
// declared defaults; the caller's original map is never mutated.
type Result struct {
	MissingRequired []string
	Variables       map[string]any
}

// Validate checks a caller-supplied payload against the merged schema.
//
// A required variable is missing when the payload lacks the key, or, for
// STRING-typed variables only, when the value is the empty string. The
// empty-string rule deliberately does not extend to NUMBER or BOOLEAN zero
// values.
//
// A present value whose type does not match the declaration is an
// *InvalidTypeError; validation stops at the first mismatch.
//
// Callers must treat a non-empty MissingRequired as a hard precondition
// failure and not proceed to compilation.
func Validate(vars []Variable, payload map[string]any) (*Result, error) {
	res := &Result{
		Variables: make(map[string]any, len(payload)+len(vars)),
	}
	for k, v := range payload {
		res.Variables[k] = v
	}

	for _, v := range vars {
		val, present := payload[v.Name]

		if present {
			if !matches(v.Type, val) {
				return nil, &InvalidTypeError{
					Name:     v.Name,
					Expected: v.Type,
					Actual:   actualType(val),
				}
			}
		}

		missing := !present
		if present && v.Type == TypeString {
			if s, ok := val.(string); ok && s == "" {
				missing = true
			}
		}

		if missing && v.Required {
			res.MissingRequired = append(res.MissingRequired, v.Name)
		}

		if !present && v.Default != nil {
			res.Variables[v.Name] = v.Default
		}
	}

	return res, nil
}
