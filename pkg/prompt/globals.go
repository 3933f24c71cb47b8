package prompt

import (
	"strings"

	"github.com/promptlane/promptlane/pkg/template"
)

// MissingGlobals returns the `global.`-namespace paths the parsed template
// references but the supplied context does not resolve. For chat prompts
// the check runs per message and the caller unions the results.
func MissingGlobals(t *template.Template, global map[string]any) []string {
	var missing []string
	for _, path := range template.ScanGlobals(t) {
		if !resolvesGlobal(global, path) {
			missing = append(missing, path)
		}
	}
	return missing
}

// resolvesGlobal reports whether a dotted path resolves to a non-nil value,
// accepting either a flat dotted key or nested maps.
func resolvesGlobal(global map[string]any, path string) bool {
	if global == nil {
		return false
	}
	if v, ok := global[path]; ok {
		return v != nil
	}

	var cur any = global
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		cur, ok = m[seg]
		if !ok {
			return false
		}
	}
	return cur != nil
}
