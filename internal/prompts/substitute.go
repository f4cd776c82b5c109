package prompts

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Substitute replaces $name and ${name} placeholders with vars. "$$" yields a literal "$".
// Every placeholder must have a value.
func Substitute(tmpl string, vars map[string]string) (string, error) {
	missing := map[string]struct{}{}
	out := os.Expand(tmpl, func(name string) string {
		if name == "$" {
			return "$"
		}
		v, ok := vars[name]
		if !ok {
			missing[name] = struct{}{}
		}
		return v
	})
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		return "", fmt.Errorf("missing required variables: %s", strings.Join(names, ", "))
	}
	return out, nil
}

// ParseVars turns key=value pairs into a map.
func ParseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid variable format %q: use key=value", p)
		}
		vars[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return vars, nil
}
