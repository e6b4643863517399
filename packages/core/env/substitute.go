package env

import (
	"regexp"
	"sort"
	"strings"
)

// variablePattern matches a {{name}} token. The name is every character up to
// the first closing brace and is trimmed before lookup.
var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Substitute replaces every {{name}} token whose trimmed name is a key of vars.
// Tokens with unknown names are left byte-for-byte unchanged so a later pass
// can resolve them.
func Substitute(text string, vars map[string]string) string {
	if text == "" || len(vars) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	return variablePattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if val, ok := vars[name]; ok {
			return val
		}
		return match
	})
}

// SubstituteBatch applies Substitute to each element of texts, in order.
func SubstituteBatch(texts []string, vars map[string]string) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = Substitute(text, vars)
	}
	return out
}

// SubstituteHeaders applies Substitute to both names and values. Names are
// processed in sorted order, so when two substituted names collide the one
// whose original name sorts last wins.
func SubstituteHeaders(headers map[string]string, vars map[string]string) map[string]string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string, len(headers))
	for _, name := range names {
		out[Substitute(name, vars)] = Substitute(headers[name], vars)
	}
	return out
}

// FindVariables returns the unique trimmed token names in text, in the order
// they first appear.
func FindVariables(text string) []string {
	if text == "" || !strings.Contains(text, "{{") {
		return []string{}
	}
	var names []string
	seen := make(map[string]bool)
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if names == nil {
		return []string{}
	}
	return names
}

// HasVariables reports whether text contains at least one {{name}} token.
func HasVariables(text string) bool {
	if text == "" {
		return false
	}
	return variablePattern.MatchString(text)
}
