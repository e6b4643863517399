package accel

import "strings"

// forEachToken calls fn for every {{name}} token in text, left to right,
// with the byte range of the token and its trimmed name. It matches exactly
// what env's token pattern matches. fn returns false to stop.
func forEachToken(text string, fn func(start, end int, name string) bool) {
	i := 0
	for i < len(text) {
		j := strings.Index(text[i:], "{{")
		if j < 0 {
			return
		}
		start := i + j
		k := strings.IndexByte(text[start+2:], '}')
		if k < 0 {
			return
		}
		closing := start + 2 + k
		if k > 0 && closing+1 < len(text) && text[closing+1] == '}' {
			if !fn(start, closing+2, strings.TrimSpace(text[start+2:closing])) {
				return
			}
			i = closing + 2
			continue
		}
		i = start + 1
	}
}

func substitute(text string, vars map[string]string) string {
	if text == "" || len(vars) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	var sb strings.Builder
	last := 0
	replaced := false
	forEachToken(text, func(start, end int, name string) bool {
		val, ok := vars[name]
		if !ok {
			return true
		}
		if !replaced {
			sb.Grow(len(text))
			replaced = true
		}
		sb.WriteString(text[last:start])
		sb.WriteString(val)
		last = end
		return true
	})
	if !replaced {
		return text
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func findVariables(text string) []string {
	names := []string{}
	if text == "" {
		return names
	}
	seen := make(map[string]bool)
	forEachToken(text, func(_, _ int, name string) bool {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return true
	})
	return names
}

func hasVariables(text string) bool {
	found := false
	forEachToken(text, func(_, _ int, _ string) bool {
		found = true
		return false
	})
	return found
}
