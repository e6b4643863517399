package env

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		vars     map[string]string
		expected string
	}{
		{"no tokens", "hello world", map[string]string{"a": "b"}, "hello world"},
		{"simple", "hello {{name}}", map[string]string{"name": "world"}, "hello world"},
		{"trimmed name", "hello {{  name }}", map[string]string{"name": "world"}, "hello world"},
		{"repeated token", "{{a}}-{{a}}", map[string]string{"a": "x"}, "x-x"},
		{"unknown kept", "hello {{unknown}}", map[string]string{"name": "world"}, "hello {{unknown}}"},
		{"unknown kept with spaces", "{{ unknown }}", map[string]string{"a": "b"}, "{{ unknown }}"},
		{"empty value", "[{{a}}]", map[string]string{"a": ""}, "[]"},
		{"nil vars", "{{a}}", nil, "{{a}}"},
		{"empty braces are not a token", "{{}}", map[string]string{"": "x"}, "{{}}"},
		{"single closing brace breaks token", "{{a}b}}", map[string]string{"a": "x", "a}b": "y"}, "{{a}b}}"},
		{"opening brace inside name", "{{{a}}", map[string]string{"{a": "x"}, "x"},
		{"value is not rescanned", "{{a}}", map[string]string{"a": "{{b}}", "b": "nope"}, "{{b}}"},
		{"scenario 5", "https://{{host}}/{{path}}", map[string]string{"host": "api.example.com"}, "https://api.example.com/{{path}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Substitute(tt.input, tt.vars))
		})
	}

	assert.True(t, HasVariables(Substitute("https://{{host}}/{{path}}", map[string]string{"host": "api.example.com"})))
}

func TestSubstitute_Idempotent(t *testing.T) {
	vars := map[string]string{"host": "api.example.com", "id": "42"}
	inputs := []string{
		"https://{{host}}/users/{{id}}",
		"{{ host }}{{id}}{{host}}",
		"no tokens at all",
	}
	for _, input := range inputs {
		once := Substitute(input, vars)
		assert.Equal(t, once, Substitute(once, vars), input)
	}
}

func TestSubstitute_PartialResolutionIsStable(t *testing.T) {
	vars := map[string]string{"host": "api.example.com"}
	input := "https://{{host}}/{{ path }}?q={{query}}"

	out := Substitute(input, vars)
	assert.Contains(t, out, "{{ path }}")
	assert.Contains(t, out, "{{query}}")

	staged := Substitute(out, map[string]string{"path": "v1", "query": "x"})
	assert.Equal(t, "https://api.example.com/v1?q=x", staged)
}

func TestSubstituteBatch(t *testing.T) {
	vars := map[string]string{"a": "1"}
	out := SubstituteBatch([]string{"{{a}}", "{{b}}", "", "x{{a}}x"}, vars)
	assert.Equal(t, []string{"1", "{{b}}", "", "x1x"}, out)
	assert.Empty(t, SubstituteBatch(nil, vars))
}

func TestSubstituteHeaders(t *testing.T) {
	vars := map[string]string{"name": "X-Token", "token": "secret"}
	out := SubstituteHeaders(map[string]string{
		"{{name}}":     "{{token}}",
		"Content-Type": "application/json",
		"X-Other":      "{{missing}}",
	}, vars)

	assert.Equal(t, map[string]string{
		"X-Token":      "secret",
		"Content-Type": "application/json",
		"X-Other":      "{{missing}}",
	}, out)
}

func TestSubstituteHeaders_CollisionIsDeterministic(t *testing.T) {
	vars := map[string]string{"h": "X-Key"}
	headers := map[string]string{"{{h}}": "from-token", "X-Key": "literal"}

	for i := 0; i < 20; i++ {
		out := SubstituteHeaders(headers, vars)
		require.Len(t, out, 1)
		// "{{h}}" sorts after "X-Key", so it is applied last.
		assert.Equal(t, "from-token", out["X-Key"])
	}
}

func TestFindVariables(t *testing.T) {
	assert.Equal(t, []string{"host", "path"}, FindVariables("{{host}}/{{ path }}/{{host}}"))
	assert.Equal(t, []string{}, FindVariables("plain"))
	assert.Equal(t, []string{}, FindVariables(""))
	assert.Equal(t, []string{"b", "a"}, FindVariables("{{b}}{{a}}{{b}}"))
}

func TestHasVariables(t *testing.T) {
	assert.True(t, HasVariables("{{x}}"))
	assert.True(t, HasVariables("a {{ x }} b"))
	assert.False(t, HasVariables("{{}}"))
	assert.False(t, HasVariables("{x}"))
	assert.False(t, HasVariables(""))
}

func TestResolverResolve(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		variables map[string]string
		chain     map[string]string
		expected  string
	}{
		{
			name:     "no variables",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:      "simple variable",
			input:     "hello {{name}}",
			variables: map[string]string{"name": "world"},
			expected:  "hello world",
		},
		{
			name:     "chain variable",
			input:    "project {{projectId}}",
			chain:    map[string]string{"projectId": "123"},
			expected: "project 123",
		},
		{
			name:      "chain variable wins",
			input:     "{{token}}",
			variables: map[string]string{"token": "env"},
			chain:     map[string]string{"token": "chain"},
			expected:  "chain",
		},
		{
			name:     "process environment",
			input:    "{{$VOLTTEST_REGION}}",
			expected: "eu-west-1",
		},
		{
			name:     "unresolved stays as-is",
			input:    "hello {{unknown}}",
			expected: "hello {{unknown}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VOLTTEST_REGION", "eu-west-1")
			r := NewResolver()
			r.SetVariables(tt.variables)
			for k, v := range tt.chain {
				r.SetChainVariable(k, v)
			}
			assert.Equal(t, tt.expected, r.Resolve(tt.input))
		})
	}
}

func TestResolverWarnsOnUnresolved(t *testing.T) {
	var warnings []string
	r := NewResolver()
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})
	r.SetVariable("host", "localhost")

	out := r.Resolve("http://{{host}}/{{missing}}")
	assert.Equal(t, "http://localhost/{{missing}}", out)
	assert.Equal(t, []string{"unresolved variable: missing"}, warnings)
}

func TestResolverGetUnresolvedVariables(t *testing.T) {
	r := NewResolver()
	r.SetVariable("foo", "hello")
	r.SetChainVariable("setup.projectId", "1")

	assert.Equal(t, []string{"bar"}, r.GetUnresolvedVariables("{{foo}} and {{bar}} {{setup.projectId}}"))
	assert.False(t, r.HasUnresolvedVariables("{{foo}}"))
	assert.True(t, r.HasUnresolvedVariables("{{bar}}"))
}

func TestResolverResolveHeaders(t *testing.T) {
	r := NewResolver()
	r.SetVariables(map[string]string{"token": "abc"})
	out := r.ResolveHeaders(map[string]string{"Authorization": "Bearer {{token}}"})
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc"}, out)
}

func TestResolverClone(t *testing.T) {
	r := NewResolver()
	r.SetVariable("a", "1")
	clone := r.Clone()
	clone.SetVariable("a", "2")

	v, _ := r.GetVariable("a")
	assert.Equal(t, "1", v)
	v, _ = clone.GetVariable("a")
	assert.Equal(t, "2", v)
}
