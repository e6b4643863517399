package suite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
name: Users API
variables:
  host: localhost:8080
  retries: 3
requests:
  - name: login
    method: POST
    url: http://{{host}}/login
    headers:
      Content-Type: application/json
    body: '{"user":"a"}'
    timeout: 5s
    tags: [auth]
    assertions:
      - type: status
        operator: equals
        expected: 200
      - id: fixed
        type: bodyJson
        property: user.name
        operator: equals
        expected: '"john"'
        enabled: false
    extract:
      - type: json
        path: token
        variableName: token
  - name: recorded
    response: fixtures/resp.json
`

func TestParse_Valid(t *testing.T) {
	s, err := Parse([]byte(validYAML), "/tmp/suites/users.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Users API", s.Name)
	assert.Equal(t, "3", s.Variables["retries"])
	require.Len(t, s.Requests, 2)

	login := s.Requests[0]
	assert.Equal(t, "POST", login.Method)
	assert.Equal(t, "application/json", login.Headers["Content-Type"])
	assert.Equal(t, "5s", login.Timeout)
	assert.Equal(t, int64(5000), login.TimeoutDuration().Milliseconds())
	assert.Equal(t, []string{"auth"}, login.Tags)

	list := login.AssertionList()
	require.Len(t, list, 2)
	assert.Equal(t, "200", list[0].Expected)
	assert.True(t, list[0].Enabled, "enabled defaults to true")
	assert.NotEmpty(t, list[0].ID, "missing IDs are generated")
	assert.Equal(t, "fixed", list[1].ID)
	assert.False(t, list[1].Enabled)

	require.Len(t, login.Extract, 1)
	assert.Equal(t, "token", login.Extract[0].VariableName)

	assert.Equal(t, filepath.Join("/tmp/suites", "fixtures/resp.json"), s.ResolvePath(s.Requests[1].Response))
}

func TestParse_JSON(t *testing.T) {
	doc := `{"name":"j","requests":[{"url":"http://x","assertions":[{"type":"status","operator":"lessThan","expected":"500"}]}]}`
	s, err := Parse([]byte(doc), "j.json")
	require.NoError(t, err)
	assert.Equal(t, "request 1", s.Requests[0].DisplayName(0))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not yaml", "requests: [", "yaml"},
		{"no requests", "name: x", "requests"},
		{"empty requests", "requests: []", "requests"},
		{"neither url nor response", "requests:\n  - name: a\n", "requests.0"},
		{"unknown field", "requests:\n  - url: http://x\n    verb: GET\n", "verb"},
		{"unknown assertion type", "requests:\n  - url: http://x\n    assertions:\n      - type: latency\n        operator: equals\n", "type"},
		{"operator outside type", "requests:\n  - url: http://x\n    assertions:\n      - type: status\n        operator: contains\n", "Unknown operator: contains"},
		{"bad timeout", "requests:\n  - url: http://x\n    timeout: soon\n", "invalid timeout"},
		{"extraction without variable", "requests:\n  - url: http://x\n    extract:\n      - type: status\n", "variableName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "bad.yaml")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSuite))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidSuite))
}
