package capture

import (
	"sync"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: 201,
		Headers:    http.Headers{"Content-Type": "application/json", "X-Auth-Token": "tok-1"},
		Body:       body,
	}
}

func TestExtract(t *testing.T) {
	resp := createResponse(`{"token":"abc123","user":{"id":42,"roles":["admin"],"manager":null}}`)

	tests := []struct {
		name  string
		cfg   Config
		value string
		found bool
	}{
		{"regex capture group", Config{Type: TypeRegex, Path: `token":"([^"]+)`}, "abc123", true},
		{"regex full match", Config{Type: TypeRegex, Path: `abc\d+`}, "abc123", true},
		{"regex no match", Config{Type: TypeRegex, Path: `secret=(\w+)`}, "", false},
		{"regex invalid", Config{Type: TypeRegex, Path: `([`}, "", false},
		{"json string is raw", Config{Type: TypeJSON, Path: "token"}, "abc123", true},
		{"json number", Config{Type: TypeJSON, Path: "user.id"}, "42", true},
		{"json array", Config{Type: TypeJSON, Path: "user.roles"}, `["admin"]`, true},
		{"json null", Config{Type: TypeJSON, Path: "user.manager"}, "null", true},
		{"json missing", Config{Type: TypeJSON, Path: "user.email"}, "", false},
		{"header case-insensitive", Config{Type: TypeHeader, Path: "x-auth-token"}, "tok-1", true},
		{"header missing", Config{Type: TypeHeader, Path: "X-Missing"}, "", false},
		{"status ignores path", Config{Type: TypeStatus, Path: "anything"}, "201", true},
		{"body", Config{Type: TypeBody}, resp.Body, true},
		{"unknown type", Config{Type: "cookie"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, found := Extract(tt.cfg, resp)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestExtract_JSONInvalidBody(t *testing.T) {
	_, found := Extract(Config{Type: TypeJSON, Path: "a"}, createResponse("plain text"))
	assert.False(t, found)
}

func TestExtract_JSONKeepsHTMLCharacters(t *testing.T) {
	resp := createResponse(`{"data":{"html":"<p>a&b</p>"}}`)
	v, found := Extract(Config{Type: TypeJSON, Path: "data"}, resp)
	assert.True(t, found)
	assert.Equal(t, `{"html":"<p>a&b</p>"}`, v)
}

func TestExtractAll(t *testing.T) {
	resp := createResponse(`{"id":1}`)
	got := ExtractAll(resp, []Config{
		{Type: TypeJSON, Path: "id", VariableName: "id"},
		{Type: TypeJSON, Path: "missing", VariableName: "gone"},
		{Type: TypeStatus, VariableName: "status"},
	})
	assert.Equal(t, map[string]string{"id": "1", "status": "201"}, got)
}

func TestCreateChainVariable(t *testing.T) {
	resp := createResponse(`{"token":"abc123"}`)

	v, err := CreateChainVariable(Config{Type: TypeJSON, Path: "token", VariableName: "authToken"}, resp)
	require.NoError(t, err)
	assert.Equal(t, "authToken", v.Name)
	assert.Equal(t, "abc123", v.Value)
	assert.Equal(t, "JSON path: token", v.Source)
	assert.NotEmpty(t, v.ID)
	assert.WithinDuration(t, time.Now(), v.CreatedAt, time.Minute)

	_, err = CreateChainVariable(Config{Type: TypeJSON, Path: "nope", VariableName: "x"}, resp)
	assert.ErrorIs(t, err, ErrCouldNotExtract)
	assert.Contains(t, err.Error(), "could not extract value")
}

func TestSource(t *testing.T) {
	assert.Equal(t, "Header: X-Id", Source(Config{Type: TypeHeader, Path: "X-Id"}))
	assert.Equal(t, "Regex: id=(\\d+)", Source(Config{Type: TypeRegex, Path: `id=(\d+)`}))
	assert.Equal(t, "Status code", Source(Config{Type: TypeStatus}))
	assert.Equal(t, "Response body", Source(Config{Type: TypeBody}))
}

func TestStore_UpsertReplacesByName(t *testing.T) {
	s := NewStore()
	s.Upsert(ChainVariable{ID: "1", Name: "token", Value: "old"})
	s.Upsert(ChainVariable{ID: "2", Name: "user", Value: "u"})
	s.Upsert(ChainVariable{ID: "3", Name: "token", Value: "new"})

	assert.Equal(t, 2, s.Len())
	v, ok := s.Get("token")
	require.True(t, ok)
	assert.Equal(t, "3", v.ID)
	assert.Equal(t, map[string]string{"token": "new", "user": "u"}, s.Vars())

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "token", list[0].Name)
	assert.Equal(t, "user", list[1].Name)

	assert.True(t, s.Remove("user"))
	assert.False(t, s.Remove("user"))
	s.Clear()
	assert.Zero(t, s.Len())
}

func TestStore_ConcurrentUpsert(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Upsert(ChainVariable{Name: "shared", Value: "v"})
			_ = s.Vars()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, s.Len())
}
