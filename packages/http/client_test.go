package http

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"name":"ada"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer server.Close()

	req := NewRequest("post", server.URL+"/users").
		SetHeader("Content-Type", "application/json").
		SetBody(`{"name":"ada"}`)
	resp, err := NewClient().Do(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "201 Created", resp.StatusText)
	assert.Equal(t, `{"id":7}`, resp.Body)
	assert.Equal(t, "a, b", resp.Header("x-multi"))
	assert.True(t, resp.IsJSON())
	assert.GreaterOrEqual(t, resp.TimingMs, int64(0))
}

func TestClient_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEqual(t, "evil.example", r.Host)
		assert.Equal(t, "Bearer default", r.Header.Get("Authorization"))
		assert.Equal(t, "request", r.Header.Get("X-Trace"))
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeaders(map[string]string{
		"Authorization": "Bearer default",
		"X-Trace":       "default",
		"User-Agent":    "custom-agent",
	}))
	resp, err := client.Get(context.Background(), server.URL, map[string]string{
		"Host":    "evil.example",
		"X-Trace": "request",
	})
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestClient_CaseVariantHeadersAreDeterministic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"lower"}, r.Header.Values("X-Dup"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	for i := 0; i < 20; i++ {
		_, err := NewClient().Get(context.Background(), server.URL, map[string]string{
			"X-Dup": "upper",
			"x-dup": "lower",
		})
		require.NoError(t, err)
	}
}

func TestClient_BinaryBodyIsBase64(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	resp, err := NewClient().Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), resp.Body)
}

func TestClient_Timeouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Run("client timeout", func(t *testing.T) {
		_, err := NewClient(WithTimeout(50*time.Millisecond)).Get(context.Background(), server.URL, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "context deadline exceeded")
	})

	t.Run("request timeout overrides client", func(t *testing.T) {
		req := NewRequest("GET", server.URL).SetTimeout(50 * time.Millisecond)
		_, err := NewClient(WithTimeout(time.Minute)).Do(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient().Get(ctx, server.URL, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_EffectiveTimeoutIsCapped(t *testing.T) {
	c := NewClient(WithTimeout(time.Hour))
	assert.Equal(t, MaxTimeout, c.effectiveTimeout(&Request{}))
	assert.Equal(t, time.Second, c.effectiveTimeout(&Request{Timeout: time.Second}))
}

func TestClient_Redirects(t *testing.T) {
	hops := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/final":
			_, _ = w.Write([]byte("final"))
		case "/loop":
			hops++
			http.Redirect(w, r, "/loop", http.StatusFound)
		default:
			http.Redirect(w, r, "/final", http.StatusFound)
		}
	}))
	defer server.Close()
	ctx := context.Background()

	resp, err := NewClient().Get(ctx, server.URL+"/start", nil)
	require.NoError(t, err)
	assert.Equal(t, "final", resp.Body)

	resp, err = NewClient(WithFollowRedirects(false)).Get(ctx, server.URL+"/start", nil)
	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
	assert.True(t, resp.IsRedirect())

	resp, err = NewClient(WithMaxRedirects(3)).Get(ctx, server.URL+"/loop", nil)
	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
	assert.Equal(t, 3, hops)
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr string
	}{
		{"empty method defaults to GET", &Request{URL: "http://example.com"}, ""},
		{"lower-case method", &Request{Method: "patch", URL: "http://example.com"}, ""},
		{"missing URL", &Request{Method: "GET"}, "URL is required"},
		{"bad method", &Request{Method: "TRACE", URL: "http://example.com"}, "invalid HTTP method"},
		{"ftp scheme", &Request{URL: "ftp://example.com"}, "unsupported URL scheme"},
		{"no scheme", &Request{URL: "example.com/path"}, "unsupported URL scheme"},
		{"no host", &Request{URL: "http:///path"}, "URL must have a host"},
		{"body too large", &Request{Method: "POST", URL: "http://example.com", Body: strings.Repeat("x", MaxRequestBodySize+1)}, "request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := NewClient().Do(context.Background(), &Request{Method: "TRACE", URL: "http://localhost"})
	assert.ErrorContains(t, err, "invalid HTTP method")
}

func TestHeaders_Get(t *testing.T) {
	h := Headers{"Content-Type": "application/json", "x-id": "1", "X-ID": "2"}

	v, ok := h.Get("content-type")
	assert.True(t, ok)
	assert.Equal(t, "application/json", v)

	v, ok = h.Get("x-id")
	assert.True(t, ok)
	assert.Equal(t, "1", v, "exact match wins")

	v, ok = h.Get("X-Id")
	assert.True(t, ok)
	assert.Equal(t, "2", v, "lexically smallest key among case variants")

	_, ok = h.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"Content-Type", "X-ID", "x-id"}, h.Names())
}

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		code                                    int
		success, redirect, clientErr, serverErr bool
	}{
		{200, true, false, false, false},
		{299, true, false, false, false},
		{301, false, true, false, false},
		{404, false, false, true, false},
		{503, false, false, false, true},
	}
	for _, tt := range tests {
		r := &Response{StatusCode: tt.code}
		assert.Equal(t, tt.success, r.IsSuccess(), tt.code)
		assert.Equal(t, tt.redirect, r.IsRedirect(), tt.code)
		assert.Equal(t, tt.clientErr, r.IsClientError(), tt.code)
		assert.Equal(t, tt.serverErr, r.IsServerError(), tt.code)
		assert.Equal(t, fmt.Sprint(tt.code), r.StatusString())
	}
}

func TestIsBinaryContentType(t *testing.T) {
	assert.False(t, isBinaryContentType("application/json; charset=utf-8"))
	assert.False(t, isBinaryContentType("application/problem+json"))
	assert.False(t, isBinaryContentType(""))
	assert.True(t, isBinaryContentType("image/png"))
	assert.True(t, isBinaryContentType("application/octet-stream"))
}

func TestDecodeResponse(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"statusCode":200,"body":"{\"ok\":true}","timingMs":12}`))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, resp.Body)
	assert.Equal(t, int64(12), resp.TimingMs)
	assert.NotNil(t, resp.Headers)

	_, err = DecodeResponse([]byte(`{"statusCode":`))
	assert.ErrorContains(t, err, "decoding response")
}

func TestReadResponseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"statusCode":404,"headers":{"X-Id":"9"},"body":""}`), 0o644))

	resp, err := ReadResponseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "9", resp.Header("x-id"))

	_, err = ReadResponseFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "reading response file")
}
