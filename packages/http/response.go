package http

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Response is a completed HTTP exchange as seen by the assertion engine.
// It is never mutated after construction.
type Response struct {
	StatusCode    int     `json:"statusCode" yaml:"statusCode"`
	StatusText    string  `json:"statusText,omitempty" yaml:"statusText,omitempty"`
	Headers       Headers `json:"headers" yaml:"headers"`
	Body          string  `json:"body" yaml:"body"`
	TimingMs      int64   `json:"timingMs" yaml:"timingMs"`
	ContentLength int64   `json:"contentLength,omitempty" yaml:"contentLength,omitempty"`
}

func (r *Response) Header(key string) string {
	return r.Headers.Value(key)
}

func (r *Response) StatusString() string {
	return strconv.Itoa(r.StatusCode)
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

// ReadResponseFile loads a recorded response saved as JSON.
func ReadResponseFile(path string) (*Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading response file: %w", err)
	}
	return DecodeResponse(data)
}

// DecodeResponse decodes a recorded response. A missing headers object is
// treated as empty.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if resp.Headers == nil {
		resp.Headers = Headers{}
	}
	return &resp, nil
}
