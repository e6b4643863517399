package http

import (
	"fmt"
	neturl "net/url"
	"strings"
	"time"
)

// Limits applied to every exchange.
const (
	MaxRequestBodySize  = 10 * 1024 * 1024
	MaxResponseBodySize = 50 * 1024 * 1024
	MaxTimeout          = 5 * time.Minute
)

var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true,
	"DELETE": true, "PATCH": true, "HEAD": true, "OPTIONS": true,
}

type Request struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`
	Timeout time.Duration     `json:"-" yaml:"-"`
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// NormalizedMethod returns the upper-cased method, GET when empty.
func (r *Request) NormalizedMethod() string {
	m := strings.ToUpper(strings.TrimSpace(r.Method))
	if m == "" {
		return "GET"
	}
	return m
}

// Validate checks the URL, method and body size of r.
func (r *Request) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("URL is required")
	}
	if err := ValidateURL(r.URL); err != nil {
		return err
	}
	if !allowedMethods[r.NormalizedMethod()] {
		return fmt.Errorf("invalid HTTP method: %s", r.Method)
	}
	if len(r.Body) > MaxRequestBodySize {
		return fmt.Errorf("request body too large (max %d MB)", MaxRequestBodySize/1024/1024)
	}
	return nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
