package http

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"maps"
	"net/http"
	neturl "net/url"
	"slices"
	"strings"
	"time"
)

const (
	// DefaultTimeout applies when neither the client nor the request sets one.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10

	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// UserAgent is sent when a request does not set its own User-Agent.
var UserAgent = "Volt-API/dev"

// Client sends Requests and returns immutable Response snapshots.
type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	validateSSL    bool
	proxyURL       string
	defaultHeaders map[string]string
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: true,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
		defaultHeaders: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = &http.Client{
		Transport:     c.transport(),
		CheckRedirect: c.checkRedirect,
	}
	return c
}

func (c *Client) transport() *http.Transport {
	t := &http.Transport{
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}
	if !c.validateSSL {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	// An unparsable proxy URL is ignored and requests go direct.
	if c.proxyURL != "" {
		if u, err := neturl.Parse(c.proxyURL); err == nil {
			t.Proxy = http.ProxyURL(u)
		}
	}
	return t
}

func (c *Client) checkRedirect(_ *http.Request, via []*http.Request) error {
	if !c.followRedirect || len(via) >= c.maxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

// WithDefaultHeaders sets headers sent with every request. A request header
// with the same name replaces the default.
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// Do sends req and returns the response snapshot. The request timeout, when
// set, overrides the client timeout and is capped at MaxTimeout.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if timeout := c.effectiveTimeout(req); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := readBody(httpResp.Body)
	if err != nil {
		return nil, err
	}
	return snapshot(httpResp, body, time.Since(start)), nil
}

func (c *Client) effectiveTimeout(req *Request) time.Duration {
	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	return min(timeout, MaxTimeout)
}

// build converts req to a net/http request. The Host header is never
// forwarded; the URL decides the host.
func (c *Client) build(ctx context.Context, req *Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.NormalizedMethod(), req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for _, k := range slices.Sorted(maps.Keys(c.defaultHeaders)) {
		httpReq.Header.Set(k, c.defaultHeaders[k])
	}
	for _, k := range slices.Sorted(maps.Keys(req.Headers)) {
		if strings.EqualFold(k, "host") {
			continue
		}
		httpReq.Header.Set(k, req.Headers[k])
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", UserAgent)
	}
	return httpReq, nil
}

// snapshot builds the Response seen by assertions. Repeated headers are
// joined with ", " and binary bodies are carried base64 encoded.
func snapshot(httpResp *http.Response, body []byte, elapsed time.Duration) *Response {
	headers := make(Headers, len(httpResp.Header))
	for k, values := range httpResp.Header {
		headers[k] = strings.Join(values, ", ")
	}

	text := string(body)
	if isBinaryContentType(httpResp.Header.Get("Content-Type")) {
		text = base64.StdEncoding.EncodeToString(body)
	}

	return &Response{
		StatusCode:    httpResp.StatusCode,
		StatusText:    httpResp.Status,
		Headers:       headers,
		Body:          text,
		TimingMs:      elapsed.Milliseconds(),
		ContentLength: httpResp.ContentLength,
	}
}

func readBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxResponseBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > MaxResponseBodySize {
		return nil, fmt.Errorf("response too large (>%dMB)", MaxResponseBodySize/(1024*1024))
	}
	return data, nil
}

func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: "GET", URL: url, Headers: headers})
}

var textContentTypes = []string{
	"text/",
	"application/json",
	"application/xml",
	"application/javascript",
	"application/x-www-form-urlencoded",
	"+json",
	"+xml",
}

var binaryContentTypes = []string{
	"image/",
	"audio/",
	"video/",
	"font/",
	"application/octet-stream",
	"application/pdf",
	"application/zip",
	"application/gzip",
}

// isBinaryContentType reports whether a body of this content type is
// carried base64 encoded. Unknown types are treated as text.
func isBinaryContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, t := range textContentTypes {
		if strings.Contains(ct, t) {
			return false
		}
	}
	for _, t := range binaryContentTypes {
		if strings.Contains(ct, t) {
			return true
		}
	}
	return false
}
