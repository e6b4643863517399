package runner

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/accel"
	"github.com/abdul-hamid-achik/volt/packages/assertions"
	"github.com/abdul-hamid-achik/volt/packages/capture"
	"github.com/abdul-hamid-achik/volt/packages/core/env"
	"github.com/abdul-hamid-achik/volt/packages/http"
	"github.com/abdul-hamid-achik/volt/packages/suite"
)

const (
	// DefaultRetryDelayMs is the default delay between retries in milliseconds
	DefaultRetryDelayMs = 1000
)

type Runner struct {
	client   *http.Client
	engine   accel.Engine
	resolver *env.Resolver
	chain    *capture.Store
	config   *Config
	now      func() time.Time
}

type Config struct {
	// Variables are applied over the suite's own variables, typically the
	// contents of an environment file.
	Variables      map[string]string
	Verbose        bool
	Timeout        time.Duration
	FollowRedirect bool
	ValidateSSL    bool
	Proxy          string
	MaxRedirects   int
	// DefaultHeaders are sent with every live request unless the request
	// sets the same header.
	DefaultHeaders map[string]string
	Bail           bool
	NameFilter     string
	TagsFilter     []string
	// Engine evaluates, substitutes and extracts. Defaults to the reference
	// tier.
	Engine accel.Engine
	// Warn receives resolver warnings such as unresolved variables.
	Warn env.WarnFunc
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{FollowRedirect: true, ValidateSSL: true}
	}

	clientOpts := []http.ClientOption{
		http.WithFollowRedirects(cfg.FollowRedirect),
		http.WithValidateSSL(cfg.ValidateSSL),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(cfg.Timeout))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}
	if cfg.MaxRedirects > 0 {
		clientOpts = append(clientOpts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if len(cfg.DefaultHeaders) > 0 {
		clientOpts = append(clientOpts, http.WithDefaultHeaders(cfg.DefaultHeaders))
	}

	engine := cfg.Engine
	if engine == nil {
		engine = accel.Reference()
	}

	resolver := env.NewResolver()
	if cfg.Warn != nil {
		resolver.SetWarnFunc(cfg.Warn)
	}

	return &Runner{
		client:   http.NewClient(clientOpts...),
		engine:   engine,
		resolver: resolver,
		chain:    capture.NewStore(),
		config:   cfg,
		now:      time.Now,
	}
}

// Chain returns the chain variable store shared by every suite this runner
// executes.
func (r *Runner) Chain() *capture.Store {
	return r.chain
}

type RunResult struct {
	File     string
	Name     string
	Engine   string
	Results  []*RequestResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

// Success reports whether no request failed.
func (r *RunResult) Success() bool {
	return r.Failed == 0
}

type RequestResult struct {
	Name       string
	Passed     bool
	Skipped    bool
	SkipReason string
	Attempts   int
	Duration   time.Duration
	// Request is nil when the response came from a recorded file.
	Request    *http.Request
	Response   *http.Response
	Assertions []assertions.Result
	Summary    assertions.Summary
	Captures   []capture.ChainVariable
	// CaptureErrors holds one "<variable>: could not extract value" entry per
	// failed extraction.
	CaptureErrors []string
	Error         error
}

func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	s, err := suite.Load(path)
	if err != nil {
		return nil, err
	}
	return r.RunSuite(ctx, s)
}

// RunSuite runs the requests of s in order. A cancelled context stops the run
// before the next request; the partial result is returned with ctx.Err().
func (r *Runner) RunSuite(ctx context.Context, s *suite.Suite) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		File:   s.Path,
		Name:   s.Name,
		Engine: r.engine.Name(),
	}

	for i, req := range s.Requests {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		name := req.DisplayName(i)
		if reason, skip := r.skipReason(req); skip {
			result.Results = append(result.Results, &RequestResult{
				Name:       name,
				Skipped:    true,
				SkipReason: reason,
			})
			result.Skipped++
			continue
		}

		reqResult := r.runWithRetry(ctx, s, req, name)
		result.Results = append(result.Results, reqResult)

		if reqResult.Passed {
			result.Passed++
			continue
		}
		result.Failed++
		if r.config.Bail {
			break
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) skipReason(req suite.Request) (string, bool) {
	if req.Skip != "" {
		return req.Skip, true
	}
	if r.config.NameFilter != "" {
		if req.Name == "" || !matchesPattern(req.Name, r.config.NameFilter) {
			return "filtered out", true
		}
	}
	if len(r.config.TagsFilter) > 0 && !hasAnyTag(req.Tags, r.config.TagsFilter) {
		return "filtered out", true
	}
	return "", false
}

func (r *Runner) runWithRetry(ctx context.Context, s *suite.Suite, req suite.Request, name string) *RequestResult {
	retryDelay := time.Duration(DefaultRetryDelayMs) * time.Millisecond
	if req.RetryDelayMs > 0 {
		retryDelay = time.Duration(req.RetryDelayMs) * time.Millisecond
	}

	var result *RequestResult
	for attempt := 0; attempt <= req.Retry; attempt++ {
		result = r.execute(ctx, s, req, name)
		result.Attempts = attempt + 1
		if result.Passed || attempt == req.Retry {
			return result
		}

		select {
		case <-ctx.Done():
			return result
		case <-time.After(retryDelay):
		}
	}
	return result
}

// variables merges suite variables, configured variables and chain variables.
// Later sources win.
func (r *Runner) variables(s *suite.Suite) map[string]string {
	return env.MergeVariables(s.Variables, r.config.Variables, r.chain.Vars())
}

// resolve substitutes texts through the engine and then resolves any
// {{$NAME}} tokens against the process environment.
func (r *Runner) resolve(texts []string, vars map[string]string) []string {
	out := r.engine.SubstituteBatch(texts, vars)
	for i, text := range out {
		if r.engine.HasVariables(text) {
			out[i] = r.resolver.Resolve(text)
		}
	}
	return out
}

func (r *Runner) buildRequest(req suite.Request, vars map[string]string) *http.Request {
	resolved := r.resolve([]string{req.URL, req.Body}, vars)

	// Names resolved by the second stage can collide; walking them sorted
	// keeps the SubstituteHeaders rule that the last sorted name wins.
	substituted := r.engine.SubstituteHeaders(req.Headers, vars)
	headers := make(map[string]string, len(substituted))
	for _, k := range slices.Sorted(maps.Keys(substituted)) {
		v := substituted[k]
		if r.engine.HasVariables(k) || r.engine.HasVariables(v) {
			k, v = r.resolver.Resolve(k), r.resolver.Resolve(v)
		}
		headers[k] = v
	}

	httpReq := http.NewRequest(req.Method, resolved[0])
	httpReq.Body = resolved[1]
	httpReq.Timeout = req.TimeoutDuration()
	for k, v := range headers {
		httpReq.SetHeader(k, v)
	}
	return httpReq
}

func (r *Runner) execute(ctx context.Context, s *suite.Suite, req suite.Request, name string) *RequestResult {
	result := &RequestResult{Name: name}
	start := time.Now()

	var resp *http.Response
	var err error
	if req.Response != "" {
		resp, err = http.ReadResponseFile(s.ResolvePath(req.Response))
	} else {
		httpReq := r.buildRequest(req, r.variables(s))
		result.Request = httpReq
		resp, err = r.client.Do(ctx, httpReq)
	}
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err
		return result
	}
	result.Response = resp

	if len(req.Assertions) > 0 {
		result.Assertions = r.engine.EvaluateBatch(req.AssertionList(), resp)
		result.Summary = assertions.Summarize(result.Assertions)
		result.Passed = result.Summary.AllPassed()
	} else {
		result.Passed = resp.IsSuccess()
	}

	for _, cfg := range req.Extract {
		value, ok := r.engine.Extract(cfg, resp)
		if !ok {
			result.CaptureErrors = append(result.CaptureErrors,
				fmt.Sprintf("%s: %s", cfg.VariableName, capture.ErrCouldNotExtract))
			continue
		}
		v := capture.NewChainVariable(cfg, value, r.now())
		r.chain.Upsert(v)
		result.Captures = append(result.Captures, v)
	}
	if len(result.CaptureErrors) > 0 {
		result.Passed = false
	}

	return result
}

// Errors joins the request error and capture errors of every failed request.
func (r *RunResult) Errors() error {
	var errs []error
	for _, res := range r.Results {
		if res.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Error))
		}
		if len(res.CaptureErrors) > 0 {
			errs = append(errs, fmt.Errorf("%s: %s", res.Name, strings.Join(res.CaptureErrors, "; ")))
		}
	}
	return errors.Join(errs...)
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if len(pattern) > 1 && pattern[0] == '*' && pattern[len(pattern)-1] == '*' {
		return strings.Contains(name, pattern[1:len(pattern)-1])
	}

	if pattern[0] == '*' {
		return strings.HasSuffix(name, pattern[1:])
	}

	if pattern[len(pattern)-1] == '*' {
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}

	return name == pattern
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}
