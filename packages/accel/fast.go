package accel

import (
	"regexp"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/abdul-hamid-achik/volt/packages/assertions"
	"github.com/abdul-hamid-achik/volt/packages/capture"
	"github.com/abdul-hamid-achik/volt/packages/http"
	"github.com/abdul-hamid-achik/volt/packages/jsonpath"
	"github.com/abdul-hamid-achik/volt/packages/jsonvalue"
)

const regexCacheSize = 256

// Fast is the accelerated tier. A batch call parses the response body at
// most once and shares the parsed document across every JSON lookup of that
// call; compiled patterns are cached across calls.
type Fast struct {
	mu      sync.Mutex
	regexps map[string]compiledRegexp
	parses  atomic.Int64
}

type compiledRegexp struct {
	re  *regexp.Regexp
	err error
}

func NewFast() *Fast {
	return &Fast{regexps: make(map[string]compiledRegexp)}
}

func (f *Fast) Name() string { return "accelerated" }

// Parses returns how many times a response body has been parsed.
func (f *Fast) Parses() int64 {
	return f.parses.Load()
}

func (f *Fast) compile(pattern string) (*regexp.Regexp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.regexps[pattern]; ok {
		return c.re, c.err
	}
	if len(f.regexps) >= regexCacheSize {
		f.regexps = make(map[string]compiledRegexp)
	}
	re, err := regexp.Compile(pattern)
	f.regexps[pattern] = compiledRegexp{re: re, err: err}
	return re, err
}

func (f *Fast) Evaluate(a assertions.Assertion, resp *http.Response) assertions.Result {
	return assertions.NewEvaluator(f.newProbe(resp)).Evaluate(a)
}

func (f *Fast) EvaluateBatch(batch []assertions.Assertion, resp *http.Response) []assertions.Result {
	return assertions.NewEvaluator(f.newProbe(resp)).EvaluateAll(batch)
}

func (f *Fast) Substitute(text string, vars map[string]string) string {
	return substitute(text, vars)
}

func (f *Fast) SubstituteBatch(texts []string, vars map[string]string) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = substitute(text, vars)
	}
	return out
}

func (f *Fast) SubstituteHeaders(headers map[string]string, vars map[string]string) map[string]string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string, len(headers))
	for _, name := range names {
		out[substitute(name, vars)] = substitute(headers[name], vars)
	}
	return out
}

func (f *Fast) FindVariables(text string) []string {
	return findVariables(text)
}

func (f *Fast) HasVariables(text string) bool {
	return hasVariables(text)
}

func (f *Fast) Extract(cfg capture.Config, resp *http.Response) (string, bool) {
	return capture.NewExtractor(f.newProbe(resp)).Extract(cfg)
}

func (f *Fast) ExtractBatch(body string, paths []string) map[string]string {
	p := f.newProbe(&http.Response{Body: body})
	out := make(map[string]string)
	for _, path := range paths {
		l, err := p.JSON(path)
		if err != nil {
			return map[string]string{}
		}
		if l.Found {
			out[path] = l.Serialized()
		}
	}
	return out
}

// batchProbe parses the body on first use and keeps the result for the
// remaining lookups of one call.
type batchProbe struct {
	fast   *Fast
	resp   *http.Response
	parsed bool
	doc    jsonvalue.Value
	err    error
}

func (f *Fast) newProbe(resp *http.Response) *batchProbe {
	return &batchProbe{fast: f, resp: resp}
}

func (p *batchProbe) Response() *http.Response {
	return p.resp
}

func (p *batchProbe) JSON(path string) (jsonpath.Lookup, error) {
	if !p.parsed {
		p.parsed = true
		p.fast.parses.Add(1)
		p.doc, p.err = jsonvalue.Parse(p.resp.Body)
	}
	if p.err != nil {
		return jsonpath.NotFound(), p.err
	}
	return jsonpath.Resolve(p.doc, path), nil
}

func (p *batchProbe) Regexp(pattern string) (*regexp.Regexp, error) {
	return p.fast.compile(pattern)
}
