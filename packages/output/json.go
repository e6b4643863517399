package output

import (
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/assertions"
	"github.com/abdul-hamid-achik/volt/packages/capture"
	"github.com/abdul-hamid-achik/volt/packages/core/runner"
	"github.com/goccy/go-json"
)

// JSONOutput is the document written by Flush.
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Suites   []JSONSuite `json:"suites"`
	Tests    []JSONTest  `json:"tests"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

func (s *JSONSummary) count(t JSONTest) {
	s.Total++
	switch {
	case t.Skipped:
		s.Skipped++
	case t.Passed:
		s.Passed++
	default:
		s.Failed++
	}
}

// JSONSuite summarizes one suite file. Its tests are in JSONOutput.Tests with
// a matching Suite field.
type JSONSuite struct {
	Name     string      `json:"name"`
	File     string      `json:"file,omitempty"`
	Engine   string      `json:"engine,omitempty"`
	Summary  JSONSummary `json:"summary"`
	Duration float64     `json:"duration"`
}

// JSONTest is one request of a suite.
type JSONTest struct {
	Name          string                  `json:"name"`
	Suite         string                  `json:"suite"`
	Engine        string                  `json:"engine,omitempty"`
	Passed        bool                    `json:"passed"`
	Skipped       bool                    `json:"skipped,omitempty"`
	SkipReason    string                  `json:"skipReason,omitempty"`
	Attempts      int                     `json:"attempts,omitempty"`
	Duration      float64                 `json:"duration"`
	Error         string                  `json:"error,omitempty"`
	Request       *JSONRequest            `json:"request,omitempty"`
	Response      *JSONResponse           `json:"response,omitempty"`
	Assertions    []assertions.Result     `json:"assertions,omitempty"`
	Summary       *assertions.Summary     `json:"assertionSummary,omitempty"`
	Captures      []capture.ChainVariable `json:"captures,omitempty"`
	CaptureErrors []string                `json:"captureErrors,omitempty"`
}

type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	TimingMs   int64             `json:"timingMs"`
}

// JSONFormatter collects every run and writes a single document on Flush.
type JSONFormatter struct {
	writer io.Writer
	out    JSONOutput
	now    func() time.Time
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		out:    JSONOutput{Suites: []JSONSuite{}, Tests: []JSONTest{}},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	s := JSONSuite{
		Name:     suiteName(result),
		File:     result.File,
		Engine:   result.Engine,
		Duration: float64(result.Duration.Milliseconds()),
	}
	for _, r := range result.Results {
		t := newJSONTest(s.Name, result.Engine, r)
		s.Summary.count(t)
		f.out.Summary.count(t)
		f.out.Tests = append(f.out.Tests, t)
	}
	f.out.Suites = append(f.out.Suites, s)
}

func newJSONTest(suite, engine string, r *runner.RequestResult) JSONTest {
	t := JSONTest{
		Name:          r.Name,
		Suite:         suite,
		Engine:        engine,
		Passed:        r.Passed,
		Skipped:       r.Skipped,
		Attempts:      r.Attempts,
		Duration:      float64(r.Duration.Milliseconds()),
		Assertions:    r.Assertions,
		Captures:      r.Captures,
		CaptureErrors: r.CaptureErrors,
	}
	if r.SkipReason != "filtered out" {
		t.SkipReason = r.SkipReason
	}
	if r.Error != nil {
		t.Error = r.Error.Error()
	}
	if len(r.Assertions) > 0 {
		summary := r.Summary
		t.Summary = &summary
	}
	if req := r.Request; req != nil {
		t.Request = &JSONRequest{Method: req.NormalizedMethod(), URL: req.URL, Headers: req.Headers}
	}
	if resp := r.Response; resp != nil {
		t.Response = &JSONResponse{
			StatusCode: resp.StatusCode,
			Status:     resp.StatusText,
			Headers:    resp.Headers,
			TimingMs:   resp.TimingMs,
		}
	}
	return t
}

// FormatError is a no-op; request errors are part of each test entry.
func (f *JSONFormatter) FormatError(err error) {}

func (f *JSONFormatter) FormatHeader(version string) {}

func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	f.out.Duration = float64(totalDuration.Milliseconds())
	f.out.Time = f.now().Format(time.RFC3339)

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(f.out)
}
