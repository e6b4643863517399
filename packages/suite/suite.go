package suite

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/assertions"
	"github.com/abdul-hamid-achik/volt/packages/capture"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSuite is wrapped by every error describing a malformed suite.
var ErrInvalidSuite = errors.New("invalid suite")

//go:embed schema.json
var schemaJSON string

// Suite is an ordered list of requests sharing a variable map.
type Suite struct {
	Name      string            `yaml:"name" json:"name"`
	Variables map[string]string `yaml:"variables" json:"variables,omitempty"`
	Requests  []Request         `yaml:"requests" json:"requests"`

	// Path is the file the suite was loaded from.
	Path string `yaml:"-" json:"-"`
}

// Request is one step of a suite: either a live request (URL set) or a
// recorded response file (Response set).
type Request struct {
	Name         string            `yaml:"name" json:"name"`
	Method       string            `yaml:"method" json:"method,omitempty"`
	URL          string            `yaml:"url" json:"url,omitempty"`
	Headers      map[string]string `yaml:"headers" json:"headers,omitempty"`
	Body         string            `yaml:"body" json:"body,omitempty"`
	Timeout      string            `yaml:"timeout" json:"timeout,omitempty"`
	Response     string            `yaml:"response" json:"response,omitempty"`
	Tags         []string          `yaml:"tags" json:"tags,omitempty"`
	Skip         string            `yaml:"skip" json:"skip,omitempty"`
	Retry        int               `yaml:"retry" json:"retry,omitempty"`
	RetryDelayMs int               `yaml:"retryDelayMs" json:"retryDelayMs,omitempty"`
	Assertions   []Assertion       `yaml:"assertions" json:"assertions,omitempty"`
	Extract      []capture.Config  `yaml:"extract" json:"extract,omitempty"`
}

// Assertion is an assertion as written in a suite file. Enabled defaults to
// true when omitted.
type Assertion struct {
	ID       string `yaml:"id" json:"id,omitempty"`
	Type     string `yaml:"type" json:"type"`
	Property string `yaml:"property" json:"property,omitempty"`
	Operator string `yaml:"operator" json:"operator"`
	Expected string `yaml:"expected" json:"expected,omitempty"`
	Enabled  *bool  `yaml:"enabled" json:"enabled,omitempty"`
}

// Assertion returns the evaluator form of a.
func (a Assertion) Assertion() assertions.Assertion {
	enabled := true
	if a.Enabled != nil {
		enabled = *a.Enabled
	}
	return assertions.Assertion{
		ID:       a.ID,
		Type:     assertions.Type(a.Type),
		Property: a.Property,
		Operator: assertions.Operator(a.Operator),
		Expected: a.Expected,
		Enabled:  enabled,
	}
}

// AssertionList returns the evaluator form of every assertion of r, in order.
func (r Request) AssertionList() []assertions.Assertion {
	out := make([]assertions.Assertion, len(r.Assertions))
	for i, a := range r.Assertions {
		out[i] = a.Assertion()
	}
	return out
}

// TimeoutDuration returns the parsed timeout, zero when unset.
func (r Request) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(r.Timeout)
	return d
}

// DisplayName returns the request name or a positional fallback.
func (r Request) DisplayName(index int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("request %d", index+1)
}

// ValidationError lists every problem found in a suite.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s:\n  - %s", ErrInvalidSuite, e.Path, strings.Join(e.Problems, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSuite
}

// Load reads, validates and decodes the YAML or JSON suite at path.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite: %w", err)
	}
	s, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Parse validates and decodes a suite document. name is used in errors and
// as the base for relative response paths.
func Parse(data []byte, name string) (*Suite, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Path: name, Problems: []string{err.Error()}}
	}

	problems, err := validateSchema(doc)
	if err != nil {
		return nil, &ValidationError{Path: name, Problems: []string{err.Error()}}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Path: name, Problems: problems}
	}

	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &ValidationError{Path: name, Problems: []string{err.Error()}}
	}
	s.Path = name

	if problems := s.check(); len(problems) > 0 {
		return nil, &ValidationError{Path: name, Problems: problems}
	}
	s.assignIDs()
	return &s, nil
}

// check reports what the schema cannot express: operators outside their
// type's set and unparsable timeouts.
func (s *Suite) check() []string {
	var problems []string
	for i, req := range s.Requests {
		name := req.DisplayName(i)
		if req.Timeout != "" {
			if d, err := time.ParseDuration(req.Timeout); err != nil || d < 0 {
				problems = append(problems, fmt.Sprintf("%s: invalid timeout %q", name, req.Timeout))
			}
		}
		for j, a := range req.Assertions {
			if err := assertions.Validate(a.Assertion()); err != nil {
				problems = append(problems, fmt.Sprintf("%s: assertion %d: %s", name, j+1, err))
			}
		}
	}
	return problems
}

func (s *Suite) assignIDs() {
	for i := range s.Requests {
		for j := range s.Requests[i].Assertions {
			if s.Requests[i].Assertions[j].ID == "" {
				s.Requests[i].Assertions[j].ID = uuid.NewString()
			}
		}
	}
}

// ResolvePath resolves a path written in the suite relative to the suite file.
func (s *Suite) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || s.Path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(s.Path), p)
}
