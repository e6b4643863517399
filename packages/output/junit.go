package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/core/runner"
)

// JUnitTestSuites is the root element. Each suite file becomes one
// testsuite and each request one testcase.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name       string          `xml:"name,attr"`
	File       string          `xml:"file,attr,omitempty"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitProblem `xml:"failure,omitempty"`
	Error     *JUnitProblem `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitProblem is the body of a failure or error element.
type JUnitProblem struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter collects results and writes JUnit XML on Flush.
type JUnitFormatter struct {
	writer io.Writer
	suites []JUnitTestSuite
	now    func() time.Time
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{writer: os.Stdout, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

func (f *JUnitFormatter) FormatResult(result *runner.RunResult) {
	name := suiteName(result)
	ts := JUnitTestSuite{
		Name:      name,
		File:      result.File,
		Tests:     len(result.Results),
		Skipped:   result.Skipped,
		Time:      result.Duration.Seconds(),
		Timestamp: f.now().Format(time.RFC3339),
		TestCases: make([]JUnitTestCase, 0, len(result.Results)),
	}
	if result.Engine != "" {
		ts.Properties = append(ts.Properties, JUnitProperty{Name: "engine", Value: result.Engine})
	}

	for _, r := range result.Results {
		tc := junitCase(name, r)
		if tc.Error != nil {
			ts.Errors++
		}
		ts.TestCases = append(ts.TestCases, tc)
	}
	// Requests that errored before a response are reported as errors, not
	// failures.
	ts.Failures = result.Failed - ts.Errors

	f.suites = append(f.suites, ts)
}

func junitCase(class string, r *runner.RequestResult) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      r.Name,
		ClassName: class,
		Time:      r.Duration.Seconds(),
	}

	switch {
	case r.Skipped:
		tc.Skipped = &JUnitSkipped{Message: r.SkipReason}
	case r.Error != nil:
		tc.Error = &JUnitProblem{Message: r.Error.Error(), Type: "RequestError"}
	case !r.Passed:
		message := "Request failed"
		if r.Summary.Failed > 0 {
			message = fmt.Sprintf("%d of %d assertions failed", r.Summary.Failed, r.Summary.Total)
		}
		tc.Failure = &JUnitProblem{
			Message: message,
			Type:    "AssertionError",
			Content: strings.Join(failureLines(r), "\n"),
		}
	}

	if len(r.Captures) > 0 {
		var sb strings.Builder
		for _, c := range r.Captures {
			fmt.Fprintf(&sb, "%s = %s (%s)\n", c.Name, c.Value, c.Source)
		}
		tc.SystemOut = sb.String()
	}
	return tc
}

// FormatError is a no-op; request errors are reported on their testcase.
func (f *JUnitFormatter) FormatError(err error) {}

// FormatHeader is a no-op for XML output.
func (f *JUnitFormatter) FormatHeader(version string) {}

// Flush writes the accumulated JUnit XML output
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	root := JUnitTestSuites{
		Name:       "volt",
		Time:       totalDuration.Seconds(),
		Timestamp:  f.now().Format(time.RFC3339),
		TestSuites: f.suites,
	}
	for _, ts := range f.suites {
		root.Tests += ts.Tests
		root.Failures += ts.Failures
		root.Errors += ts.Errors
		root.Skipped += ts.Skipped
	}

	if _, err := io.WriteString(f.writer, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(root); err != nil {
		return fmt.Errorf("encoding JUnit report: %w", err)
	}
	_, err := io.WriteString(f.writer, "\n")
	return err
}
