package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/core/runner"
	"gopkg.in/yaml.v3"
)

// TAPFormatter writes TAP version 13. Every request is one test point; failed
// points carry a YAML diagnostic block.
type TAPFormatter struct {
	writer io.Writer
	points []tapPoint
}

type tapPoint struct {
	ok        bool
	name      string
	directive string
	diag      *tapDiagnostic
}

// tapDiagnostic is the YAML block following a failed test point.
type tapDiagnostic struct {
	Message  string   `yaml:"message,omitempty"`
	Severity string   `yaml:"severity"`
	Suite    string   `yaml:"suite,omitempty"`
	Engine   string   `yaml:"engine,omitempty"`
	Status   int      `yaml:"status,omitempty"`
	Attempts int      `yaml:"attempts,omitempty"`
	Failures []string `yaml:"failures,omitempty"`
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		f.points = append(f.points, newTAPPoint(result, r))
	}
}

func newTAPPoint(result *runner.RunResult, r *runner.RequestResult) tapPoint {
	p := tapPoint{ok: r.Passed || r.Skipped, name: r.Name}
	if r.Skipped {
		p.directive = "SKIP"
		if r.SkipReason != "" {
			p.directive += " " + r.SkipReason
		}
		return p
	}
	if r.Passed {
		return p
	}

	diag := &tapDiagnostic{
		Severity: "fail",
		Suite:    suiteName(result),
		Engine:   result.Engine,
		Attempts: r.Attempts,
	}
	if r.Response != nil {
		diag.Status = r.Response.StatusCode
	}
	if r.Error != nil {
		diag.Severity = "error"
		diag.Message = r.Error.Error()
	} else {
		diag.Failures = failureLines(r)
		if r.Summary.Failed > 0 {
			diag.Message = fmt.Sprintf("%d of %d assertions failed", r.Summary.Failed, r.Summary.Total)
		}
	}
	p.diag = diag
	return p
}

// FormatError is a no-op; load errors have no test point.
func (f *TAPFormatter) FormatError(err error) {}

// FormatHeader is a no-op; the version line is written by Flush.
func (f *TAPFormatter) FormatHeader(version string) {}

// Flush writes the accumulated TAP output
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "TAP version 13\n1..%d\n", len(f.points))

	for i, p := range f.points {
		status := "ok"
		if !p.ok {
			status = "not ok"
		}
		fmt.Fprintf(&buf, "%s %d - %s", status, i+1, p.name)
		if p.directive != "" {
			fmt.Fprintf(&buf, " # %s", p.directive)
		}
		buf.WriteByte('\n')

		if p.diag != nil {
			if err := writeDiagnostic(&buf, p.diag); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(&buf, "# time %.3fs\n", totalDuration.Seconds())

	_, err := f.writer.Write(buf.Bytes())
	return err
}

// writeDiagnostic writes d as a YAML block indented under its test point.
func writeDiagnostic(w *bytes.Buffer, d *tapDiagnostic) error {
	var doc bytes.Buffer
	enc := yaml.NewEncoder(&doc)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding TAP diagnostic: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	w.WriteString("  ---\n")
	for _, line := range strings.Split(strings.TrimRight(doc.String(), "\n"), "\n") {
		w.WriteString("  " + line + "\n")
	}
	w.WriteString("  ...\n")
	return nil
}
