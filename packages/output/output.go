package output

import (
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/core/runner"
)

// Formatter renders run results
type Formatter interface {
	FormatHeader(version string)
	FormatResult(result *runner.RunResult)
	FormatError(err error)
}

// Flushable is implemented by formatters that accumulate results and write
// them once at the end.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the accepted format names.
var Formats = []string{"console", "json", "junit", "tap"}

// New returns the formatter for format writing to w.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch format {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown output format %q (expected console, json, junit or tap)", format)
}

// failureLines returns one line per failed assertion and capture error.
func failureLines(r *runner.RequestResult) []string {
	var lines []string
	for _, a := range r.Assertions {
		if !a.Passed {
			lines = append(lines, a.Message)
		}
	}
	lines = append(lines, r.CaptureErrors...)
	return lines
}

func suiteName(result *runner.RunResult) string {
	if result.Name != "" {
		return result.Name
	}
	return result.File
}
