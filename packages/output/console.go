package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/volt/packages/core/runner"
	"github.com/fatih/color"
)

const displayLimit = 100

// formatValue truncates long values for display
func formatValue(s string, maxLen int) string {
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return s
}

// palette holds the console colors. Disabling them leaves the global
// color.NoColor untouched.
type palette struct {
	pass, fail, skip, timing, title, muted *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		pass:   color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
		skip:   color.New(color.FgYellow),
		timing: color.New(color.FgCyan),
		title:  color.New(color.Bold),
		muted:  color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.pass, p.fail, p.skip, p.timing, p.title, p.muted} {
			c.DisableColor()
		}
	}
	return p
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
	colors  palette
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	f.colors = newPalette(f.noColor)
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) printf(format string, args ...any) {
	fmt.Fprintf(f.writer, format, args...)
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	c := f.colors
	f.printf("\n%s", c.title.Sprint("Running: "+suiteName(result)))
	if result.Engine != "" {
		f.printf(" %s", c.muted.Sprint("["+result.Engine+"]"))
	}
	f.printf("\n\n")

	for _, r := range result.Results {
		f.writeRequest(r)
	}
	f.writeTotals(result)
}

func (f *ConsoleFormatter) writeRequest(r *runner.RequestResult) {
	c := f.colors
	switch {
	case r.Skipped:
		line := fmt.Sprintf("  %s %s", c.skip.Sprint("-"), r.Name)
		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			line += " (" + r.SkipReason + ")"
		}
		f.printf("%s\n", line)
		return
	case r.Error != nil:
		f.printf("  %s %s %s\n", c.fail.Sprint("x"), r.Name, c.fail.Sprintf("(%v)", r.Error))
		return
	}

	mark := c.pass.Sprint("✓")
	if !r.Passed {
		mark = c.fail.Sprint("✗")
	}
	f.printf("  %s %s %s\n", mark, r.Name, c.timing.Sprintf("(%dms)", r.Duration.Milliseconds()))
	if f.verbose && r.Response != nil {
		f.printf("    Status: %s\n", r.Response.StatusText)
	}

	for _, a := range r.Assertions {
		if a.Passed {
			if f.verbose {
				f.printf("    %s %s\n", c.pass.Sprint("✓"), a.Message)
			}
			continue
		}
		f.printf("    %s %s\n", c.fail.Sprint("→"), a.Message)
		f.printf("      Actual: %s\n", formatValue(a.Actual, displayLimit))
	}
	for _, msg := range r.CaptureErrors {
		f.printf("    %s %s\n", c.fail.Sprint("→"), msg)
	}

	if !f.verbose || len(r.Captures) == 0 {
		return
	}
	f.printf("    Captures:\n")
	for _, v := range r.Captures {
		f.printf("      %s = %s %s\n", v.Name, formatValue(v.Value, displayLimit), c.muted.Sprint("("+v.Source+")"))
	}
}

func (f *ConsoleFormatter) writeTotals(result *runner.RunResult) {
	c := f.colors
	var parts []string
	if result.Passed > 0 {
		parts = append(parts, c.pass.Sprintf("%d passed", result.Passed))
	}
	if result.Failed > 0 {
		parts = append(parts, c.fail.Sprintf("%d failed", result.Failed))
	}
	if result.Skipped > 0 {
		parts = append(parts, c.skip.Sprintf("%d skipped", result.Skipped))
	}
	parts = append(parts, fmt.Sprintf("%d total", result.Passed+result.Failed+result.Skipped))

	f.printf("\nTests: %s\n", strings.Join(parts, ", "))
	f.printf("Time:  %dms\n\n", result.Duration.Milliseconds())
}

func (f *ConsoleFormatter) FormatError(err error) {
	f.printf("%s %v\n", f.colors.fail.Sprint("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	f.printf("%s %s\n", f.colors.title.Sprint("volt"), version)
}
