package bench

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
)

// Reporter prints benchmark reports
type Reporter struct {
	writer  io.Writer
	noColor bool

	green *color.Color
	bold  *color.Color
	dim   *color.Color
}

// ReporterOption configures the reporter
type ReporterOption func(*Reporter)

// WithWriter sets the output writer
func WithWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

// WithNoColor disables colored output
func WithNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		r.noColor = noColor
	}
}

func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{writer: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}

	r.green = color.New(color.FgGreen)
	r.bold = color.New(color.Bold)
	r.dim = color.New(color.Faint)
	if r.noColor {
		r.green.DisableColor()
		r.bold.DisableColor()
		r.dim.DisableColor()
	}
	return r
}

// Summary prints one latency table per engine, then the speedup of every
// other engine over the first one.
func (r *Reporter) Summary(report *Report) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintf(r.writer, "TIER BENCHMARK (%d rounds)\n", report.Rounds)
	fmt.Fprintln(r.writer, strings.Repeat("─", 64))

	for _, e := range report.Engines {
		r.bold.Fprintf(r.writer, "%s", e.Engine)
		r.dim.Fprintf(r.writer, "  (%s)\n", formatLatency(e.Duration))
		fmt.Fprintf(r.writer, "  %-18s %8s %9s %9s %9s %9s\n", "op", "count", "p50", "p95", "p99", "mean")
		for _, s := range e.Ops {
			fmt.Fprintf(r.writer, "  %-18s %8d %9s %9s %9s %9s\n", s.Op, s.Count,
				formatLatency(s.P50), formatLatency(s.P95), formatLatency(s.P99), formatLatency(s.Mean))
		}
		fmt.Fprintln(r.writer)
	}

	if len(report.Engines) < 2 {
		return
	}
	base := report.Engines[0]
	for _, e := range report.Engines[1:] {
		r.bold.Fprintf(r.writer, "SPEEDUP %s vs %s\n", e.Engine, base.Engine)
		for _, s := range e.Ops {
			x := report.Speedup(base.Engine, e.Engine, s.Op)
			line := fmt.Sprintf("  %-18s %.2fx\n", s.Op, x)
			if x > 1 {
				r.green.Fprint(r.writer, line)
			} else {
				fmt.Fprint(r.writer, line)
			}
		}
		fmt.Fprintln(r.writer)
	}
}

// JSONSummary outputs the report as JSON
func (r *Reporter) JSONSummary(report *Report) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// formatLatency formats latency for display
func formatLatency(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
