package history

import (
	"github.com/abdul-hamid-achik/volt/packages/core/runner"
)

// FromResult converts a runner result into a Run ready to save. Skipped
// requests are not recorded.
func FromResult(res *runner.RunResult) Run {
	run := Run{
		Suite:      res.Name,
		File:       res.File,
		Engine:     res.Engine,
		Passed:     res.Passed,
		Failed:     res.Failed,
		Skipped:    res.Skipped,
		DurationMs: res.Duration.Milliseconds(),
	}
	if run.Suite == "" {
		run.Suite = res.File
	}

	for _, r := range res.Results {
		if r.Skipped {
			continue
		}
		e := Entry{
			Name:             r.Name,
			Passed:           r.Passed,
			AssertionsPassed: r.Summary.Passed,
			AssertionsFailed: r.Summary.Failed,
		}
		if r.Request != nil {
			e.Method = r.Request.NormalizedMethod()
			e.URL = r.Request.URL
			e.Headers = r.Request.Headers
			e.Body = r.Request.Body
		}
		if r.Response != nil {
			e.StatusCode = r.Response.StatusCode
			e.TimingMs = r.Response.TimingMs
		}
		if r.Error != nil {
			e.Error = r.Error.Error()
		}
		run.Entries = append(run.Entries, e)
	}
	return run
}
