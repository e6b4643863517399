package assertions

import (
	"github.com/abdul-hamid-achik/volt/packages/http"
	"github.com/abdul-hamid-achik/volt/packages/probe"
)

// Evaluator evaluates assertions against the response behind a probe.
type Evaluator struct {
	probe probe.Probe
}

func NewEvaluator(p probe.Probe) *Evaluator {
	return &Evaluator{probe: p}
}

// Evaluate never fails: every problem with the assertion or the response is
// reported as a failed Result.
func (e *Evaluator) Evaluate(a Assertion) Result {
	result := Result{AssertionID: a.ID}
	if !a.Enabled {
		result.Passed = true
		result.Message = "Skipped (disabled)"
		return result
	}

	check, err := Compile(a)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	result.Passed, result.Actual, result.Message = check.evaluate(e.probe)
	return result
}

// EvaluateAll evaluates assertions in order.
func (e *Evaluator) EvaluateAll(assertions []Assertion) []Result {
	results := make([]Result, 0, len(assertions))
	for _, a := range assertions {
		results = append(results, e.Evaluate(a))
	}
	return results
}

// Evaluate evaluates a against resp with the reference probe.
func Evaluate(a Assertion, resp *http.Response) Result {
	return NewEvaluator(probe.New(resp)).Evaluate(a)
}

// EvaluateBatch evaluates assertions against resp, preserving their order.
func EvaluateBatch(assertions []Assertion, resp *http.Response) []Result {
	return NewEvaluator(probe.New(resp)).EvaluateAll(assertions)
}
