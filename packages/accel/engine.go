package accel

import (
	"github.com/abdul-hamid-achik/volt/packages/assertions"
	"github.com/abdul-hamid-achik/volt/packages/capture"
	"github.com/abdul-hamid-achik/volt/packages/core/env"
	"github.com/abdul-hamid-achik/volt/packages/http"
	"github.com/abdul-hamid-achik/volt/packages/jsonpath"
	"github.com/abdul-hamid-achik/volt/packages/jsonvalue"
)

// Engine is one implementation tier of the evaluation core. All tiers must
// return identical results for identical inputs.
type Engine interface {
	Name() string

	Evaluate(a assertions.Assertion, resp *http.Response) assertions.Result
	EvaluateBatch(batch []assertions.Assertion, resp *http.Response) []assertions.Result

	Substitute(text string, vars map[string]string) string
	SubstituteBatch(texts []string, vars map[string]string) []string
	SubstituteHeaders(headers map[string]string, vars map[string]string) map[string]string
	FindVariables(text string) []string
	HasVariables(text string) bool

	Extract(cfg capture.Config, resp *http.Response) (string, bool)
	// ExtractBatch returns the serialized value of every path that resolves
	// against body. An invalid body yields an empty map.
	ExtractBatch(body string, paths []string) map[string]string
}

type referenceEngine struct{}

// Reference returns the reference tier. It is always available.
func Reference() Engine {
	return referenceEngine{}
}

func (referenceEngine) Name() string { return "reference" }

func (referenceEngine) Evaluate(a assertions.Assertion, resp *http.Response) assertions.Result {
	return assertions.Evaluate(a, resp)
}

func (referenceEngine) EvaluateBatch(batch []assertions.Assertion, resp *http.Response) []assertions.Result {
	return assertions.EvaluateBatch(batch, resp)
}

func (referenceEngine) Substitute(text string, vars map[string]string) string {
	return env.Substitute(text, vars)
}

func (referenceEngine) SubstituteBatch(texts []string, vars map[string]string) []string {
	return env.SubstituteBatch(texts, vars)
}

func (referenceEngine) SubstituteHeaders(headers map[string]string, vars map[string]string) map[string]string {
	return env.SubstituteHeaders(headers, vars)
}

func (referenceEngine) FindVariables(text string) []string {
	return env.FindVariables(text)
}

func (referenceEngine) HasVariables(text string) bool {
	return env.HasVariables(text)
}

func (referenceEngine) Extract(cfg capture.Config, resp *http.Response) (string, bool) {
	return capture.Extract(cfg, resp)
}

func (referenceEngine) ExtractBatch(body string, paths []string) map[string]string {
	out := make(map[string]string)
	for _, path := range paths {
		doc, err := jsonvalue.Parse(body)
		if err != nil {
			return map[string]string{}
		}
		if l := jsonpath.Resolve(doc, path); l.Found {
			out[path] = l.Serialized()
		}
	}
	return out
}
