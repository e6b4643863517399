package accel

import (
	"fmt"
	"reflect"

	"github.com/abdul-hamid-achik/volt/packages/assertions"
	"github.com/abdul-hamid-achik/volt/packages/capture"
	"github.com/abdul-hamid-achik/volt/packages/http"
)

// Corpus is a set of inputs run through two engines to compare them.
type Corpus struct {
	Responses   []*http.Response
	Assertions  []assertions.Assertion
	Extractions []capture.Config
	Paths       []string
	Texts       []string
	Headers     map[string]string
	Vars        []map[string]string
}

// SelfCheck compares candidate against reference on DefaultCorpus.
func SelfCheck(reference, candidate Engine) error {
	return Compare(reference, candidate, DefaultCorpus())
}

// Compare runs every operation of both engines over c and returns an error
// describing the first difference.
func Compare(a, b Engine, c Corpus) error {
	for i, resp := range c.Responses {
		if got, want := b.EvaluateBatch(c.Assertions, resp), a.EvaluateBatch(c.Assertions, resp); !reflect.DeepEqual(got, want) {
			return mismatch("EvaluateBatch", i, want, got)
		}
		for _, as := range c.Assertions {
			if got, want := b.Evaluate(as, resp), a.Evaluate(as, resp); got != want {
				return mismatch("Evaluate "+as.ID, i, want, got)
			}
		}
		for _, cfg := range c.Extractions {
			gotV, gotOK := b.Extract(cfg, resp)
			wantV, wantOK := a.Extract(cfg, resp)
			if gotV != wantV || gotOK != wantOK {
				return mismatch("Extract "+cfg.VariableName, i, wantV, gotV)
			}
		}
		if got, want := b.ExtractBatch(resp.Body, c.Paths), a.ExtractBatch(resp.Body, c.Paths); !reflect.DeepEqual(got, want) {
			return mismatch("ExtractBatch", i, want, got)
		}
	}

	for i, vars := range c.Vars {
		if got, want := b.SubstituteBatch(c.Texts, vars), a.SubstituteBatch(c.Texts, vars); !reflect.DeepEqual(got, want) {
			return mismatch("SubstituteBatch", i, want, got)
		}
		if got, want := b.SubstituteHeaders(c.Headers, vars), a.SubstituteHeaders(c.Headers, vars); !reflect.DeepEqual(got, want) {
			return mismatch("SubstituteHeaders", i, want, got)
		}
		for _, text := range c.Texts {
			if got, want := b.Substitute(text, vars), a.Substitute(text, vars); got != want {
				return mismatch("Substitute", i, want, got)
			}
		}
	}

	for i, text := range c.Texts {
		if got, want := b.FindVariables(text), a.FindVariables(text); !reflect.DeepEqual(got, want) {
			return mismatch("FindVariables", i, want, got)
		}
		if got, want := b.HasVariables(text), a.HasVariables(text); got != want {
			return mismatch("HasVariables", i, want, got)
		}
	}
	return nil
}

func mismatch(op string, index int, want, got any) error {
	return fmt.Errorf("self-check failed: %s differs on input %d: want %#v, got %#v", op, index, want, got)
}

// DefaultCorpus covers every assertion type and operator, the failure modes
// of each, and the edge cases of the token grammar.
func DefaultCorpus() Corpus {
	on := func(id string, t assertions.Type, property string, op assertions.Operator, expected string) assertions.Assertion {
		return assertions.Assertion{ID: id, Type: t, Property: property, Operator: op, Expected: expected, Enabled: true}
	}

	return Corpus{
		Responses: []*http.Response{
			{
				StatusCode: 200,
				Headers:    http.Headers{"Content-Type": "application/json", "X-Request-Id": "r-1"},
				Body:       `{"data":{"name":"john","age":30,"tags":["a","b"],"nothing":null,"nested":{"k":[{"v":1.50}]}},"token":"abc123","dup":1,"dup":2}`,
				TimingMs:   42,
			},
			{
				StatusCode: 404,
				Headers:    http.Headers{"content-type": "text/html"},
				Body:       "<html>not found</html>",
				TimingMs:   900,
			},
			{
				StatusCode: 201,
				Headers:    http.Headers{},
				Body:       `[{"id":1},{"id":2}]`,
			},
			{
				StatusCode: 200,
				Headers:    http.Headers{"Content-Type": "application/json"},
				Body:       `{"data":{"html":"<p>a&b</p>"},"tags":["x<y"]}`,
			},
		},
		Assertions: []assertions.Assertion{
			on("s1", assertions.TypeStatus, "", assertions.OpEquals, "200"),
			on("s2", assertions.TypeStatus, "", assertions.OpNotEquals, "200"),
			on("s3", assertions.TypeStatus, "", assertions.OpLessThan, "300"),
			on("s4", assertions.TypeStatus, "", assertions.OpGreaterThan, "abc"),
			on("t1", assertions.TypeResponseTime, "", assertions.OpLessThan, "500"),
			on("t2", assertions.TypeResponseTime, "", assertions.OpGreaterThan, "100"),
			on("b1", assertions.TypeBodyContains, "", assertions.OpContains, "john"),
			on("b2", assertions.TypeBodyContains, "", assertions.OpNotContains, "error"),
			on("b3", assertions.TypeBodyContains, "", assertions.OpMatches, `"age":\s*\d+`),
			on("b4", assertions.TypeBodyContains, "", assertions.OpMatches, `([unclosed`),
			on("j1", assertions.TypeBodyJSON, "data.name", assertions.OpEquals, `"john"`),
			on("j2", assertions.TypeBodyJSON, "data.tags[1]", assertions.OpExists, ""),
			on("j3", assertions.TypeBodyJSON, "data.missing", assertions.OpNotExists, ""),
			on("j4", assertions.TypeBodyJSON, "data.nothing", assertions.OpEquals, "null"),
			on("j5", assertions.TypeBodyJSON, "data.nested.k[0].v", assertions.OpEquals, "1.5"),
			on("j6", assertions.TypeBodyJSON, "data.tags", assertions.OpContains, `"b"`),
			on("j7", assertions.TypeBodyJSON, "dup", assertions.OpNotEquals, "1"),
			on("j8", assertions.TypeBodyJSON, "", assertions.OpExists, ""),
			on("j9", assertions.TypeBodyJSON, "data", assertions.OpContains, "<p>a&b</p>"),
			on("j10", assertions.TypeBodyJSON, "tags", assertions.OpContains, "x<y"),
			on("j11", assertions.TypeBodyJSON, "data", assertions.OpEquals, `{"html":"<p>a&b</p>"}`),
			on("h1", assertions.TypeHeaderExists, "CONTENT-TYPE", assertions.OpExists, ""),
			on("h2", assertions.TypeHeaderExists, "X-Missing", assertions.OpNotExists, ""),
			on("h3", assertions.TypeHeaderEquals, "x-request-id", assertions.OpEquals, "r-1"),
			on("h4", assertions.TypeHeaderEquals, "Content-Type", assertions.OpContains, "json"),
			on("h5", assertions.TypeHeaderEquals, "X-Missing", assertions.OpNotEquals, "x"),
			on("u1", "cookie", "", assertions.OpEquals, "x"),
			on("u2", assertions.TypeHeaderExists, "", assertions.OpMatches, "x"),
			{ID: "d1", Type: assertions.TypeStatus, Operator: assertions.OpEquals, Expected: "999"},
		},
		Extractions: []capture.Config{
			{Type: capture.TypeJSON, Path: "token", VariableName: "token"},
			{Type: capture.TypeJSON, Path: "data.tags", VariableName: "tags"},
			{Type: capture.TypeJSON, Path: "[0]", VariableName: "first"},
			{Type: capture.TypeJSON, Path: "data", VariableName: "data"},
			{Type: capture.TypeHeader, Path: "CONTENT-TYPE", VariableName: "ct"},
			{Type: capture.TypeRegex, Path: `token":"([^"]+)`, VariableName: "re"},
			{Type: capture.TypeRegex, Path: `\d+`, VariableName: "digits"},
			{Type: capture.TypeRegex, Path: `(`, VariableName: "bad"},
			{Type: capture.TypeStatus, VariableName: "status"},
			{Type: capture.TypeBody, VariableName: "body"},
		},
		Paths: []string{"", "token", "data.age", "data.tags[0]", "data.nothing", "missing", "data.tags[9]", "dup"},
		Texts: []string{
			"",
			"plain",
			"https://{{host}}/{{path}}",
			"{{ host }}:{{port}}{{host}}",
			"{{}}",
			"{{{host}}",
			"{{a}b}}",
			"{{unclosed",
			"}}{{host}}{{",
			"{{{{host}}}}",
			"é{{ name }}ü",
		},
		Headers: map[string]string{
			"{{h}}":         "{{token}}",
			"X-Key":         "literal",
			"Authorization": "Bearer {{token}}",
		},
		Vars: []map[string]string{
			nil,
			{"host": "api.example.com"},
			{"host": "h", "port": "8080", "path": "v1", "h": "X-Key", "token": "t", "name": "n", "{host": "brace"},
		},
	}
}
