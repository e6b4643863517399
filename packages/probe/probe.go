package probe

import (
	"regexp"

	"github.com/abdul-hamid-achik/volt/packages/http"
	"github.com/abdul-hamid-achik/volt/packages/jsonpath"
	"github.com/abdul-hamid-achik/volt/packages/jsonvalue"
)

// Probe answers the questions asked about one response while evaluating
// assertions or extracting values.
type Probe interface {
	// Response returns the response under inspection.
	Response() *http.Response
	// JSON resolves path against the body. It returns
	// jsonvalue.ErrInvalidJSON when the body is not valid JSON.
	JSON(path string) (jsonpath.Lookup, error)
	// Regexp compiles pattern.
	Regexp(pattern string) (*regexp.Regexp, error)
}

// Reference is the reference Probe. It keeps no state between calls: every
// JSON lookup parses the body again and every pattern is compiled on use.
type Reference struct {
	resp *http.Response
}

func New(resp *http.Response) *Reference {
	return &Reference{resp: resp}
}

func (p *Reference) Response() *http.Response {
	return p.resp
}

func (p *Reference) JSON(path string) (jsonpath.Lookup, error) {
	doc, err := jsonvalue.Parse(p.resp.Body)
	if err != nil {
		return jsonpath.NotFound(), err
	}
	return jsonpath.Resolve(doc, path), nil
}

func (p *Reference) Regexp(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(pattern)
}
