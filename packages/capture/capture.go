package capture

import (
	"github.com/abdul-hamid-achik/volt/packages/http"
	"github.com/abdul-hamid-achik/volt/packages/probe"
)

// Type selects where a value is extracted from.
type Type string

const (
	TypeJSON   Type = "json"
	TypeHeader Type = "header"
	TypeRegex  Type = "regex"
	TypeStatus Type = "status"
	TypeBody   Type = "body"
)

// Config describes one extraction. Path is a JSON path, a header name or a
// pattern depending on Type; status and body ignore it.
type Config struct {
	Type         Type   `json:"type" yaml:"type"`
	Path         string `json:"path,omitempty" yaml:"path,omitempty"`
	VariableName string `json:"variableName" yaml:"variableName"`
}

type Extractor struct {
	probe probe.Probe
}

func NewExtractor(p probe.Probe) *Extractor {
	return &Extractor{probe: p}
}

// Extract returns the value selected by cfg and whether one was found.
func (e *Extractor) Extract(cfg Config) (string, bool) {
	resp := e.probe.Response()
	switch cfg.Type {
	case TypeJSON:
		return e.extractFromJSON(cfg.Path)
	case TypeHeader:
		return resp.Headers.Get(cfg.Path)
	case TypeRegex:
		return e.extractFromRegex(cfg.Path)
	case TypeStatus:
		return resp.StatusString(), true
	case TypeBody:
		return resp.Body, true
	default:
		return "", false
	}
}

func (e *Extractor) extractFromJSON(path string) (string, bool) {
	lookup, err := e.probe.JSON(path)
	if err != nil || !lookup.Found {
		return "", false
	}
	return lookup.Text(), true
}

func (e *Extractor) extractFromRegex(pattern string) (string, bool) {
	re, err := e.probe.Regexp(pattern)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(e.probe.Response().Body)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return m[1], true
	}
	return m[0], true
}

// ExtractAll runs every config and returns the found values keyed by
// variable name. Later configs overwrite earlier ones with the same name.
func (e *Extractor) ExtractAll(configs []Config) map[string]string {
	results := make(map[string]string)
	for _, c := range configs {
		if value, ok := e.Extract(c); ok {
			results[c.VariableName] = value
		}
	}
	return results
}

// Extract runs cfg against resp with the reference probe.
func Extract(cfg Config, resp *http.Response) (string, bool) {
	return NewExtractor(probe.New(resp)).Extract(cfg)
}

func ExtractAll(resp *http.Response, configs []Config) map[string]string {
	return NewExtractor(probe.New(resp)).ExtractAll(configs)
}
