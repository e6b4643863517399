package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/http"
	"github.com/abdul-hamid-achik/volt/packages/probe"
	"github.com/google/uuid"
)

// ErrCouldNotExtract is returned when an extraction finds no value.
var ErrCouldNotExtract = errors.New("could not extract value")

// ChainVariable is a value captured from a response for use in later
// requests. Name is the lookup key; ID only identifies the entry.
type ChainVariable struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Source describes where cfg takes its value from.
func Source(cfg Config) string {
	switch cfg.Type {
	case TypeJSON:
		return "JSON path: " + cfg.Path
	case TypeHeader:
		return "Header: " + cfg.Path
	case TypeRegex:
		return "Regex: " + cfg.Path
	case TypeStatus:
		return "Status code"
	case TypeBody:
		return "Response body"
	default:
		return string(cfg.Type)
	}
}

// ChainVariable extracts cfg and wraps the value in a ChainVariable named
// cfg.VariableName.
func (e *Extractor) ChainVariable(cfg Config, now time.Time) (ChainVariable, error) {
	value, ok := e.Extract(cfg)
	if !ok {
		return ChainVariable{}, fmt.Errorf("%s: %w", cfg.VariableName, ErrCouldNotExtract)
	}
	return NewChainVariable(cfg, value, now), nil
}

// NewChainVariable wraps an already extracted value.
func NewChainVariable(cfg Config, value string, now time.Time) ChainVariable {
	return ChainVariable{
		ID:        uuid.NewString(),
		Name:      cfg.VariableName,
		Value:     value,
		Source:    Source(cfg),
		CreatedAt: now,
	}
}

// CreateChainVariable extracts cfg from resp with the reference probe.
func CreateChainVariable(cfg Config, resp *http.Response) (ChainVariable, error) {
	return NewExtractor(probe.New(resp)).ChainVariable(cfg, time.Now())
}
