package accel

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/volt/packages/assertions"
	"github.com/abdul-hamid-achik/volt/packages/capture"
	"github.com/abdul-hamid-achik/volt/packages/http"
)

// Tier selects which engine serves a caller.
type Tier string

const (
	TierAuto        Tier = "auto"
	TierReference   Tier = "reference"
	TierAccelerated Tier = "accelerated"
)

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierAuto, TierReference, TierAccelerated:
		return Tier(s), nil
	case "":
		return TierAuto, nil
	}
	return "", fmt.Errorf("unknown tier %q (expected auto, reference or accelerated)", s)
}

// Select returns the engine for tier. TierAccelerated waits for the load;
// TierAuto starts it in the background and returns a Tiered engine.
func (m *Module) Select(ctx context.Context, tier Tier) (Engine, error) {
	switch tier {
	case TierReference:
		return Reference(), nil
	case TierAccelerated:
		return m.EnsureLoaded(ctx)
	default:
		go func() {
			_, _ = m.EnsureLoaded(context.WithoutCancel(ctx))
		}()
		return NewTiered(m), nil
	}
}

// Tiered serves every call from the accelerated engine once it is loaded and
// from the reference tier until then.
type Tiered struct {
	module    *Module
	reference Engine
}

func NewTiered(m *Module) *Tiered {
	return &Tiered{module: m, reference: Reference()}
}

func (t *Tiered) current() Engine {
	if h := t.module.engine.Load(); h != nil {
		return h.engine
	}
	return t.reference
}

func (t *Tiered) Name() string {
	return t.current().Name()
}

func (t *Tiered) Evaluate(a assertions.Assertion, resp *http.Response) assertions.Result {
	return t.current().Evaluate(a, resp)
}

func (t *Tiered) EvaluateBatch(batch []assertions.Assertion, resp *http.Response) []assertions.Result {
	return t.current().EvaluateBatch(batch, resp)
}

func (t *Tiered) Substitute(text string, vars map[string]string) string {
	return t.current().Substitute(text, vars)
}

func (t *Tiered) SubstituteBatch(texts []string, vars map[string]string) []string {
	return t.current().SubstituteBatch(texts, vars)
}

func (t *Tiered) SubstituteHeaders(headers map[string]string, vars map[string]string) map[string]string {
	return t.current().SubstituteHeaders(headers, vars)
}

func (t *Tiered) FindVariables(text string) []string {
	return t.current().FindVariables(text)
}

func (t *Tiered) HasVariables(text string) bool {
	return t.current().HasVariables(text)
}

func (t *Tiered) Extract(cfg capture.Config, resp *http.Response) (string, bool) {
	return t.current().Extract(cfg, resp)
}

func (t *Tiered) ExtractBatch(body string, paths []string) map[string]string {
	return t.current().ExtractBatch(body, paths)
}
