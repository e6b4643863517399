package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/accel"
)

// Operation names recorded by Run.
const (
	OpEvaluateBatch     = "evaluateBatch"
	OpSubstituteBatch   = "substituteBatch"
	OpSubstituteHeaders = "substituteHeaders"
	OpFindVariables     = "findVariables"
	OpExtract           = "extract"
	OpExtractBatch      = "extractBatch"
)

// DefaultRounds is used when Config.Rounds is not positive.
const DefaultRounds = 200

type Config struct {
	Rounds int
	Corpus accel.Corpus
}

// EngineReport is the result for one engine.
type EngineReport struct {
	Engine   string        `json:"engine"`
	Duration time.Duration `json:"duration"`
	Ops      []OpSummary   `json:"ops"`
}

// Report is the result of a benchmark run.
type Report struct {
	Rounds  int            `json:"rounds"`
	Engines []EngineReport `json:"engines"`
}

// Speedup returns how many times faster candidate's mean is than base's for
// op. It is zero when either engine lacks the operation.
func (r *Report) Speedup(base, candidate, op string) float64 {
	b, okB := r.mean(base, op)
	c, okC := r.mean(candidate, op)
	if !okB || !okC || c == 0 {
		return 0
	}
	return float64(b) / float64(c)
}

func (r *Report) mean(engine, op string) (time.Duration, bool) {
	for _, e := range r.Engines {
		if e.Engine != engine {
			continue
		}
		for _, s := range e.Ops {
			if s.Op == op {
				return s.Mean, true
			}
		}
	}
	return 0, false
}

// Run replays cfg.Corpus through each engine in turn. A cancelled context
// stops the run between rounds.
func Run(ctx context.Context, engines []accel.Engine, cfg Config) (*Report, error) {
	rounds := cfg.Rounds
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	if len(cfg.Corpus.Responses) == 0 {
		cfg.Corpus = accel.DefaultCorpus()
	}

	report := &Report{Rounds: rounds}
	for _, engine := range engines {
		m := NewMetrics()
		start := time.Now()
		for i := 0; i < rounds; i++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("benchmark %s: %w", engine.Name(), err)
			}
			round(engine, cfg.Corpus, m)
		}
		report.Engines = append(report.Engines, EngineReport{
			Engine:   engine.Name(),
			Duration: time.Since(start),
			Ops:      m.Summaries(),
		})
	}
	return report, nil
}

func round(e accel.Engine, c accel.Corpus, m *Metrics) {
	for _, resp := range c.Responses {
		start := time.Now()
		e.EvaluateBatch(c.Assertions, resp)
		m.Record(OpEvaluateBatch, time.Since(start))

		for _, cfg := range c.Extractions {
			start = time.Now()
			e.Extract(cfg, resp)
			m.Record(OpExtract, time.Since(start))
		}

		start = time.Now()
		e.ExtractBatch(resp.Body, c.Paths)
		m.Record(OpExtractBatch, time.Since(start))
	}

	for _, vars := range c.Vars {
		start := time.Now()
		e.SubstituteBatch(c.Texts, vars)
		m.Record(OpSubstituteBatch, time.Since(start))

		start = time.Now()
		e.SubstituteHeaders(c.Headers, vars)
		m.Record(OpSubstituteHeaders, time.Since(start))
	}

	for _, text := range c.Texts {
		start := time.Now()
		e.FindVariables(text)
		m.Record(OpFindVariables, time.Since(start))
	}
}
