package bench

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/accel"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Summaries(t *testing.T) {
	m := NewMetrics()
	for i := 1; i <= 100; i++ {
		m.Record("b", time.Duration(i)*time.Microsecond)
	}
	m.Record("a", 0)

	s := m.Summaries()
	require.Len(t, s, 2)
	assert.Equal(t, "a", s[0].Op)
	assert.Equal(t, time.Duration(1), s[0].Min, "zero durations are clamped to 1ns")

	b := s[1]
	assert.Equal(t, int64(100), b.Count)
	assert.InDelta(t, float64(50*time.Microsecond), float64(b.P50), float64(time.Microsecond))
	assert.InDelta(t, float64(100*time.Microsecond), float64(b.Max), float64(time.Microsecond))
	assert.LessOrEqual(t, b.P50, b.P95)
	assert.LessOrEqual(t, b.P95, b.P99)
}

func TestRun(t *testing.T) {
	report, err := Run(context.Background(), []accel.Engine{accel.Reference(), accel.NewFast()}, Config{Rounds: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Rounds)
	require.Len(t, report.Engines, 2)
	assert.Equal(t, "reference", report.Engines[0].Engine)
	assert.Equal(t, "accelerated", report.Engines[1].Engine)

	corpus := accel.DefaultCorpus()
	ops := map[string]int64{}
	for _, s := range report.Engines[1].Ops {
		ops[s.Op] = s.Count
	}
	assert.Equal(t, int64(3*len(corpus.Responses)), ops[OpEvaluateBatch])
	assert.Equal(t, int64(3*len(corpus.Texts)), ops[OpFindVariables])
	assert.Equal(t, int64(3*len(corpus.Vars)), ops[OpSubstituteHeaders])

	assert.Greater(t, report.Speedup("reference", "accelerated", OpEvaluateBatch), 0.0)
	assert.Zero(t, report.Speedup("reference", "missing", OpEvaluateBatch))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, []accel.Engine{accel.Reference()}, Config{Rounds: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReporter(t *testing.T) {
	report, err := Run(context.Background(), []accel.Engine{accel.Reference(), accel.NewFast()}, Config{Rounds: 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	NewReporter(WithWriter(&buf), WithNoColor(true)).Summary(report)
	out := buf.String()
	assert.Contains(t, out, "TIER BENCHMARK (1 rounds)")
	assert.Contains(t, out, "SPEEDUP accelerated vs reference")
	assert.Contains(t, out, OpEvaluateBatch)

	buf.Reset()
	require.NoError(t, NewReporter(WithWriter(&buf)).JSONSummary(report))
	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Engines, 2)
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "500ns", formatLatency(500))
	assert.Equal(t, "1.5μs", formatLatency(1500))
	assert.Equal(t, "2.5ms", formatLatency(2500*time.Microsecond))
	assert.Equal(t, "1.2s", formatLatency(1200*time.Millisecond))
}
