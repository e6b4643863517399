package bench

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram range: 1ns to 10s, 3 significant digits.
const (
	minLatencyNs = 1
	maxLatencyNs = 10_000_000_000
)

// Metrics collects latencies per operation.
type Metrics struct {
	mu  sync.Mutex
	ops map[string]*hdrhistogram.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{ops: make(map[string]*hdrhistogram.Histogram)}
}

// Record adds one observation of op.
func (m *Metrics) Record(op string, d time.Duration) {
	ns := d.Nanoseconds()
	if ns < minLatencyNs {
		ns = minLatencyNs
	}
	if ns > maxLatencyNs {
		ns = maxLatencyNs
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.ops[op]
	if !ok {
		h = hdrhistogram.New(minLatencyNs, maxLatencyNs, 3)
		m.ops[op] = h
	}
	_ = h.RecordValue(ns)
}

// OpSummary holds the latency distribution of one operation.
type OpSummary struct {
	Op    string        `json:"op"`
	Count int64         `json:"count"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Mean  time.Duration `json:"mean"`
}

// Summaries returns one summary per recorded operation, sorted by name.
func (m *Metrics) Summaries() []OpSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]OpSummary, 0, len(m.ops))
	for op, h := range m.ops {
		out = append(out, OpSummary{
			Op:    op,
			Count: h.TotalCount(),
			P50:   time.Duration(h.ValueAtQuantile(50)),
			P95:   time.Duration(h.ValueAtQuantile(95)),
			P99:   time.Duration(h.ValueAtQuantile(99)),
			Min:   time.Duration(h.Min()),
			Max:   time.Duration(h.Max()),
			Mean:  time.Duration(h.Mean()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Op < out[j].Op })
	return out
}
