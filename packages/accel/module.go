package accel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/assertions"
	"github.com/abdul-hamid-achik/volt/packages/capture"
	"github.com/abdul-hamid-achik/volt/packages/http"
	"golang.org/x/sync/singleflight"
)

// ErrNotLoaded is returned by the synchronous entry points of a Module whose
// engine has not been loaded yet. It signals a caller bug, never a property
// of the data being evaluated.
var ErrNotLoaded = errors.New("accelerated engine not loaded")

// Loader builds the accelerated engine.
type Loader func(ctx context.Context) (Engine, error)

// Module owns the lazily loaded accelerated engine. At most one load is in
// flight at a time and every caller waiting on it observes its outcome. A
// successful load is kept for the lifetime of the Module; a failed one is
// not, so the next call tries again.
type Module struct {
	loader Loader
	logger *slog.Logger
	group  singleflight.Group
	engine atomic.Pointer[handle]
}

type handle struct {
	engine Engine
}

type Option func(*Module)

// WithLoader replaces the default loader.
func WithLoader(l Loader) Option {
	return func(m *Module) {
		m.loader = l
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		m.logger = l
	}
}

func New(opts ...Option) *Module {
	m := &Module{
		loader: DefaultLoader,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultLoader builds a Fast engine and verifies it against the reference
// tier before handing it out.
func DefaultLoader(_ context.Context) (Engine, error) {
	fast := NewFast()
	if err := SelfCheck(Reference(), fast); err != nil {
		return nil, err
	}
	return fast, nil
}

// IsLoaded reports whether the engine is ready for the synchronous calls.
func (m *Module) IsLoaded() bool {
	return m.engine.Load() != nil
}

// EnsureLoaded returns the engine, loading it first if needed. If ctx ends
// while the load is in flight EnsureLoaded returns ctx.Err(); the load itself
// continues for the other callers.
func (m *Module) EnsureLoaded(ctx context.Context) (Engine, error) {
	if h := m.engine.Load(); h != nil {
		return h.engine, nil
	}

	ch := m.group.DoChan("load", func() (any, error) {
		if h := m.engine.Load(); h != nil {
			return h.engine, nil
		}
		return m.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Engine), nil
	}
}

func (m *Module) load(ctx context.Context) (Engine, error) {
	start := time.Now()
	m.logger.Debug("loading accelerated engine")

	engine, err := m.loader(ctx)
	if err == nil && engine == nil {
		err = errors.New("loader returned no engine")
	}
	if err != nil {
		m.logger.Warn("accelerated engine load failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("load accelerated engine: %w", err)
	}

	m.engine.Store(&handle{engine: engine})
	m.logger.Debug("accelerated engine loaded", "engine", engine.Name(), "duration", time.Since(start))
	return engine, nil
}

func (m *Module) loaded() (Engine, error) {
	h := m.engine.Load()
	if h == nil {
		return nil, ErrNotLoaded
	}
	return h.engine, nil
}

func (m *Module) Evaluate(ctx context.Context, a assertions.Assertion, resp *http.Response) (assertions.Result, error) {
	e, err := m.EnsureLoaded(ctx)
	if err != nil {
		return assertions.Result{}, err
	}
	return e.Evaluate(a, resp), nil
}

func (m *Module) EvaluateSync(a assertions.Assertion, resp *http.Response) (assertions.Result, error) {
	e, err := m.loaded()
	if err != nil {
		return assertions.Result{}, err
	}
	return e.Evaluate(a, resp), nil
}

func (m *Module) EvaluateBatch(ctx context.Context, batch []assertions.Assertion, resp *http.Response) ([]assertions.Result, error) {
	e, err := m.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return e.EvaluateBatch(batch, resp), nil
}

func (m *Module) EvaluateBatchSync(batch []assertions.Assertion, resp *http.Response) ([]assertions.Result, error) {
	e, err := m.loaded()
	if err != nil {
		return nil, err
	}
	return e.EvaluateBatch(batch, resp), nil
}

func (m *Module) Substitute(ctx context.Context, text string, vars map[string]string) (string, error) {
	e, err := m.EnsureLoaded(ctx)
	if err != nil {
		return "", err
	}
	return e.Substitute(text, vars), nil
}

func (m *Module) SubstituteSync(text string, vars map[string]string) (string, error) {
	e, err := m.loaded()
	if err != nil {
		return "", err
	}
	return e.Substitute(text, vars), nil
}

func (m *Module) SubstituteBatch(ctx context.Context, texts []string, vars map[string]string) ([]string, error) {
	e, err := m.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return e.SubstituteBatch(texts, vars), nil
}

func (m *Module) SubstituteBatchSync(texts []string, vars map[string]string) ([]string, error) {
	e, err := m.loaded()
	if err != nil {
		return nil, err
	}
	return e.SubstituteBatch(texts, vars), nil
}

func (m *Module) SubstituteHeaders(ctx context.Context, headers, vars map[string]string) (map[string]string, error) {
	e, err := m.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return e.SubstituteHeaders(headers, vars), nil
}

func (m *Module) SubstituteHeadersSync(headers, vars map[string]string) (map[string]string, error) {
	e, err := m.loaded()
	if err != nil {
		return nil, err
	}
	return e.SubstituteHeaders(headers, vars), nil
}

func (m *Module) FindVariables(ctx context.Context, text string) ([]string, error) {
	e, err := m.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return e.FindVariables(text), nil
}

func (m *Module) FindVariablesSync(text string) ([]string, error) {
	e, err := m.loaded()
	if err != nil {
		return nil, err
	}
	return e.FindVariables(text), nil
}

func (m *Module) HasVariables(ctx context.Context, text string) (bool, error) {
	e, err := m.EnsureLoaded(ctx)
	if err != nil {
		return false, err
	}
	return e.HasVariables(text), nil
}

func (m *Module) HasVariablesSync(text string) (bool, error) {
	e, err := m.loaded()
	if err != nil {
		return false, err
	}
	return e.HasVariables(text), nil
}

func (m *Module) Extract(ctx context.Context, cfg capture.Config, resp *http.Response) (string, bool, error) {
	e, err := m.EnsureLoaded(ctx)
	if err != nil {
		return "", false, err
	}
	value, ok := e.Extract(cfg, resp)
	return value, ok, nil
}

func (m *Module) ExtractSync(cfg capture.Config, resp *http.Response) (string, bool, error) {
	e, err := m.loaded()
	if err != nil {
		return "", false, err
	}
	value, ok := e.Extract(cfg, resp)
	return value, ok, nil
}

func (m *Module) ExtractBatch(ctx context.Context, body string, paths []string) (map[string]string, error) {
	e, err := m.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return e.ExtractBatch(body, paths), nil
}

func (m *Module) ExtractBatchSync(body string, paths []string) (map[string]string, error) {
	e, err := m.loaded()
	if err != nil {
		return nil, err
	}
	return e.ExtractBatch(body, paths), nil
}
