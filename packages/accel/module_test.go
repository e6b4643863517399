package accel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/assertions"
	"github.com/abdul-hamid-achik/volt/packages/capture"
	"github.com/abdul-hamid-achik/volt/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	referenceEngine
}

func (fakeEngine) Name() string { return "fake" }

func TestModule_SyncBeforeLoad(t *testing.T) {
	m := New(WithLoader(func(context.Context) (Engine, error) { return fakeEngine{}, nil }))
	resp := &http.Response{StatusCode: 200}

	assert.False(t, m.IsLoaded())

	_, err := m.EvaluateSync(assertions.Assertion{}, resp)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = m.EvaluateBatchSync(nil, resp)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = m.SubstituteSync("{{a}}", nil)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = m.SubstituteBatchSync(nil, nil)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = m.SubstituteHeadersSync(nil, nil)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = m.FindVariablesSync("")
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = m.HasVariablesSync("")
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, _, err = m.ExtractSync(capture.Config{Type: capture.TypeStatus}, resp)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = m.ExtractBatchSync("{}", nil)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestModule_AsyncLoadsThenSyncWorks(t *testing.T) {
	m := New(WithLoader(func(context.Context) (Engine, error) { return fakeEngine{}, nil }))
	resp := &http.Response{StatusCode: 200}
	a := assertions.Assertion{ID: "1", Type: assertions.TypeStatus, Operator: assertions.OpEquals, Expected: "200", Enabled: true}

	r, err := m.Evaluate(context.Background(), a, resp)
	require.NoError(t, err)
	assert.True(t, r.Passed)
	assert.True(t, m.IsLoaded())

	r, err = m.EvaluateSync(a, resp)
	require.NoError(t, err)
	assert.True(t, r.Passed)

	out, err := m.SubstituteSync("{{a}}", map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", out)

	v, ok, err := m.ExtractSync(capture.Config{Type: capture.TypeStatus}, resp)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "200", v)
}

func TestModule_ConcurrentCallersShareOneLoad(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	m := New(WithLoader(func(context.Context) (Engine, error) {
		loads.Add(1)
		<-release
		return NewFast(), nil
	}))

	const callers = 32
	engines := make([]Engine, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engines[i], errs[i] = m.EnsureLoaded(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, engines[0], engines[i])
	}

	_, err := m.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), loads.Load(), "a loaded engine is kept")
}

func TestModule_FailedLoadIsSharedThenRetried(t *testing.T) {
	var loads atomic.Int32
	boom := errors.New("boom")
	release := make(chan struct{})
	m := New(WithLoader(func(context.Context) (Engine, error) {
		if loads.Add(1) == 1 {
			<-release
			return nil, boom
		}
		return fakeEngine{}, nil
	}))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.EnsureLoaded(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
	assert.False(t, m.IsLoaded())

	e, err := m.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fake", e.Name())
	assert.Equal(t, int32(2), loads.Load())
}

func TestModule_WaitingCallerHonoursContext(t *testing.T) {
	release := make(chan struct{})
	m := New(WithLoader(func(context.Context) (Engine, error) {
		<-release
		return fakeEngine{}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.EnsureLoaded(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	require.Eventually(t, m.IsLoaded, time.Second, 5*time.Millisecond)
}

func TestModule_DefaultLoader(t *testing.T) {
	m := New()
	e, err := m.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "accelerated", e.Name())
}

func TestSelect(t *testing.T) {
	m := New(WithLoader(func(context.Context) (Engine, error) { return fakeEngine{}, nil }))

	e, err := m.Select(context.Background(), TierReference)
	require.NoError(t, err)
	assert.Equal(t, "reference", e.Name())

	e, err = m.Select(context.Background(), TierAuto)
	require.NoError(t, err)
	require.Eventually(t, m.IsLoaded, time.Second, 5*time.Millisecond)
	assert.Equal(t, "fake", e.Name())

	e, err = m.Select(context.Background(), TierAccelerated)
	require.NoError(t, err)
	assert.Equal(t, "fake", e.Name())
}

func TestTiered_FallsBackUntilLoaded(t *testing.T) {
	m := New(WithLoader(func(context.Context) (Engine, error) { return fakeEngine{}, nil }))
	tiered := NewTiered(m)
	assert.Equal(t, "reference", tiered.Name())
	assert.Equal(t, "x", tiered.Substitute("{{a}}", map[string]string{"a": "x"}))

	_, err := m.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fake", tiered.Name())
}

func TestParseTier(t *testing.T) {
	for _, s := range []string{"auto", "reference", "accelerated"} {
		tier, err := ParseTier(s)
		require.NoError(t, err)
		assert.Equal(t, Tier(s), tier)
	}
	tier, err := ParseTier("")
	require.NoError(t, err)
	assert.Equal(t, TierAuto, tier)

	_, err = ParseTier("turbo")
	assert.Error(t, err)
}
