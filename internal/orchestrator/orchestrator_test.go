package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h-ikeda/strust/internal/logging"
	"github.com/h-ikeda/strust/internal/toolchain"
	"github.com/h-ikeda/strust/internal/watch"
)

type fakeInvoker struct {
	mu       sync.Mutex
	requests []toolchain.Request
	exitCode int
	spawnErr error
	delay    time.Duration

	inFlight      atomic.Int32
	maxConcurrent atomic.Int32
}

func (f *fakeInvoker) Invoke(ctx context.Context, req toolchain.Request) (toolchain.Outcome, error) {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		observed := f.maxConcurrent.Load()
		if current <= observed || f.maxConcurrent.CompareAndSwap(observed, current) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.spawnErr != nil {
		return toolchain.Outcome{}, f.spawnErr
	}
	now := time.Now()
	return toolchain.Outcome{
		Trigger:    req.Trigger,
		Path:       req.Path,
		ExitCode:   f.exitCode,
		StartedAt:  now,
		FinishedAt: now,
	}, nil
}

func (f *fakeInvoker) calls() []toolchain.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]toolchain.Request(nil), f.requests...)
}

type captureSink struct {
	mu       sync.Mutex
	started  []toolchain.Request
	finished []toolchain.Outcome
	errs     []error
}

func (s *captureSink) InvocationStarted(req toolchain.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, req)
}

func (s *captureSink) InvocationFinished(outcome toolchain.Outcome, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, outcome)
	s.errs = append(s.errs, err)
}

func newTestOrchestrator(inv toolchain.Invoker, sinks ...Sink) *Orchestrator {
	return New(inv, watch.NewFilter(".rs"), logging.NewNop(), sinks...)
}

func TestOnBuildStartSuccess(t *testing.T) {
	inv := &fakeInvoker{}
	sink := &captureSink{}
	o := newTestOrchestrator(inv, sink)

	outcome, err := o.OnBuildStart(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())

	calls := inv.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, toolchain.TriggerBuildStart, calls[0].Trigger)
	assert.Empty(t, calls[0].Path)
	assert.Len(t, sink.finished, 1)
}

func TestOnBuildStartAlwaysInvokes(t *testing.T) {
	inv := &fakeInvoker{}
	o := newTestOrchestrator(inv)

	_, err := o.OnBuildStart(context.Background())
	require.NoError(t, err)
	_, err = o.OnBuildStart(context.Background())
	require.NoError(t, err)

	assert.Len(t, inv.calls(), 2, "no hidden caching between build starts")
}

func TestOnWatchedFileChangedMatch(t *testing.T) {
	inv := &fakeInvoker{exitCode: 1}
	o := newTestOrchestrator(inv)

	outcome, matched, err := o.OnWatchedFileChanged(context.Background(), "src/foo.rs")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, 1, outcome.ExitCode, "failing status is carried, not swallowed")

	calls := inv.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, toolchain.TriggerFileChange, calls[0].Trigger)
	assert.Equal(t, "src/foo.rs", calls[0].Path)
}

func TestOnWatchedFileChangedNoMatch(t *testing.T) {
	inv := &fakeInvoker{}
	sink := &captureSink{}
	o := newTestOrchestrator(inv, sink)

	_, matched, err := o.OnWatchedFileChanged(context.Background(), "src/Main.vue")
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Empty(t, inv.calls(), "irrelevant change must have zero side effects")
	assert.Empty(t, sink.started)
	assert.Empty(t, sink.finished)
}

func TestSpawnErrorPropagates(t *testing.T) {
	spawnErr := errors.New("executable file not found in $PATH")
	inv := &fakeInvoker{spawnErr: spawnErr}
	sink := &captureSink{}
	o := newTestOrchestrator(inv, sink)

	_, err := o.OnBuildStart(context.Background())
	require.ErrorIs(t, err, spawnErr)

	require.Len(t, sink.errs, 1)
	assert.ErrorIs(t, sink.errs[0], spawnErr, "sinks still observe the resolution")
}

func TestInvocationsAreSerialized(t *testing.T) {
	inv := &fakeInvoker{delay: 20 * time.Millisecond}
	o := newTestOrchestrator(inv)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, matched, err := o.OnWatchedFileChanged(context.Background(), "wasm/lib.rs")
			assert.NoError(t, err)
			assert.True(t, matched)
		}()
	}
	wg.Wait()

	assert.Len(t, inv.calls(), 8, "every request resolves to exactly one outcome")
	assert.Equal(t, int32(1), inv.maxConcurrent.Load(), "at most one toolchain process in flight")
}

func TestEverySinkSeesEveryResolution(t *testing.T) {
	inv := &fakeInvoker{}
	first := &captureSink{}
	second := &captureSink{}
	o := newTestOrchestrator(inv, first, second)

	_, _, err := o.OnWatchedFileChanged(context.Background(), "wasm/model/beam.rs")
	require.NoError(t, err)

	assert.Len(t, first.started, 1)
	assert.Len(t, second.finished, 1)
}
