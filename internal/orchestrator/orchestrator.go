// Package orchestrator bridges the host build lifecycle to the wasm
// toolchain: one unconditional invocation before bundling starts, and one
// invocation per relevant source change during watch mode. Invocations are
// strictly serialized so overlapping triggers can never race on the output
// artifact. Matching changes are deliberately not debounced; every one gets
// its own full invocation.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/h-ikeda/strust/internal/toolchain"
	"github.com/h-ikeda/strust/internal/watch"
)

// Sink observes invocation lifecycle. Finished is called exactly once per
// request; err is non-nil only for spawn failures.
type Sink interface {
	InvocationStarted(req toolchain.Request)
	InvocationFinished(outcome toolchain.Outcome, err error)
}

type Orchestrator struct {
	invoker toolchain.Invoker
	filter  watch.Filter
	log     *slog.Logger
	sinks   []Sink

	mu sync.Mutex
}

func New(invoker toolchain.Invoker, filter watch.Filter, log *slog.Logger, sinks ...Sink) *Orchestrator {
	return &Orchestrator{
		invoker: invoker,
		filter:  filter,
		log:     log,
		sinks:   sinks,
	}
}

// OnBuildStart triggers exactly one toolchain invocation, unconditionally,
// and returns only after it has resolved. The host must not read the
// artifact before this returns.
func (o *Orchestrator) OnBuildStart(ctx context.Context) (toolchain.Outcome, error) {
	return o.invoke(ctx, toolchain.Request{Trigger: toolchain.TriggerBuildStart})
}

// OnWatchedFileChanged applies the watch filter to path. A non-matching path
// is a successful no-op: the second return is false and nothing else
// happens. A matching path triggers one invocation and blocks until it
// resolves, mirroring OnBuildStart.
func (o *Orchestrator) OnWatchedFileChanged(ctx context.Context, path string) (toolchain.Outcome, bool, error) {
	if !o.filter.Matches(path) {
		return toolchain.Outcome{}, false, nil
	}
	outcome, err := o.invoke(ctx, toolchain.Request{Trigger: toolchain.TriggerFileChange, Path: path})
	return outcome, true, err
}

func (o *Orchestrator) invoke(ctx context.Context, req toolchain.Request) (toolchain.Outcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, s := range o.sinks {
		s.InvocationStarted(req)
	}
	o.log.Info("invoking toolchain", "trigger", req.Trigger, "path", req.Path)

	outcome, err := o.invoker.Invoke(ctx, req)
	if err != nil {
		// A spawn failure yields no real outcome; keep the request context
		// attached so sinks can attribute the resolution.
		outcome.Trigger = req.Trigger
		outcome.Path = req.Path
	}

	for _, s := range o.sinks {
		s.InvocationFinished(outcome, err)
	}

	switch {
	case err != nil:
		o.log.Error("toolchain spawn failed", "trigger", req.Trigger, "err", err)
	case !outcome.Succeeded():
		o.log.Warn("toolchain exited non-zero",
			"trigger", req.Trigger, "path", req.Path, "exit_code", outcome.ExitCode)
	default:
		o.log.Info("toolchain build succeeded",
			"trigger", req.Trigger, "duration_ms", outcome.DurationMs)
	}

	return outcome, err
}
