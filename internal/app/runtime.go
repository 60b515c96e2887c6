// Package app wires the configured components into the build and watch
// commands.
package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/h-ikeda/strust/internal/config"
	"github.com/h-ikeda/strust/internal/eventlog"
	"github.com/h-ikeda/strust/internal/history"
	"github.com/h-ikeda/strust/internal/logging"
	"github.com/h-ikeda/strust/internal/metrics"
	"github.com/h-ikeda/strust/internal/orchestrator"
	"github.com/h-ikeda/strust/internal/toolchain"
	"github.com/h-ikeda/strust/internal/watch"
)

type Options struct {
	ConfigPath string
	// StatusAddr overrides the configured status server address. An empty
	// value keeps the config's address; "off" disables the server.
	StatusAddr string
	// Stderr receives the toolchain's diagnostic stream; defaults to the
	// process stderr.
	Stderr io.Writer
	// Logger overrides the config-derived logger, used by tests.
	Logger *slog.Logger
}

type runtime struct {
	cfg     config.Config
	log     *slog.Logger
	store   *history.Store
	events  *eventlog.Log
	metrics *metrics.Metrics
	orch    *orchestrator.Orchestrator
}

func newRuntime(ctx context.Context, opts Options) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.StatusAddr != "" {
		cfg.StatusAddr = opts.StatusAddr
	}

	log := opts.Logger
	if log == nil {
		log = logging.New(cfg.Level())
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}

	events, err := eventlog.New(cfg.EventLog)
	if err != nil {
		store.Close()
		return nil, err
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	invoker := toolchain.NewCommandInvoker(cfg.Toolchain, cfg.BuildArgs(), cfg.CrateDir)
	invoker.Stderr = stderr

	m := metrics.New()
	orch := orchestrator.New(
		invoker,
		watch.NewFilter(cfg.SourceExt),
		log,
		&historySink{store: store, log: log},
		&eventSink{events: events, log: log},
		m,
	)

	return &runtime{
		cfg:     cfg,
		log:     log,
		store:   store,
		events:  events,
		metrics: m,
		orch:    orch,
	}, nil
}

func (r *runtime) close() {
	r.events.Close()
	r.store.Close()
}
