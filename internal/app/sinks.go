package app

import (
	"context"
	"log/slog"

	"github.com/h-ikeda/strust/internal/eventlog"
	"github.com/h-ikeda/strust/internal/history"
	"github.com/h-ikeda/strust/internal/toolchain"
)

// historySink persists every resolved invocation. Recording failures are
// logged but never fail the invocation itself.
type historySink struct {
	store *history.Store
	log   *slog.Logger
}

func (s *historySink) InvocationStarted(req toolchain.Request) {}

func (s *historySink) InvocationFinished(outcome toolchain.Outcome, err error) {
	rec := history.Record{
		Reason:     string(outcome.Trigger),
		Path:       outcome.Path,
		ExitCode:   outcome.ExitCode,
		StartedAt:  outcome.StartedAt,
		FinishedAt: outcome.FinishedAt,
		DurationMs: outcome.DurationMs,
	}
	if err != nil {
		rec.SpawnError = err.Error()
	}
	if recErr := s.store.Record(context.Background(), rec); recErr != nil {
		s.log.Warn("record invocation history", "err", recErr)
	}
}

type eventSink struct {
	events *eventlog.Log
	log    *slog.Logger
}

func (s *eventSink) InvocationStarted(req toolchain.Request) {
	s.emit(eventlog.Event{
		Level:     "info",
		EventType: "invocation_started",
		Trigger:   string(req.Trigger),
		Path:      req.Path,
	})
}

func (s *eventSink) InvocationFinished(outcome toolchain.Outcome, err error) {
	event := eventlog.Event{
		Level:     "info",
		EventType: "invocation_finished",
		Trigger:   string(outcome.Trigger),
		Path:      outcome.Path,
		ExitCode:  outcome.ExitCode,
	}
	if err != nil {
		event.Level = "error"
		event.Error = err.Error()
	} else if !outcome.Succeeded() {
		event.Level = "warn"
	}
	s.emit(event)
}

func (s *eventSink) emit(event eventlog.Event) {
	if err := s.events.Emit(event); err != nil {
		s.log.Warn("emit event", "err", err)
	}
}
