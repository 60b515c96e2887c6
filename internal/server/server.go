// Package server exposes the watch session's state over HTTP: health,
// recent invocation outcomes, and prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/h-ikeda/strust/internal/history"
)

// Source reads invocation history for the status endpoints.
type Source interface {
	Last(ctx context.Context) (history.Record, bool, error)
	Recent(ctx context.Context, limit int) ([]history.Record, error)
}

type statusResponse struct {
	Healthy bool             `json:"healthy"`
	Last    *invocationView  `json:"last,omitempty"`
	Recent  []invocationView `json:"recent"`
}

type invocationView struct {
	Reason     string `json:"reason"`
	Path       string `json:"path,omitempty"`
	Succeeded  bool   `json:"succeeded"`
	ExitCode   int    `json:"exit_code"`
	SpawnError string `json:"spawn_error,omitempty"`
	StartedAt  string `json:"started_at"`
	DurationMs int64  `json:"duration_ms"`
}

func viewOf(rec history.Record) invocationView {
	return invocationView{
		Reason:     rec.Reason,
		Path:       rec.Path,
		Succeeded:  rec.Succeeded(),
		ExitCode:   rec.ExitCode,
		SpawnError: rec.SpawnError,
		StartedAt:  rec.StartedAt.UTC().Format(time.RFC3339),
		DurationMs: rec.DurationMs,
	}
}

// NewHandler builds the status router.
func NewHandler(src Source, registry *prometheus.Registry, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		resp := statusResponse{Healthy: true, Recent: []invocationView{}}

		last, ok, err := src.Last(req.Context())
		if err != nil {
			log.Error("read last invocation", "err", err)
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		if ok {
			view := viewOf(last)
			resp.Last = &view
			resp.Healthy = last.Succeeded()
		}

		recent, err := src.Recent(req.Context(), 20)
		if err != nil {
			log.Error("read recent invocations", "err", err)
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		for _, rec := range recent {
			resp.Recent = append(resp.Recent, viewOf(rec))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}
