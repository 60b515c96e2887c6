package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/h-ikeda/strust/internal/toolchain"
)

// Metrics exposes invocation counters on a private registry. It satisfies
// the orchestrator's Sink interface.
type Metrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    prometheus.Histogram
	inFlight    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wasmdev",
			Name:      "invocations_total",
			Help:      "Toolchain invocations by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wasmdev",
			Name:      "invocation_duration_seconds",
			Help:      "Wall-clock duration of toolchain invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wasmdev",
			Name:      "invocations_in_flight",
			Help:      "Toolchain invocations currently running.",
		}),
	}

	m.registry.MustRegister(m.invocations, m.duration, m.inFlight)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) InvocationStarted(req toolchain.Request) {
	m.inFlight.Inc()
}

func (m *Metrics) InvocationFinished(outcome toolchain.Outcome, err error) {
	m.inFlight.Dec()

	label := "success"
	switch {
	case err != nil:
		label = "spawn_error"
	case !outcome.Succeeded():
		label = "failure"
	}

	trigger := string(outcome.Trigger)
	if trigger == "" {
		trigger = "unknown"
	}

	m.invocations.WithLabelValues(trigger, label).Inc()
	if err == nil {
		m.duration.Observe(float64(outcome.DurationMs) / 1000)
	}
}
