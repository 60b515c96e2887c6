package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/h-ikeda/strust/internal/toolchain"
)

func TestInvocationCounters(t *testing.T) {
	m := New()

	req := toolchain.Request{Trigger: toolchain.TriggerBuildStart}
	m.InvocationStarted(req)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))

	m.InvocationFinished(toolchain.Outcome{Trigger: toolchain.TriggerBuildStart, DurationMs: 1200}, nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("build-start", "success")))

	m.InvocationStarted(req)
	m.InvocationFinished(toolchain.Outcome{Trigger: toolchain.TriggerFileChange, ExitCode: 1}, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("file-change", "failure")))

	m.InvocationStarted(req)
	m.InvocationFinished(toolchain.Outcome{Trigger: toolchain.TriggerBuildStart}, errors.New("not found"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("build-start", "spawn_error")))
}
