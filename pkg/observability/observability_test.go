package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/vitrine/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func labels(m *dto.Metric) map[string]string {
	out := map[string]string{}
	for _, l := range m.GetLabel() {
		out[l.GetName()] = l.GetValue()
	}
	return out
}

func TestMetricsHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := observability.NewMetrics(reg).Hooks()
	ctx := context.Background()

	hooks.Emit(ctx, &observability.RenderEvent{Entity: "user", Duration: time.Millisecond})
	hooks.Emit(ctx, &observability.RenderEvent{Entity: "user", Duration: time.Millisecond})
	hooks.Emit(ctx, &observability.RenderEvent{Entity: "user", Err: errors.New("boom")})

	counts := map[string]float64{}
	for _, m := range family(t, reg, "vitrine_renders_total").GetMetric() {
		l := labels(m)
		assert.Equal(t, "user", l["entity"])
		counts[l["outcome"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"ok": 2, "error": 1}, counts)

	hist := family(t, reg, "vitrine_render_duration_seconds").GetMetric()
	require.Len(t, hist, 1)
	assert.Equal(t, uint64(3), hist[0].GetHistogram().GetSampleCount())
}

func TestCombine(t *testing.T) {
	var calls []string
	a := observability.Hooks{
		OnRender: func(context.Context, *observability.RenderEvent) { calls = append(calls, "a.render") },
	}
	b := observability.Hooks{
		OnRender: func(context.Context, *observability.RenderEvent) { calls = append(calls, "b.render") },
		OnError:  func(context.Context, *observability.RenderEvent) { calls = append(calls, "b.error") },
	}
	h := observability.Combine(a, b)

	h.Emit(context.Background(), &observability.RenderEvent{Entity: "x"})
	h.Emit(context.Background(), &observability.RenderEvent{Entity: "x", Err: errors.New("boom")})

	assert.Equal(t, []string{"a.render", "b.render", "a.render", "b.render", "b.error"}, calls)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := observability.LogHooks(logger)

	h.Emit(context.Background(), &observability.RenderEvent{Entity: "user", RequestID: "r-1"})
	assert.Contains(t, buf.String(), "msg=render")
	assert.Contains(t, buf.String(), "request_id=r-1")

	buf.Reset()
	h.Emit(context.Background(), &observability.RenderEvent{Entity: "user", Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "err=boom")
	assert.NotContains(t, buf.String(), "msg=render ")
}
