package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapRecorderLogsAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := NewZapRecorder(zap.New(core))

	rec.Record(context.Background(), "admin.changed", map[string]any{"id": "U001", "collection": "users"})

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "admin.changed", ctx["event"])
	assert.Equal(t, "U001", ctx["id"])
	assert.Equal(t, "users", ctx["collection"])
}

func TestZapRecorderSkipsWhenDebugDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	NewZapRecorder(zap.New(core)).Record(context.Background(), "x", nil)
	assert.Zero(t, logs.Len())
	NewZapRecorder(nil).Record(context.Background(), "x", nil)
}

func TestPrometheusRecorder(t *testing.T) {
	registry := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(MetricsConfig{Registry: registry})
	require.NoError(t, err)

	ctx := context.Background()
	rec.Record(ctx, "chat.message.send", nil)
	rec.Record(ctx, "chat.message.send", map[string]any{"hook_error": "offline"})
	rec.Record(ctx, "admin.login", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.events.WithLabelValues("chat.message.send")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.events.WithLabelValues("admin.login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.errors.WithLabelValues("chat.message.send")))

	_, err = NewPrometheusRecorder(MetricsConfig{Registry: registry})
	assert.Error(t, err, "duplicate registration is reported")
}

func TestMulti(t *testing.T) {
	a, b := &countingRecorder{}, &countingRecorder{}
	Multi{a, nil, b}.Record(context.Background(), "e", nil)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

type countingRecorder struct{ calls int }

func (c *countingRecorder) Record(context.Context, string, map[string]any) { c.calls++ }
