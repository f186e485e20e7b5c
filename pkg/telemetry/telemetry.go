// Package telemetry provides Recorder sinks for the Record(ctx, event, payload)
// contract shared by the stores.
package telemetry

import (
	"context"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Recorder is the telemetry contract consumed by the components.
type Recorder interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Multi fans a record out to every non-nil recorder.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, event string, payload map[string]any) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, event, payload)
		}
	}
}

// ZapRecorder logs every event at debug level.
type ZapRecorder struct {
	logger *zap.Logger
}

// NewZapRecorder wraps logger; nil yields a no-op logger.
func NewZapRecorder(logger *zap.Logger) *ZapRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapRecorder{logger: logger}
}

func (z *ZapRecorder) Record(_ context.Context, event string, payload map[string]any) {
	if ce := z.logger.Check(zap.DebugLevel, "telemetry"); ce != nil {
		ce.Write(append([]zap.Field{zap.String("event", event)}, payloadFields(payload)...)...)
	}
}

func payloadFields(payload map[string]any) []zap.Field {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, payload[k]))
	}
	return fields
}

// MetricsConfig configures the Prometheus recorder.
type MetricsConfig struct {
	Namespace string
	Registry  prometheus.Registerer
}

// PrometheusRecorder counts events per name.
type PrometheusRecorder struct {
	events *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// NewPrometheusRecorder registers transfers_events_total and
// transfers_event_errors_total on cfg.Registry (default registerer when nil).
func NewPrometheusRecorder(cfg MetricsConfig) (*PrometheusRecorder, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = "transfers"
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	var rec *PrometheusRecorder
	err := safeRegister(func() {
		factory := promauto.With(cfg.Registry)
		rec = &PrometheusRecorder{
			events: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "events_total",
				Help:      "Total number of recorded domain events",
			}, []string{"event"}),
			errors: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "event_errors_total",
				Help:      "Domain events whose payload carried an error",
			}, []string{"event"}),
		}
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// promauto panics on duplicate registration.
func safeRegister(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("telemetry: register metrics: %v", r)
		}
	}()
	fn()
	return nil
}

func (p *PrometheusRecorder) Record(_ context.Context, event string, payload map[string]any) {
	p.events.WithLabelValues(event).Inc()
	for k := range payload {
		if k == "error" || k == "hook_error" || k == "activity_error" {
			p.errors.WithLabelValues(event).Inc()
			return
		}
	}
}
