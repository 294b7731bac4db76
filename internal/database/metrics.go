package database

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics times store operations. It is shared by every order store backend.
type Metrics struct {
	queryDuration metric.Float64Histogram
	backend       attribute.KeyValue
}

func NewMetrics(meter metric.Meter, backend string) (*Metrics, error) {
	m := &Metrics{backend: attribute.String("backend", backend)}

	var err error

	m.queryDuration, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Order store operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_query_duration histogram: %w", err)
	}

	return m, nil
}

// RecordQuery records one operation. err should be nil for expected misses.
func (m *Metrics) RecordQuery(ctx context.Context, operation string, durationSeconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.queryDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		m.backend,
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
