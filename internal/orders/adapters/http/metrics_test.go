package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return metrics, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewMetrics(t *testing.T) {
	metrics, _ := newTestMetrics(t)

	if metrics.requestDuration == nil {
		t.Error("requestDuration is nil")
	}
	if metrics.requestsTotal == nil {
		t.Error("requestsTotal is nil")
	}
}

func TestRecordRequest(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	ctx := context.Background()

	metrics.RecordRequest(ctx, "GET", "/v1/orders/{id}", 200, 0.5)
	metrics.RecordRequest(ctx, "POST", "/v1/orders/", 201, 0.7)
	metrics.RecordRequest(ctx, "GET", "/v1/orders/{id}", 200, 0.1)

	got := collect(t, reader)

	counter, ok := got["http_requests_total"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("http_requests_total missing or not Sum[int64]")
	}
	if len(counter.DataPoints) != 2 {
		t.Errorf("Expected 2 data points, got %d", len(counter.DataPoints))
	}
	var total int64
	for _, dp := range counter.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("Expected 3 requests, got %d", total)
	}

	histogram, ok := got["http_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("http_request_duration_seconds missing or not Histogram[float64]")
	}
	if len(histogram.DataPoints) != 2 {
		t.Errorf("Expected 2 data points, got %d", len(histogram.DataPoints))
	}
}

func TestWithMetricsLabelsByRoutePattern(t *testing.T) {
	metrics, reader := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(WithMetrics(metrics))
	r.Get("/v1/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, path := range []string{"/v1/orders/a", "/v1/orders/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	counter, ok := collect(t, reader)["http_requests_total"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("http_requests_total missing")
	}

	counts := map[string]int64{}
	for _, dp := range counter.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("route"))
		status, _ := dp.Attributes.Value(attribute.Key("status_code"))
		counts[route.AsString()+" "+status.Emit()] += dp.Value
	}

	if counts["/v1/orders/{id} 204"] != 2 {
		t.Errorf("expected 2 requests on /v1/orders/{id}, got %v", counts)
	}
	if counts["unmatched 404"] != 1 {
		t.Errorf("expected 1 unmatched request, got %v", counts)
	}
}
