package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type discardMetricExporter struct{}

func (discardMetricExporter) Temporality(sdkmetric.InstrumentKind) metricdata.Temporality {
	return metricdata.CumulativeTemporality
}

func (discardMetricExporter) Aggregation(sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.AggregationDefault{}
}

func (discardMetricExporter) Export(context.Context, *metricdata.ResourceMetrics) error { return nil }
func (discardMetricExporter) ForceFlush(context.Context) error                          { return nil }
func (discardMetricExporter) Shutdown(context.Context) error                            { return nil }

func validConfig() Config {
	return Config{
		ServiceName:    "shoporders-api",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		SampleRate:     1.0,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, nil},
		{"missing service name", func(c *Config) { c.ServiceName = "" }, ErrMissingServiceName},
		{"missing service version", func(c *Config) { c.ServiceVersion = "" }, ErrMissingServiceVersion},
		{"negative sample rate", func(c *Config) { c.SampleRate = -0.1 }, ErrInvalidSampleRate},
		{"sample rate above one", func(c *Config) { c.SampleRate = 1.1 }, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v wrapped in ErrInvalidConfig, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := validConfig()
		cfg.ServiceName = ""

		if _, err := Initialize(context.Background(), cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("installs only the enabled providers", func(t *testing.T) {
		tests := []struct {
			name          string
			tracing       bool
			metrics       bool
			wantTracer    bool
			wantMeterProv bool
		}{
			{"nothing", false, false, false, false},
			{"tracing", true, false, true, false},
			{"metrics", false, true, false, true},
			{"both", true, true, true, true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := validConfig()
				cfg.EnableTracing = tt.tracing
				cfg.EnableMetrics = tt.metrics

				tel, err := Initialize(context.Background(), cfg,
					WithTraceExporter(tracetest.NewInMemoryExporter()),
					WithMetricExporter(discardMetricExporter{}),
				)
				if err != nil {
					t.Fatalf("Initialize() failed: %v", err)
				}

				if got := tel.TracerProvider() != nil; got != tt.wantTracer {
					t.Errorf("TracerProvider() set = %v, want %v", got, tt.wantTracer)
				}
				if got := tel.MeterProvider() != nil; got != tt.wantMeterProv {
					t.Errorf("MeterProvider() set = %v, want %v", got, tt.wantMeterProv)
				}
				if tel.Meter("test") == nil {
					t.Error("Meter() returned nil")
				}

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tel.Shutdown(ctx); err != nil {
					t.Errorf("Shutdown() failed: %v", err)
				}
			})
		}
	})
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{-1, "AlwaysOffSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
	}

	for _, tt := range tests {
		got := createSampler(tt.rate).Description()
		if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
			t.Errorf("createSampler(%v) = %q, want prefix %q", tt.rate, got, tt.want)
		}
	}
}
