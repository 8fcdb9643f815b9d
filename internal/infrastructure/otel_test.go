package infrastructure

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/srstoner21/Cyclistic-Case-Study/internal/config"
)

// TestOTelInitialization tests OpenTelemetry initialization
func TestOTelInitialization(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Test with default configuration
	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	// Verify tracer provider is set
	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)

	// Verify meter provider is set
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)

	// Verify the dedicated Prometheus registry is available for pushing
	assert.NotNil(t, providers.Registry)

	// Test shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = providers.Shutdown(ctx)
	assert.NoError(t, err)
}

// TestTraceCorrelation tests trace ID correlation
func TestTraceCorrelation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx := context.Background()

	// Start a span
	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(ctx, "test-operation")
	defer span.End()

	// Extract trace ID
	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)

	// Verify trace ID matches span context
	expectedTraceID := span.SpanContext().TraceID().String()
	assert.Equal(t, expectedTraceID, traceID)

	// Run ID correlation is carried independently of the span context
	ctx = WithRunID(ctx, "run-42")
	assert.Equal(t, "run-42", GetRunID(ctx))
}

// TestPipelineMetrics tests pipeline metrics creation
func TestPipelineMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	// Verify run metrics
	assert.NotNil(t, metrics.RunsTotal)
	assert.NotNil(t, metrics.RunDuration)

	// Verify stage metrics
	assert.NotNil(t, metrics.StageExecutionsTotal)
	assert.NotNil(t, metrics.StageDuration)
	assert.NotNil(t, metrics.StageErrors)
	assert.NotNil(t, metrics.ActiveStages)

	// Verify row accounting metrics
	assert.NotNil(t, metrics.RowsLoaded)
	assert.NotNil(t, metrics.RowsRetained)
	assert.NotNil(t, metrics.RowsDropped)
	assert.NotNil(t, metrics.RowsCombined)
	assert.NotNil(t, metrics.TimestampParseFailures)
	assert.NotNil(t, metrics.NonCanonicalRiders)
	assert.NotNil(t, metrics.DuplicateRideIDs)
}

// TestRecordHelpers tests the metric recording helpers
func TestRecordHelpers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()

	// All helpers must tolerate real recordings and nil metrics
	RecordRunMetrics(ctx, metrics, "run-1", 2*time.Second, true, nil)
	RecordRunMetrics(ctx, metrics, "run-2", time.Second, false, assert.AnError)
	RecordStageMetrics(ctx, metrics, "run-1", "load", 100*time.Millisecond, true, nil)
	RecordStageMetrics(ctx, metrics, "run-1", "unify", 50*time.Millisecond, false, assert.AnError)
	RecordActiveStageChange(ctx, metrics, 1, "load")
	RecordActiveStageChange(ctx, metrics, -1, "load")

	RecordRunMetrics(ctx, nil, "run-1", time.Second, true, nil)
	RecordStageMetrics(ctx, nil, "run-1", "load", time.Second, true, nil)
	RecordActiveStageChange(ctx, nil, 1, "load")
}

// TestSpanOperations tests span operations and attributes
func TestSpanOperations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx := context.Background()
	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(ctx, "test-span")
	defer span.End()

	// Test adding span events
	AddSpanEvent(ctx, "test.event", map[string]interface{}{
		"event_data": "test_event_value",
		"timestamp":  time.Now().Unix(),
	})

	// Test error recording
	testErr := assert.AnError
	RecordError(ctx, testErr)

	// Verify span is recording
	assert.True(t, span.IsRecording())
}

// TestPushMetrics tests pushing the registry to a Pushgateway
func TestPushMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("pushes to configured gateway", func(t *testing.T) {
		var gotMethod, gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		cfg := DefaultOTelConfig()
		cfg.TraceExporter = "none"
		cfg.EnableTracing = false
		cfg.PushgatewayURL = server.URL
		cfg.PushJobName = "test_job"

		providers, err := InitializeOTel(cfg, logger)
		require.NoError(t, err)
		defer providers.Shutdown(context.Background())

		// Record something so the registry has content
		metrics, err := CreatePipelineMetrics(providers.Meter)
		require.NoError(t, err)
		metrics.RowsLoaded.Add(context.Background(), 100)

		require.NoError(t, providers.PushMetrics(context.Background()))
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Contains(t, gotPath, "/metrics/job/test_job")
	})

	t.Run("skips when no gateway configured", func(t *testing.T) {
		cfg := DefaultOTelConfig()
		cfg.TraceExporter = "none"
		cfg.EnableTracing = false

		providers, err := InitializeOTel(cfg, logger)
		require.NoError(t, err)
		defer providers.Shutdown(context.Background())

		assert.NoError(t, providers.PushMetrics(context.Background()))
	})

	t.Run("reports gateway failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg := DefaultOTelConfig()
		cfg.TraceExporter = "none"
		cfg.EnableTracing = false
		cfg.PushgatewayURL = server.URL

		providers, err := InitializeOTel(cfg, logger)
		require.NoError(t, err)
		defer providers.Shutdown(context.Background())

		assert.Error(t, providers.PushMetrics(context.Background()))
	})
}

// TestOTelConfiguration tests different configuration options
func TestOTelConfiguration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	tests := []struct {
		name   string
		config *OTelConfig
	}{
		{
			name: "development_config",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "development",
				TraceExporter:  "stdout",
				MetricExporter: "prometheus",
				EnableMetrics:  true,
				EnableTracing:  true,
				SampleRatio:    1.0,
			},
		},
		{
			name: "disabled_tracing",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "none",
				MetricExporter: "prometheus",
				EnableMetrics:  true,
				EnableTracing:  false,
				SampleRatio:    0.0,
			},
		},
		{
			name: "disabled_metrics",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "stdout",
				MetricExporter: "none",
				EnableMetrics:  false,
				EnableTracing:  true,
				SampleRatio:    1.0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, logger)
			require.NoError(t, err)
			require.NotNil(t, providers)

			// Verify configuration
			if tt.config.EnableTracing {
				assert.NotNil(t, providers.TracerProvider)
				assert.NotNil(t, providers.Tracer)
			}

			if tt.config.EnableMetrics {
				assert.NotNil(t, providers.MeterProvider)
				assert.NotNil(t, providers.Meter)
			}

			// Test shutdown
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err = providers.Shutdown(ctx)
			assert.NoError(t, err)
		})
	}
}

// TestOTelConfigFromTelemetry tests mapping the app telemetry config
func TestOTelConfigFromTelemetry(t *testing.T) {
	cfg := OTelConfigFromTelemetry(config.TelemetryConfig{
		Enabled:        true,
		ServiceName:    "custom-service",
		TraceSampling:  0.5,
		PushgatewayURL: "http://gateway:9091",
		PushJobName:    "custom_job",
	})

	assert.Equal(t, "custom-service", cfg.ServiceName)
	assert.True(t, cfg.EnableTracing)
	assert.True(t, cfg.EnableMetrics)
	assert.Equal(t, 0.5, cfg.SampleRatio)
	assert.Equal(t, "http://gateway:9091", cfg.PushgatewayURL)
	assert.Equal(t, "custom_job", cfg.PushJobName)

	disabled := OTelConfigFromTelemetry(config.TelemetryConfig{Enabled: false})
	assert.False(t, disabled.EnableTracing)
	assert.False(t, disabled.EnableMetrics)
	assert.Equal(t, config.AppServiceName, disabled.ServiceName)
}

// TestRuntimeMetricsCollector tests the runtime metrics snapshot
func TestRuntimeMetricsCollector(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	collector, err := NewRuntimeMetricsCollector(providers.Meter, time.Second)
	require.NoError(t, err)

	stats := collector.GetCurrentStats(context.Background())
	require.NotNil(t, stats)
	assert.Greater(t, stats.GoRoutines, int64(0))
	assert.Greater(t, stats.MemoryUsage, int64(0))
	assert.False(t, stats.Timestamp.IsZero())

	formatted := stats.FormatStats()
	assert.Contains(t, formatted, "goroutines")
	assert.Contains(t, formatted, "memory_usage_mb")
}

// TestTracePropagation tests trace propagation across contexts
func TestTracePropagation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	tracer := otel.Tracer("propagation-test")

	// Start parent span
	ctx := context.Background()
	ctx, parentSpan := tracer.Start(ctx, "parent-operation")
	defer parentSpan.End()

	parentTraceID := parentSpan.SpanContext().TraceID().String()

	// Create child span in same trace
	ctx, childSpan := tracer.Start(ctx, "child-operation")
	defer childSpan.End()

	childTraceID := childSpan.SpanContext().TraceID().String()

	// Verify trace propagation
	assert.Equal(t, parentTraceID, childTraceID, "Child span should have same trace ID as parent")

	// Verify spans are in same trace but different spans
	assert.Equal(t, parentSpan.SpanContext().TraceID(), childSpan.SpanContext().TraceID())
	assert.NotEqual(t, parentSpan.SpanContext().SpanID(), childSpan.SpanContext().SpanID())
}

// BenchmarkTraceOperations benchmarks trace operations to validate performance impact
func BenchmarkTraceOperations(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(b, err)
	defer providers.Shutdown(context.Background())

	tracer := otel.Tracer("benchmark")

	b.ResetTimer()
	b.ReportAllocs()

	b.Run("span_creation", func(b *testing.B) {
		ctx := context.Background()
		for i := 0; i < b.N; i++ {
			_, span := tracer.Start(ctx, "benchmark-span")
			span.End()
		}
	})

	b.Run("span_events", func(b *testing.B) {
		ctx := context.Background()
		ctx, span := tracer.Start(ctx, "benchmark-span")
		defer span.End()

		for i := 0; i < b.N; i++ {
			AddSpanEvent(ctx, "benchmark.event", map[string]interface{}{
				"iteration": i,
				"timestamp": time.Now().Unix(),
			})
		}
	})
}

// BenchmarkMetricOperations benchmarks metric operations
func BenchmarkMetricOperations(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(b, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(b, err)

	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	b.Run("counter_increment", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			metrics.RowsLoaded.Add(ctx, 1)
		}
	})

	b.Run("histogram_record", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			metrics.StageDuration.Record(ctx, float64(i)*0.001)
		}
	})

	b.Run("updown_counter", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if i%2 == 0 {
				metrics.ActiveStages.Add(ctx, 1)
			} else {
				metrics.ActiveStages.Add(ctx, -1)
			}
		}
	})
}
