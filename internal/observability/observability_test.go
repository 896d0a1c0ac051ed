package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupObservability_NoneEnabled(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{ServiceName: "test-service", Protocol: "grpc"}

	tp, mp, logger, err := SetupObservability(cfg, "test-service", "info")
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.Nil(t, mp)
	require.NotNil(t, logger)
}

func TestSetupObservability_StandardSDK(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		EnableTracing:  true,
		EnableMetrics:  true,
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Protocol:       "grpc",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SamplingRate:   1.0,
	}
	tp, mp, logger, err := SetupObservability(cfg, "console-test", "debug")
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, mp)

	_, isStandardSDK := tp.(*sdktrace.TracerProvider)
	assert.True(t, isStandardSDK)
	assert.Equal(t, "console-test", cfg.ServiceName)

	Shutdown(context.Background(), tp, mp, logger)
}

func TestSetupObservability_AutoSDK(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		EnableTracing:  true,
		UseAutoSDK:     true,
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
	}
	tp, _, _, err := SetupObservability(cfg, "", "info")
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, isStandardSDK := tp.(*sdktrace.TracerProvider)
	assert.False(t, isStandardSDK)
}

func TestInitStandardTracing_Protocols(t *testing.T) {
	for _, protocol := range []string{"grpc", "http"} {
		t.Run(protocol, func(t *testing.T) {
			tp, err := InitStandardTracing(&config.OpenTelemetryConfig{
				ServiceName:  "test-service",
				Protocol:     protocol,
				Endpoint:     "localhost:4317",
				Insecure:     true,
				SamplingRate: 0.5,
			})
			require.NoError(t, err)
			_, ok := tp.(*sdktrace.TracerProvider)
			assert.True(t, ok)
		})
	}
}

func TestInitStandardTracing_InvalidProtocol(t *testing.T) {
	tp, err := InitStandardTracing(&config.OpenTelemetryConfig{Protocol: "carrier-pigeon"})
	require.Error(t, err)
	assert.Nil(t, tp)
	assert.Contains(t, err.Error(), "unsupported otel protocol")
}

func TestFinishSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	err := errors.New("upstream failed")
	FinishSpan(span, &err)

	_, ok := tp.Tracer("test").Start(context.Background(), "ok")
	FinishSpan(ok, nil)
	FinishSpan(nil, &err)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "upstream failed", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 1)
	assert.Empty(t, ended[1].Events())
}

func TestMetrics_RecordsCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetricsFromMeter(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSubmission(ctx, "success")
	m.RecordAPICall(ctx, "list", "success")
	m.RecordAPICall(ctx, "list", "api_error")
	m.RecordPollTick(ctx)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	totals := map[string]int64{}
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		for _, dp := range sum.DataPoints {
			totals[metric.Name] += dp.Value
		}
	}
	assert.Equal(t, int64(1), totals["feedback.submissions"])
	assert.Equal(t, int64(2), totals["feedback.api.calls"])
	assert.Equal(t, int64(1), totals["feedback.dashboard.poll_ticks"])
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordSubmission(context.Background(), "success")
	m.RecordAPICall(context.Background(), "list", "success")
	m.RecordPollTick(context.Background())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "transport_error", Outcome(contextutils.ErrServiceUnavailable))
	assert.Equal(t, "rejected", Outcome(contextutils.ErrMissingRequired))
	assert.Equal(t, "api_error", Outcome(contextutils.ErrUpstream))
	assert.Equal(t, "api_error", Outcome(errors.New("plain")))
}
