package observability

import (
	"context"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// InitMetrics initializes OpenTelemetry metrics
func InitMetrics(cfg *config.OpenTelemetryConfig) (result0 *metric.MeterProvider, err error) {
	ctx := context.Background()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otel resource: %w", err)
	}

	var exporter metric.Exporter
	switch cfg.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp grpc metric exporter: %w", err)
		}
		exporter = exp
	case "http":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp http metric exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "unsupported otel protocol: %s", cfg.Protocol)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(res),
	)
	return mp, nil
}

// Metrics holds the console's instruments. A nil *Metrics records nothing.
type Metrics struct {
	submissions otelmetric.Int64Counter
	apiCalls    otelmetric.Int64Counter
	pollTicks   otelmetric.Int64Counter
}

// NewMetrics creates the instruments on the global meter provider
func NewMetrics() (*Metrics, error) {
	return NewMetricsFromMeter(otel.Meter(instrumentationName))
}

// NewMetricsFromMeter creates the instruments on the given meter
func NewMetricsFromMeter(meter otelmetric.Meter) (*Metrics, error) {
	submissions, err := meter.Int64Counter("feedback.submissions",
		otelmetric.WithDescription("Feedback submissions by outcome"))
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create submissions counter: %w", err)
	}
	apiCalls, err := meter.Int64Counter("feedback.api.calls",
		otelmetric.WithDescription("Feedback API calls by operation and outcome"))
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create api call counter: %w", err)
	}
	pollTicks, err := meter.Int64Counter("feedback.dashboard.poll_ticks",
		otelmetric.WithDescription("Dashboard background reloads"))
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create poll tick counter: %w", err)
	}
	return &Metrics{submissions: submissions, apiCalls: apiCalls, pollTicks: pollTicks}, nil
}

// RecordSubmission counts one widget submission
func (m *Metrics) RecordSubmission(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.submissions.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordAPICall counts one call to the feedback API
func (m *Metrics) RecordAPICall(ctx context.Context, operation, outcome string) {
	if m == nil {
		return
	}
	m.apiCalls.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordPollTick counts one dashboard poll
func (m *Metrics) RecordPollTick(ctx context.Context) {
	if m == nil {
		return
	}
	m.pollTicks.Add(ctx, 1)
}

// Outcome classifies err for the outcome metric attribute
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	switch contextutils.GetErrorCode(err) {
	case contextutils.ErrorCodeServiceUnavailable, contextutils.ErrorCodeTimeout:
		return "transport_error"
	case contextutils.ErrorCodeInvalidInput, contextutils.ErrorCodeMissingRequired, contextutils.ErrorCodeValidationFailed:
		return "rejected"
	default:
		return "api_error"
	}
}
