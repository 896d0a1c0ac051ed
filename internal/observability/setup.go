package observability

import (
	"context"
	"os"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"

	autosdk "go.opentelemetry.io/auto/sdk"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// SetupObservability initializes tracing, metrics, and logging for a service.
// Disabled signals come back nil, except the logger which is a no-op.
func SetupObservability(cfg *config.OpenTelemetryConfig, serviceName string, logLevel string) (result0 trace.TracerProvider, result1 *metric.MeterProvider, result2 *Logger, err error) {
	if serviceName != "" {
		cfg.ServiceName = serviceName
	}

	var tp trace.TracerProvider
	var mp *metric.MeterProvider

	if err := os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName); err != nil {
		return nil, nil, nil, err
	}
	if err := os.Setenv("OTEL_SERVICE_VERSION", cfg.ServiceVersion); err != nil {
		return nil, nil, nil, err
	}

	logger := NewLoggerWithLevel(cfg, ParseLevel(logLevel))

	if cfg.EnableTracing {
		if cfg.UseAutoSDK {
			tp = autosdk.TracerProvider()
			logger.Info(context.Background(), "Tracing enabled with Auto SDK", map[string]interface{}{"service_name": cfg.ServiceName})
		} else {
			tp, err = InitStandardTracing(cfg)
			if err != nil {
				return nil, nil, logger, err
			}
			logger.Info(context.Background(), "Tracing enabled with standard SDK", map[string]interface{}{"service_name": cfg.ServiceName})
		}
		otel.SetTracerProvider(tp)

		InitTracing(cfg)
		InitGlobalTracer(cfg.ServiceName)
	}

	if cfg.EnableMetrics {
		mp, err = InitMetrics(cfg)
		if err != nil {
			return tp, nil, logger, err
		}
		otel.SetMeterProvider(mp)
	}

	return tp, mp, logger, nil
}

// Shutdown flushes and stops whichever providers were created by SetupObservability
func Shutdown(ctx context.Context, tp trace.TracerProvider, mp *metric.MeterProvider, logger *Logger) {
	if sdkTP, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
		if err := sdkTP.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "Failed to shut down tracer provider", map[string]interface{}{"error": err.Error()})
		}
	}
	if mp != nil {
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "Failed to shut down meter provider", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = logger.Sync()
}
