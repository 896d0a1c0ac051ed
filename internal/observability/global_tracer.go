package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "bea-feedback-console"

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the console.
func InitGlobalTracer(name string) {
	if name == "" {
		name = instrumentationName
	}
	globalTracer = otel.Tracer(name)
}

// GetGlobalTracer returns the global tracer instance.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		globalTracer = otel.Tracer(instrumentationName)
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given component and function.
func TraceFunction(ctx context.Context, component, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("%s.%s", component, functionName)
	return GetGlobalTracer().Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceClientFunction starts a new span for a feedback API client call.
func TraceClientFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "feedback_api", functionName, attributes...)
}

// TraceWidgetFunction starts a new span for a widget operation.
func TraceWidgetFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "widget", functionName, attributes...)
}

// TraceDashboardFunction starts a new span for a dashboard operation.
func TraceDashboardFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "dashboard", functionName, attributes...)
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// AttributeFeedbackID returns a tracing attribute for a feedback item id.
func AttributeFeedbackID(id string) attribute.KeyValue {
	return attribute.String("feedback.id", id)
}

// AttributeStatus returns a tracing attribute for a feedback status.
func AttributeStatus(status string) attribute.KeyValue {
	return attribute.String("feedback.status", status)
}

// AttributePriority returns a tracing attribute for a feedback priority.
func AttributePriority(priority string) attribute.KeyValue {
	return attribute.String("feedback.priority", priority)
}

// AttributeFilter returns a tracing attribute for an active list filter.
func AttributeFilter(kind, value string) attribute.KeyValue {
	return attribute.String("filter."+kind, value)
}

// AttributeItemCount returns a tracing attribute for the number of items loaded.
func AttributeItemCount(n int) attribute.KeyValue {
	return attribute.Int("feedback.count", n)
}

// AttributeHTTPStatus returns a tracing attribute for an upstream HTTP status.
func AttributeHTTPStatus(code int) attribute.KeyValue {
	return attribute.Int("feedback_api.status_code", code)
}
