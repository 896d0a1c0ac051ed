package observability

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
)

// GinMiddleware creates OpenTelemetry middleware for Gin HTTP requests
func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// GinMiddlewareWithErrorHandling returns the otelgin middleware followed by a handler
// that marks the request span as failed for 4xx/5xx answers and attaches AppError details.
// Register both: router.Use(GinMiddlewareWithErrorHandling(name)...)
func GinMiddlewareWithErrorHandling(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), annotateErrors}
}

// annotateErrors runs inside the otelgin span so the attributes land on the request span
func annotateErrors(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	statusCode := c.Writer.Status()
	if !span.IsRecording() || statusCode < 400 {
		return
	}

	appErr := firstAppError(c.Errors)
	severity := determineErrorSeverity(statusCode, appErr)

	errorMsg := "client error"
	if statusCode >= 500 {
		errorMsg = "server error"
	}
	if appErr != nil {
		errorMsg = appErr.Message
	} else if last := c.Errors.Last(); last != nil {
		errorMsg = last.Error()
	}

	span.RecordError(errors.New(errorMsg), trace.WithStackTrace(true))
	span.SetStatus(codes.Error, errorMsg)
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.path", c.Request.URL.Path),
		attribute.String("error.handler", c.HandlerName()),
		attribute.String("error.severity", severity),
	)

	// whether the caller carried a feedback API credential
	token, _ := sessions.Default(c).Get(config.SessionTokenKey).(string)
	span.SetAttributes(attribute.Bool("error.authenticated", token != ""))

	if c.Request.ContentLength > 0 {
		span.SetAttributes(attribute.Int64("error.request_size", c.Request.ContentLength))
	}
	if appErr != nil {
		span.SetAttributes(
			attribute.String("error.code", string(appErr.Code)),
			attribute.Bool("error.retryable", contextutils.IsRetryable(appErr)),
		)
		if appErr.Details != "" {
			span.SetAttributes(attribute.String("error.detail", appErr.Details))
		}
	}
	if statusCode >= 500 {
		span.SetAttributes(attribute.Bool("error.server_error", true))
	}
}

func firstAppError(errs []*gin.Error) *contextutils.AppError {
	for _, err := range errs {
		var appErr *contextutils.AppError
		if errors.As(err.Err, &appErr) {
			return appErr
		}
	}
	return nil
}

// determineErrorSeverity prefers the AppError severity and falls back to the status code
func determineErrorSeverity(statusCode int, appErr *contextutils.AppError) string {
	if appErr != nil {
		return string(appErr.Severity)
	}

	switch {
	case statusCode >= 500:
		return string(contextutils.SeverityError)
	case statusCode >= 400:
		return string(contextutils.SeverityWarn)
	default:
		return string(contextutils.SeverityInfo)
	}
}
