package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecordingTracer(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func setupGinWithSessions() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-secret-key"))
	router.Use(sessions.Sessions("test-session", store))
	return router
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestGinMiddleware_PropagatesTraceparent(t *testing.T) {
	setupRecordingTracer(t)
	InitTracing(nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware("test-service"))
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, c.Request.Header.Get("traceparent"))
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("traceparent", "00-12345678901234567890123456789012-1234567890123456-01")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
}

func TestGinMiddlewareWithErrorHandling_SuccessIsUnmarked(t *testing.T) {
	recorder := setupRecordingTracer(t)

	router := setupGinWithSessions()
	router.Use(GinMiddlewareWithErrorHandling("test-service")...)
	router.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	ended := recorder.Ended()
	require.NotEmpty(t, ended)
	assert.NotEqual(t, codes.Error, ended[len(ended)-1].Status().Code)
}

func TestGinMiddlewareWithErrorHandling_AppErrorAttributes(t *testing.T) {
	recorder := setupRecordingTracer(t)

	router := setupGinWithSessions()
	router.Use(GinMiddlewareWithErrorHandling("test-service")...)
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(contextutils.NewAppError(contextutils.ErrorCodeUpstream, contextutils.SeverityWarn, "Feedback API request failed", "Feedback not found"))
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Feedback not found"})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "boom"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	ended := recorder.Ended()
	require.NotEmpty(t, ended)
	span := ended[len(ended)-1]
	attrs := spanAttributes(span)
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "UPSTREAM_ERROR", attrs["error.code"].AsString())
	assert.Equal(t, "warn", attrs["error.severity"].AsString())
	assert.Equal(t, "Feedback not found", attrs["error.detail"].AsString())
	assert.False(t, attrs["error.authenticated"].AsBool())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	ended = recorder.Ended()
	attrs = spanAttributes(ended[len(ended)-1])
	assert.Equal(t, "error", attrs["error.severity"].AsString())
	assert.True(t, attrs["error.server_error"].AsBool())
}

func TestDetermineErrorSeverity(t *testing.T) {
	assert.Equal(t, "error", determineErrorSeverity(503, nil))
	assert.Equal(t, "warn", determineErrorSeverity(404, nil))
	assert.Equal(t, "info", determineErrorSeverity(200, nil))
	assert.Equal(t, "info", determineErrorSeverity(404, contextutils.ErrRecordNotFound))
}
