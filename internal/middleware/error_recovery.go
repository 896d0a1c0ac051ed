package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorRecoveryMiddleware turns panics into a logged 500 answer. Failed requests
// are never retried.
func ErrorRecoveryMiddleware(logger *observability.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				stackTrace := string(debug.Stack())

				panicErr, ok := rec.(error)
				if !ok {
					panicErr = fmt.Errorf("panic: %v", rec)
				}

				appErr := contextutils.NewAppErrorWithCause(
					contextutils.ErrorCodeInternalError,
					contextutils.SeverityFatal,
					"Internal server error",
					"A panic occurred while processing the request",
					panicErr,
				)

				logger.Error(c.Request.Context(), "Panic recovered", panicErr, map[string]interface{}{
					"path":        c.Request.URL.Path,
					"method":      c.Request.Method,
					"stack_trace": stackTrace,
				})

				// Add stack trace to error details in development
				if gin.Mode() == gin.DebugMode {
					appErr.Details = fmt.Sprintf("%s\nStack trace: %s", appErr.Details, stackTrace)
				}

				_ = c.Error(appErr)
				HandleAppError(c, appErr)
				c.Abort()
			}
		}()

		c.Next()
	}
}

// HandleAppError answers with the JSON form of err and the matching status code
func HandleAppError(c *gin.Context, err error) {
	var appErr *contextutils.AppError
	if !contextutils.AsError(err, &appErr) {
		appErr = contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInternalError,
			contextutils.SeverityError,
			"Internal server error",
			"",
			err,
		)
	}
	c.JSON(StatusForCode(appErr.Code), appErr.ToJSON())
}

// StatusForCode maps AppError codes to HTTP status codes
func StatusForCode(code contextutils.ErrorCode) int {
	switch code {
	// 4xx Client Errors
	case contextutils.ErrorCodeInvalidInput, contextutils.ErrorCodeMissingRequired,
		contextutils.ErrorCodeInvalidFormat, contextutils.ErrorCodeValidationFailed:
		return http.StatusBadRequest

	case contextutils.ErrorCodeUnauthorized:
		return http.StatusUnauthorized

	case contextutils.ErrorCodeForbidden:
		return http.StatusForbidden

	case contextutils.ErrorCodeRecordNotFound:
		return http.StatusNotFound

	// 5xx Server Errors
	case contextutils.ErrorCodeUpstream, contextutils.ErrorCodeResponseInvalid:
		return http.StatusBadGateway

	case contextutils.ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable

	case contextutils.ErrorCodeTimeout:
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}
