package middleware

import (
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in and out, and on to the feedback API
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds ids accepted from callers
const maxRequestIDLength = 128

// RequestID reuses the caller's X-Request-ID or creates one, echoes it on the
// response and stores it in the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(contextutils.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
