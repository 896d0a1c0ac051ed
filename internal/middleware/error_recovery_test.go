package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorRecoveryMiddleware_PanicRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorRecoveryMiddleware(nil))

	router.GET("/panic", func(_ *gin.Context) {
		panic("test panic")
	})

	req, _ := http.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body["code"])
}

func TestErrorRecoveryMiddleware_NormalRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorRecoveryMiddleware(nil))

	router.GET("/normal", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/normal", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		detail string
	}{
		{
			name:   "upstream detail",
			err:    contextutils.NewAppError(contextutils.ErrorCodeUpstream, contextutils.SeverityWarn, "feedback API error", "Invalid transition"),
			status: http.StatusBadGateway,
			code:   "UPSTREAM_ERROR",
			detail: "Invalid transition",
		},
		{
			name:   "missing field",
			err:    contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityInfo, "comment missing", "Bitte gib einen Kommentar ein."),
			status: http.StatusBadRequest,
			code:   "MISSING_REQUIRED_FIELD",
			detail: "Bitte gib einen Kommentar ein.",
		},
		{
			name:   "not found",
			err:    contextutils.NewAppError(contextutils.ErrorCodeRecordNotFound, contextutils.SeverityInfo, "feedback not in list", "x1"),
			status: http.StatusNotFound,
			code:   "RECORD_NOT_FOUND",
			detail: "x1",
		},
		{
			name:   "transport",
			err:    contextutils.NewAppError(contextutils.ErrorCodeServiceUnavailable, contextutils.SeverityError, "feedback API unreachable", ""),
			status: http.StatusServiceUnavailable,
			code:   "SERVICE_UNAVAILABLE",
			detail: "feedback API unreachable",
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   "INTERNAL_SERVER_ERROR",
			detail: "Internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleAppError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.detail, body["detail"])
		})
	}
}

func TestStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusForCode(contextutils.ErrorCodeUnauthorized))
	assert.Equal(t, http.StatusForbidden, StatusForCode(contextutils.ErrorCodeForbidden))
	assert.Equal(t, http.StatusGatewayTimeout, StatusForCode(contextutils.ErrorCodeTimeout))
	assert.Equal(t, http.StatusBadGateway, StatusForCode(contextutils.ErrorCodeResponseInvalid))
	assert.Equal(t, http.StatusBadRequest, StatusForCode(contextutils.ErrorCodeValidationFailed))
}
