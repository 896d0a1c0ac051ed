package handlers

import (
	"net/http"
	"strings"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/dashboard"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/middleware"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/widget"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionHandler stores and clears the feedback API credential in the cookie session
type SessionHandler struct {
	widgets    *widget.Registry
	dashboards *dashboard.Registry
	logger     *observability.Logger
}

// NewSessionHandler creates a SessionHandler
func NewSessionHandler(widgets *widget.Registry, dashboards *dashboard.Registry, logger *observability.Logger) *SessionHandler {
	return &SessionHandler{widgets: widgets, dashboards: dashboards, logger: logger}
}

// SessionRequest is the body of POST /session
type SessionRequest struct {
	Token    string `json:"token" form:"token" binding:"required"`
	ReturnTo string `json:"return_to" form:"return_to"`
}

// CreateSession handles POST /session
func (h *SessionHandler) CreateSession(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "create_session")
	defer observability.FinishSpan(span, nil)

	var req SessionRequest
	if err := c.ShouldBind(&req); err != nil {
		HandleValidationError(c, "token", "token is required")
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		HandleValidationError(c, "token", "token is required")
		return
	}

	session := sessions.Default(c)
	// a different credential starts over with fresh components
	if previous, ok := middleware.SessionToken(c); ok && previous != req.Token {
		h.forget(previous)
	}
	session.Set(config.SessionTokenKey, req.Token)
	if err := session.Save(); err != nil {
		HandleAppError(c, contextutils.WrapError(err, "failed to save session"))
		return
	}

	h.logger.Info(ctx, "Session stored", map[string]interface{}{
		"token": contextutils.MaskToken(req.Token),
	})

	if req.ReturnTo != "" && isLocalPath(req.ReturnTo) && !middleware.WantsJSON(c) {
		seeOther(c, req.ReturnTo)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteSession handles DELETE /session and POST /session/logout. The session's
// widget and dashboard are stopped and dropped.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_session")
	defer observability.FinishSpan(span, nil)

	if token, ok := middleware.SessionToken(c); ok {
		h.forget(token)
		h.logger.Info(ctx, "Session cleared", map[string]interface{}{
			"token": contextutils.MaskToken(token),
		})
	}

	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SessionHandler) forget(token string) {
	h.widgets.Forget(token)
	h.dashboards.Forget(token)
}

// isLocalPath accepts same-site absolute paths only
func isLocalPath(target string) bool {
	return strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\")
}
