package handlers

import (
	"fmt"
	"net/http"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/middleware"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/views"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// HandleAppError records err on the request and answers with its JSON form
func HandleAppError(c *gin.Context, err error) {
	_ = c.Error(err)
	middleware.HandleAppError(c, err)
}

// HandleValidationError handles input validation errors consistently
func HandleValidationError(c *gin.Context, field string, reason string) {
	appErr := contextutils.NewAppError(
		contextutils.ErrorCodeInvalidInput,
		contextutils.SeverityWarn,
		fmt.Sprintf("Invalid %s", field),
		reason,
	)
	HandleAppError(c, appErr)
}

// addFlash queues a one-shot message for the next rendered page
func addFlash(c *gin.Context, kind, text string) {
	session := sessions.Default(c)
	session.AddFlash(text, kind)
	_ = session.Save()
}

// takeFlashes pops every queued message, errors first
func takeFlashes(c *gin.Context) []views.Flash {
	session := sessions.Default(c)
	var flashes []views.Flash
	for _, kind := range []string{views.FlashError, views.FlashSuccess} {
		for _, v := range session.Flashes(kind) {
			if text, ok := v.(string); ok && text != "" {
				flashes = append(flashes, views.Flash{Kind: kind, Text: text})
			}
		}
	}
	if len(flashes) > 0 {
		_ = session.Save()
	}
	return flashes
}

// seeOther finishes a form post with a redirect to target
func seeOther(c *gin.Context, target string) {
	c.Redirect(http.StatusSeeOther, target)
}

// renderHTML renders a template, turning render failures into a 500
func renderHTML(c *gin.Context, renderer *views.Renderer, status int, name string, data interface{}) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Status(status)
	if err := renderer.Render(c.Writer, name, data); err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "Seite konnte nicht angezeigt werden")
	}
}
