package widget

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// PageContext is what the host page reports about itself at submit time
type PageContext struct {
	URL          string
	ScreenWidth  int
	ScreenHeight int
	UserAgent    string
}

// ScreenSize formats the viewport as "WxH", or "" when the page did not report it
func (p PageContext) ScreenSize() string {
	if p.ScreenWidth <= 0 || p.ScreenHeight <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", p.ScreenWidth, p.ScreenHeight)
}

// ErrSubmitInFlight is returned while a previous submit has not resolved
var ErrSubmitInFlight = contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityInfo,
	"submission already in progress", "")

// Submit validates the form and sends it as exactly one request.
// Validation failures send nothing. Every outcome leaves the submit control enabled again.
func (w *Widget) Submit(ctx context.Context, page PageContext) (err error) {
	ctx, span := observability.TraceWidgetFunction(ctx, "submit",
		attribute.String("page.url", page.URL),
	)
	defer observability.FinishSpan(span, &err)

	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	message := strings.TrimSpace(w.message)
	if message == "" {
		w.alert = AlertEmptyMessage
		w.mu.Unlock()
		return contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityWarn,
			"feedback rejected", AlertEmptyMessage)
	}
	if utf8.RuneCountInString(message) > w.opts.MaxMessageLength {
		alert := fmt.Sprintf(alertMessageTooLong, w.opts.MaxMessageLength)
		w.alert = alert
		w.mu.Unlock()
		return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"feedback rejected", alert)
	}

	submission := models.Submission{
		Message:     message,
		TabContext:  CurrentPage(page.URL),
		ScreenSize:  page.ScreenSize(),
		BrowserInfo: page.UserAgent,
		PageURL:     page.URL,
	}
	if w.screenshot != "" {
		screenshot := w.screenshot
		submission.ScreenshotURL = &screenshot
	}
	w.submitting = true
	w.mu.Unlock()

	span.SetAttributes(
		attribute.Bool("feedback.has_screenshot", submission.ScreenshotURL != nil),
		attribute.Int("feedback.message_length", utf8.RuneCountInString(message)),
	)

	err = w.opts.API.Submit(ctx, submission)
	w.opts.Metrics.RecordSubmission(ctx, observability.Outcome(err))

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err != nil {
		w.alert = submitAlert(err)
		w.opts.Logger.Error(ctx, "Feedback submit failed", err, map[string]interface{}{
			"tab_context": submission.TabContext,
			"error_code":  string(contextutils.GetErrorCode(err)),
		})
		return err
	}

	w.opts.Logger.Info(ctx, "Feedback submitted", map[string]interface{}{
		"tab_context":    submission.TabContext,
		"has_screenshot": submission.ScreenshotURL != nil,
	})
	w.phase = PhaseSuccess
	w.message = ""
	w.screenshot = ""
	w.scheduleCloseLocked()
	return nil
}

// submitAlert turns a failed submit into the alert text
func submitAlert(err error) string {
	switch contextutils.GetErrorCode(err) {
	case contextutils.ErrorCodeServiceUnavailable, contextutils.ErrorCodeTimeout:
		return AlertNetwork
	}
	return "Fehler: " + contextutils.UserMessage(err, fallbackSubmitError)
}

// CurrentPage derives the tab context from a page URL: the hash without "#",
// "Dashboard" for the root page, otherwise the last path segment.
func CurrentPage(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "Unknown"
	}
	if u.Fragment != "" {
		return u.Fragment
	}
	if u.Path == "" || u.Path == "/" || u.Path == "/index.html" {
		return "Dashboard"
	}
	segments := strings.Split(u.Path, "/")
	if last := segments[len(segments)-1]; last != "" {
		return last
	}
	return "Unknown"
}

// BrowserName maps a user agent to a short browser name. Edge and Chrome
// both announce "Chrome", so Edge is checked first.
func BrowserName(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Edg"):
		return "Edge"
	case strings.Contains(userAgent, "Chrome"):
		return "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		return "Firefox"
	case strings.Contains(userAgent, "Safari"):
		return "Safari"
	}
	return "Browser"
}
