package widget

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
)

// User facing alerts
const (
	AlertEmptyMessage       = "Bitte gib eine Nachricht ein."
	AlertScreenshotTooLarge = "Screenshot zu groß. Maximal 5MB erlaubt."
	AlertScreenshotNotImage = "Nur Bilddateien sind als Screenshot erlaubt."
	AlertScreenshotUnread   = "Screenshot konnte nicht gelesen werden."
	AlertNetwork            = "Netzwerkfehler. Bitte versuche es später erneut."
	fallbackSubmitError     = "Feedback konnte nicht gesendet werden"
)

// alertMessageTooLong is formatted with the configured maximum
const alertMessageTooLong = "Nachricht zu lang. Maximal %d Zeichen erlaubt."

// CounterLevel is the styling class of the character counter
type CounterLevel string

const (
	CounterNormal  CounterLevel = ""
	CounterWarning CounterLevel = "warning"
	CounterError   CounterLevel = "error"
)

// CharCounter is the live "N / max" counter below the textarea
type CharCounter struct {
	Count int
	Max   int
	Level CounterLevel
}

// Text renders the counter as shown in the form
func (c CharCounter) Text() string {
	return fmt.Sprintf("%d / %d", c.Count, c.Max)
}

// NewCharCounter computes the counter for text. Above 90% of max it warns,
// at or above max it is an error.
func NewCharCounter(text string, max int) CharCounter {
	count := utf8.RuneCountInString(text)
	level := CounterNormal
	if float64(count) > float64(max)*0.9 {
		level = CounterWarning
	}
	if count >= max {
		level = CounterError
	}
	return CharCounter{Count: count, Max: max, Level: level}
}

// SetMessage stores the textarea content and returns the updated counter
func (w *Widget) SetMessage(text string) CharCounter {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.message = text
	return w.counterLocked()
}

// CanSubmit reports whether the submit control is enabled
func (w *Widget) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmitLocked()
}

func (w *Widget) counterLocked() CharCounter {
	return NewCharCounter(w.message, w.opts.MaxMessageLength)
}

func (w *Widget) canSubmitLocked() bool {
	if w.submitting {
		return false
	}
	trimmed := strings.TrimSpace(w.message)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= w.opts.MaxMessageLength
}

// Upload is a screenshot file chosen by the user. Open is only called once
// the declared size has passed the ceiling check.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// AttachScreenshot validates and encodes an image as a data URL
func (w *Widget) AttachScreenshot(upload Upload) (err error) {
	if upload.Size > w.opts.MaxScreenshotSize {
		return w.reject(contextutils.ErrorCodeInvalidInput, AlertScreenshotTooLarge)
	}
	if upload.Open == nil {
		return w.reject(contextutils.ErrorCodeMissingRequired, AlertScreenshotUnread)
	}

	rc, err := upload.Open()
	if err != nil {
		w.setAlert(AlertScreenshotUnread)
		return contextutils.WrapError(err, "failed to open screenshot")
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = contextutils.WrapError(closeErr, "failed to close screenshot")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(rc, w.opts.MaxScreenshotSize+1))
	if err != nil {
		w.setAlert(AlertScreenshotUnread)
		return contextutils.WrapError(err, "failed to read screenshot")
	}
	if int64(len(data)) > w.opts.MaxScreenshotSize {
		return w.reject(contextutils.ErrorCodeInvalidInput, AlertScreenshotTooLarge)
	}

	mime := imageMIME(upload.ContentType, data)
	if mime == "" {
		return w.reject(contextutils.ErrorCodeInvalidFormat, AlertScreenshotNotImage)
	}

	w.mu.Lock()
	w.screenshot = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	w.mu.Unlock()
	return nil
}

// RemoveScreenshot drops an attached screenshot
func (w *Widget) RemoveScreenshot() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.screenshot = ""
}

// imageMIME returns the image type of data, preferring the declared type, or "" if it is not an image
func imageMIME(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	if declared != "" && declared != "application/octet-stream" {
		return ""
	}
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return ""
}

// reject records alert and returns it as a validation error
func (w *Widget) reject(code contextutils.ErrorCode, alert string) error {
	w.setAlert(alert)
	return contextutils.NewAppError(code, contextutils.SeverityWarn, "feedback rejected", alert)
}

func (w *Widget) setAlert(alert string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alert = alert
}
