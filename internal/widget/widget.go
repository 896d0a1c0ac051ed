// Package widget implements the end user feedback widget: a floating button,
// a modal form with live character counter and optional screenshot, and the
// single submit request to the feedback API.
package widget

import (
	"sync"
	"time"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/serviceinterfaces"
)

// Phase is the visible part of the modal
type Phase string

const (
	// PhaseForm shows the input form
	PhaseForm Phase = "form"
	// PhaseSuccess shows the confirmation after a successful submit
	PhaseSuccess Phase = "success"
)

// Options are the widget's dependencies and limits
type Options struct {
	API               serviceinterfaces.FeedbackAPI
	Logger            *observability.Logger
	Metrics           *observability.Metrics
	MaxMessageLength  int
	MaxScreenshotSize int64
	SuccessCloseDelay time.Duration
	// IdleTimeout lets a Registry drop widgets nobody requested for this long; zero keeps them
	IdleTimeout time.Duration
}

// OptionsFromConfig fills the limits from cfg
func OptionsFromConfig(cfg *config.Config, api serviceinterfaces.FeedbackAPI, logger *observability.Logger, metrics *observability.Metrics) Options {
	return Options{
		API:               api,
		Logger:            logger,
		Metrics:           metrics,
		MaxMessageLength:  cfg.Widget.MaxMessageLength,
		MaxScreenshotSize: cfg.Widget.MaxScreenshotSize,
		SuccessCloseDelay: cfg.Widget.SuccessCloseDelay,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// Widget holds the state of one user's feedback modal
type Widget struct {
	opts Options

	mu         sync.Mutex
	open       bool
	phase      Phase
	message    string
	screenshot string
	submitting bool
	alert      string
	closeTimer *time.Timer
}

// State is a copy of the widget state for rendering
type State struct {
	Open          bool
	Phase         Phase
	Message       string
	Counter       CharCounter
	Screenshot    string
	HasScreenshot bool
	Submitting    bool
	CanSubmit     bool
	Alert         string
}

// New creates a closed widget. Zero limits fall back to the defaults.
func New(opts Options) *Widget {
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = config.MaxMessageLength
	}
	if opts.MaxScreenshotSize <= 0 {
		opts.MaxScreenshotSize = config.MaxScreenshotSize
	}
	if opts.SuccessCloseDelay <= 0 {
		opts.SuccessCloseDelay = config.SuccessCloseDelay
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}
	return &Widget{opts: opts, phase: PhaseForm}
}

// MaxMessageLength returns the configured message limit
func (w *Widget) MaxMessageLength() int {
	return w.opts.MaxMessageLength
}

// MaxScreenshotSize returns the configured screenshot ceiling in bytes
func (w *Widget) MaxScreenshotSize() int64 {
	return w.opts.MaxScreenshotSize
}

// Open shows the modal
func (w *Widget) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = true
}

// Close hides the modal
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = false
}

// Toggle opens a closed modal and closes an open one
func (w *Widget) Toggle() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = !w.open
}

// IsOpen reports whether the modal is visible
func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// KeyEvent is a key press observed on the host page
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Shift bool
}

// HandleKey toggles the modal on Ctrl+Shift+F and reports whether the event was consumed
func (w *Widget) HandleKey(ev KeyEvent) bool {
	if ev.Ctrl && ev.Shift && ev.Key == "F" {
		w.Toggle()
		return true
	}
	return false
}

// Click targets inside the modal
const (
	TargetOverlay = "overlay"
	TargetModal   = "modal"
)

// OverlayClick closes the modal only when the overlay itself was clicked
func (w *Widget) OverlayClick(target string) {
	if target == TargetOverlay {
		w.Close()
	}
}

// Snapshot returns a copy of the current state
func (w *Widget) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Open:          w.open,
		Phase:         w.phase,
		Message:       w.message,
		Counter:       w.counterLocked(),
		Screenshot:    w.screenshot,
		HasScreenshot: w.screenshot != "",
		Submitting:    w.submitting,
		CanSubmit:     w.canSubmitLocked(),
		Alert:         w.alert,
	}
}

// TakeAlert returns the pending alert and clears it
func (w *Widget) TakeAlert() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	alert := w.alert
	w.alert = ""
	return alert
}

// Stop cancels a pending auto-close
func (w *Widget) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closeTimer != nil {
		w.closeTimer.Stop()
		w.closeTimer = nil
	}
}

// scheduleCloseLocked closes the modal and resets the phase after the success delay
func (w *Widget) scheduleCloseLocked() {
	if w.closeTimer != nil {
		w.closeTimer.Stop()
	}
	w.closeTimer = time.AfterFunc(w.opts.SuccessCloseDelay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.open = false
		w.phase = PhaseForm
		w.closeTimer = nil
	})
}
