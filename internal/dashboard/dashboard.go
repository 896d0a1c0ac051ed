// Package dashboard implements the admin triage dashboard: a cached feedback
// list with stats and client side filters, a detail view, the admin actions
// and a background poller tied to Mount and Unmount.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/serviceinterfaces"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"go.opentelemetry.io/otel/trace"
)

// List error texts
const (
	loadErrorFallback = "Fehler beim Laden der Feedbacks"
	apiErrorPrefix    = "API Fehler: "
)

// Options are the dashboard's dependencies
type Options struct {
	API          serviceinterfaces.FeedbackAPI
	Logger       *observability.Logger
	Metrics      *observability.Metrics
	PollInterval time.Duration
	// IdleTimeout lets a Registry unmount dashboards nobody requested for this long; zero keeps them
	IdleTimeout time.Duration
	// OnRefresh, if set, is called after every list load with the new stats or the load error
	OnRefresh func(stats Stats, err error)
}

// OptionsFromConfig fills the poll interval from cfg
func OptionsFromConfig(cfg *config.Config, api serviceinterfaces.FeedbackAPI, logger *observability.Logger, metrics *observability.Metrics) Options {
	return Options{
		API:          api,
		Logger:       logger,
		Metrics:      metrics,
		PollInterval: cfg.Dashboard.PollInterval,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

// Stats are the four counters above the list
type Stats struct {
	Total    int
	Neu      int
	Waiting  int
	Resolved int
}

// Dashboard is one admin's view over the feedback list
type Dashboard struct {
	opts Options

	mu        sync.Mutex
	items     []models.FeedbackItem
	loaded    bool
	stats     Stats
	listError string
	filters   Filters
	detailID  string
	solutions map[string]*models.AISolution

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// New creates an unmounted dashboard
func New(opts Options) *Dashboard {
	if opts.PollInterval <= 0 {
		opts.PollInterval = config.PollInterval
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}
	return &Dashboard{
		opts:      opts,
		solutions: make(map[string]*models.AISolution),
	}
}

// Mount loads the list and starts polling. Polling keeps the credentials of ctx
// but not its cancellation; it runs until Unmount. Mounting twice does not start a
// second poller.
func (d *Dashboard) Mount(ctx context.Context) error {
	d.startPolling(ctx)
	return d.Load(ctx)
}

// Unmount stops polling and waits for the poller to exit
func (d *Dashboard) Unmount() {
	d.pollMu.Lock()
	cancel, done := d.pollCancel, d.pollDone
	d.pollCancel, d.pollDone = nil, nil
	d.pollMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// IsMounted reports whether the poller is running
func (d *Dashboard) IsMounted() bool {
	d.pollMu.Lock()
	defer d.pollMu.Unlock()
	return d.pollCancel != nil
}

func (d *Dashboard) startPolling(ctx context.Context) {
	d.pollMu.Lock()
	defer d.pollMu.Unlock()
	if d.pollCancel != nil {
		return
	}

	pollCtx := trace.ContextWithSpanContext(context.WithoutCancel(ctx), trace.SpanContext{})
	pollCtx, cancel := context.WithCancel(pollCtx)
	done := make(chan struct{})
	d.pollCancel, d.pollDone = cancel, done

	go d.pollLoop(pollCtx, done)
}

func (d *Dashboard) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()

	d.opts.Logger.Debug(ctx, "Dashboard polling started", map[string]interface{}{
		"interval": d.opts.PollInterval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			d.opts.Logger.Debug(ctx, "Dashboard polling stopped", nil)
			return
		case <-ticker.C:
			d.opts.Metrics.RecordPollTick(ctx)
			tickCtx := contextutils.WithRequestID(ctx, "")
			if err := d.Load(tickCtx); err != nil && ctx.Err() == nil {
				d.opts.Logger.Warn(ctx, "Dashboard poll failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// Load fetches the full list and replaces the cache. On failure the list error is
// set and the cache and stats keep their previous values.
func (d *Dashboard) Load(ctx context.Context) (err error) {
	ctx, span := observability.TraceDashboardFunction(ctx, "load")
	defer observability.FinishSpan(span, &err)

	items, err := d.opts.API.List(ctx)

	d.mu.Lock()
	if err != nil {
		d.listError = loadErrorMessage(err)
	} else {
		d.items = items
		d.loaded = true
		d.listError = ""
		d.stats = computeStats(items)
	}
	stats := d.stats
	d.mu.Unlock()

	if err == nil {
		span.SetAttributes(observability.AttributeItemCount(len(items)))
	}
	if d.opts.OnRefresh != nil {
		d.opts.OnRefresh(stats, err)
	}
	return err
}

// loadErrorMessage is the text shown in the list area after a failed load
func loadErrorMessage(err error) string {
	switch contextutils.GetErrorCode(err) {
	case contextutils.ErrorCodeServiceUnavailable, contextutils.ErrorCodeTimeout,
		contextutils.ErrorCodeResponseInvalid, contextutils.ErrorCodeInternalError:
		return loadErrorFallback
	}
	if detail := contextutils.UserMessage(err, ""); detail != "" {
		return apiErrorPrefix + detail
	}
	return loadErrorFallback
}

// computeStats counts over the full, unfiltered list
func computeStats(items []models.FeedbackItem) Stats {
	stats := Stats{Total: len(items)}
	for i := range items {
		switch {
		case items[i].Status == models.StatusNeu:
			stats.Neu++
		case models.IsWaiting(items[i].Status):
			stats.Waiting++
		case items[i].Status == models.StatusGeloest:
			stats.Resolved++
		}
	}
	return stats
}

// Stats returns the counters of the last successful load
func (d *Dashboard) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// ListError returns the error shown in place of the list, or ""
func (d *Dashboard) ListError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listError
}

// Loaded reports whether at least one load succeeded
func (d *Dashboard) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// Items returns a copy of the cached list in server order
func (d *Dashboard) Items() []models.FeedbackItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.FeedbackItem, len(d.items))
	copy(out, d.items)
	return out
}

func (d *Dashboard) findLocked(id string) (models.FeedbackItem, bool) {
	for i := range d.items {
		if d.items[i].ID == id {
			return d.items[i], true
		}
	}
	return models.FeedbackItem{}, false
}
