package widget

import (
	"sync"
	"time"
)

type registryEntry struct {
	widget   *Widget
	lastSeen time.Time
}

// Registry keeps one widget per session key. With Options.IdleTimeout set,
// widgets not requested within the timeout are stopped and dropped.
type Registry struct {
	opts Options

	mu      sync.Mutex
	widgets map[string]*registryEntry

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRegistry creates an empty registry whose widgets share opts
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		opts:    opts,
		widgets: make(map[string]*registryEntry),
	}
	if opts.IdleTimeout > 0 {
		r.stop = make(chan struct{})
		r.done = make(chan struct{})
		go r.sweepLoop(opts.IdleTimeout / 2)
	}
	return r
}

// Get returns the widget for key, creating it on first use
func (r *Registry) Get(key string) *Widget {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.widgets[key]
	if !ok {
		e = &registryEntry{widget: New(r.opts)}
		r.widgets[key] = e
	}
	e.lastSeen = time.Now()
	return e.widget
}

// Forget drops the widget for key and cancels its timer
func (r *Registry) Forget(key string) {
	r.mu.Lock()
	e, ok := r.widgets[key]
	delete(r.widgets, key)
	r.mu.Unlock()
	if ok {
		e.widget.Stop()
	}
}

// Sweep stops and drops widgets last requested before now minus the idle
// timeout and returns how many it dropped
func (r *Registry) Sweep(now time.Time) int {
	if r.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-r.opts.IdleTimeout)

	r.mu.Lock()
	var idle []*Widget
	for key, e := range r.widgets {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e.widget)
			delete(r.widgets, key)
		}
	}
	r.mu.Unlock()

	for _, w := range idle {
		w.Stop()
	}
	return len(idle)
}

func (r *Registry) sweepLoop(interval time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep(time.Now())
		}
	}
}

// Close stops the sweeper and every widget
func (r *Registry) Close() {
	r.stopOnce.Do(func() {
		if r.stop != nil {
			close(r.stop)
			<-r.done
		}
	})

	r.mu.Lock()
	widgets := r.widgets
	r.widgets = make(map[string]*registryEntry)
	r.mu.Unlock()
	for _, e := range widgets {
		e.widget.Stop()
	}
}

// Len returns the number of live widgets
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.widgets)
}
