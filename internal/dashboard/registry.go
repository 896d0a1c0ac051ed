package dashboard

import (
	"sync"
	"time"
)

type registryEntry struct {
	dashboard *Dashboard
	lastSeen  time.Time
}

// Registry keeps one dashboard per admin session, keyed by bearer token.
// With Options.IdleTimeout set, dashboards no request asked for within the
// timeout are unmounted and dropped by a background sweeper.
type Registry struct {
	opts Options

	mu         sync.Mutex
	dashboards map[string]*registryEntry

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRegistry creates an empty registry whose dashboards share opts
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		opts:       opts,
		dashboards: make(map[string]*registryEntry),
	}
	if opts.IdleTimeout > 0 {
		r.stop = make(chan struct{})
		r.done = make(chan struct{})
		go r.sweepLoop(opts.IdleTimeout / 2)
	}
	return r
}

// Get returns the dashboard for key, creating an unmounted one on first use.
// Every call counts as activity for the idle sweep.
func (r *Registry) Get(key string) *Dashboard {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.dashboards[key]
	if !ok {
		e = &registryEntry{dashboard: New(r.opts)}
		r.dashboards[key] = e
	}
	e.lastSeen = time.Now()
	return e.dashboard
}

// Lookup returns the dashboard for key without creating one
func (r *Registry) Lookup(key string) (*Dashboard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.dashboards[key]
	if !ok {
		return nil, false
	}
	return e.dashboard, true
}

// Forget unmounts and drops the dashboard for key
func (r *Registry) Forget(key string) {
	r.mu.Lock()
	e, ok := r.dashboards[key]
	delete(r.dashboards, key)
	r.mu.Unlock()
	if ok {
		e.dashboard.Unmount()
	}
}

// Sweep unmounts and drops every dashboard last requested before now minus
// the idle timeout, and returns how many it dropped.
func (r *Registry) Sweep(now time.Time) int {
	if r.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-r.opts.IdleTimeout)

	r.mu.Lock()
	var idle []*Dashboard
	for key, e := range r.dashboards {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e.dashboard)
			delete(r.dashboards, key)
		}
	}
	r.mu.Unlock()

	for _, d := range idle {
		d.Unmount()
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

// Close stops the sweeper and unmounts every dashboard
func (r *Registry) Close() {
	r.stopOnce.Do(func() {
		if r.stop != nil {
			close(r.stop)
			<-r.done
		}
	})

	r.mu.Lock()
	dashboards := r.dashboards
	r.dashboards = make(map[string]*registryEntry)
	r.mu.Unlock()
	for _, e := range dashboards {
		e.dashboard.Unmount()
	}
}

// Len returns the number of known dashboards
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dashboards)
}
