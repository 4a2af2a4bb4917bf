// Package progress tracks live generation runs so streaming clients can
// attach to one by run id.
package progress

import (
	"sync"
	"time"

	applogger "StockScribe/pkg/logger"
)

// DefaultRetention keeps a finished run readable long enough for a client
// that connects after the run completed.
const DefaultRetention = 2 * time.Minute

type run struct {
	col  *applogger.RunCollector
	done bool
}

// Registry maps run ids to their event collectors. One registry per process.
type Registry struct {
	mu        sync.Mutex
	runs      map[string]*run
	retention time.Duration
	after     func(time.Duration, func()) // test seam over time.AfterFunc
}

type RegistryOption func(*Registry)

// WithRetention overrides how long finished runs stay readable.
func WithRetention(d time.Duration) RegistryOption {
	return func(r *Registry) { r.retention = d }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		runs:      make(map[string]*run),
		retention: DefaultRetention,
		after:     func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start registers a collector for runID and returns it. Calling Start twice
// with the same id returns the first collector.
func (r *Registry) Start(runID string) *applogger.RunCollector {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.runs[runID]; ok {
		return e.col
	}
	e := &run{col: applogger.NewRunCollector()}
	r.runs[runID] = e
	return e.col
}

// Get returns the collector for runID and whether the run has finished.
func (r *Registry) Get(runID string) (col *applogger.RunCollector, done, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.runs[runID]
	if !ok {
		return nil, false, false
	}
	return e.col, e.done, true
}

// Finish closes the run's collector and schedules its eviction. Safe to call
// for unknown ids.
func (r *Registry) Finish(runID string) {
	r.mu.Lock()
	e, ok := r.runs[runID]
	if !ok || e.done {
		r.mu.Unlock()
		return
	}
	e.done = true
	r.mu.Unlock()

	e.col.Close()
	r.after(r.retention, func() {
		r.mu.Lock()
		delete(r.runs, runID)
		r.mu.Unlock()
	})
}

// Len reports how many runs are registered, finished ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}
