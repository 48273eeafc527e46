// Package timers provides cancellable wall-clock timers tied to the
// simulation's running state. Pausing the simulation freezes every pending
// timer with its remaining duration; resuming re-arms them. This replaces
// bare time.AfterFunc calls, which would keep firing while paused.
package timers

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type deferred struct {
	id        string
	fn        func()
	timer     *time.Timer
	deadline  time.Time
	remaining time.Duration // valid while paused
}

// Registry tracks pending deferred callbacks
type Registry struct {
	mu      sync.Mutex
	pending map[string]*deferred
	paused  bool
	stopped bool
	log     zerolog.Logger
}

// NewRegistry creates an empty timer registry
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		pending: make(map[string]*deferred),
		log:     log.With().Str("component", "timers").Logger(),
	}
}

// Schedule registers fn to run after d. Scheduling while paused records
// the full duration and arms the timer on Resume. A duplicate id replaces
// the previous timer.
func (r *Registry) Schedule(id string, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	if prev, ok := r.pending[id]; ok && prev.timer != nil {
		prev.timer.Stop()
	}

	def := &deferred{id: id, fn: fn}
	r.pending[id] = def
	if r.paused {
		def.remaining = d
		return
	}
	r.arm(def, d)
}

// arm starts the wall-clock timer. Caller holds the lock.
func (r *Registry) arm(def *deferred, d time.Duration) {
	def.deadline = time.Now().Add(d)
	def.timer = time.AfterFunc(d, func() {
		r.fire(def)
	})
}

func (r *Registry) fire(def *deferred) {
	r.mu.Lock()
	current, ok := r.pending[def.id]
	// The timer may have been cancelled, replaced, or frozen between the
	// callback firing and acquiring the lock.
	if !ok || current != def || r.paused || r.stopped {
		r.mu.Unlock()
		return
	}
	delete(r.pending, def.id)
	r.mu.Unlock()

	def.fn()
}

// Cancel drops a pending timer. Unknown ids are no-ops.
func (r *Registry) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.pending[id]
	if !ok {
		return
	}
	if def.timer != nil {
		def.timer.Stop()
	}
	delete(r.pending, id)
}

// Pause freezes all pending timers, recording their remaining durations
func (r *Registry) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused || r.stopped {
		return
	}
	r.paused = true
	now := time.Now()
	for _, def := range r.pending {
		if def.timer != nil {
			def.timer.Stop()
			def.timer = nil
		}
		def.remaining = def.deadline.Sub(now)
		if def.remaining < 0 {
			def.remaining = 0
		}
	}
	r.log.Debug().Int("pending", len(r.pending)).Msg("Timers paused")
}

// Resume re-arms all frozen timers with their remaining durations
func (r *Registry) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.paused || r.stopped {
		return
	}
	r.paused = false
	for _, def := range r.pending {
		r.arm(def, def.remaining)
	}
	r.log.Debug().Int("pending", len(r.pending)).Msg("Timers resumed")
}

// Stop cancels everything; the registry accepts no further work
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	for id, def := range r.pending {
		if def.timer != nil {
			def.timer.Stop()
		}
		delete(r.pending, id)
	}
}

// Pending returns the number of pending timers
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
