package session

import (
	"sync"
	"time"

	"medcompanion/internal/appointments/flow"
	"medcompanion/pkg/logger"
)

const DefaultJanitorInterval = 5 * time.Minute

type entry struct {
	machine  *flow.Machine
	lastSeen time.Time
}

// Registry maps a user to at most one live booking machine. Holding a
// session is what marks a user as mid-booking.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*entry

	newMachine func() *flow.Machine
	now        func() time.Time
	idleTTL    time.Duration
	interval   time.Duration
	log        *logger.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

type Option func(*Registry)

func WithMachineFactory(factory func() *flow.Machine) Option {
	return func(r *Registry) {
		if factory != nil {
			r.newMachine = factory
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func WithJanitorInterval(interval time.Duration) Option {
	return func(r *Registry) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// NewRegistry builds an empty registry. With a positive idleTTL a janitor
// evicts sessions that have not been touched for that long; zero keeps
// sessions until they are deleted.
func NewRegistry(idleTTL time.Duration, log *logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		sessions:   make(map[int64]*entry),
		newMachine: func() *flow.Machine { return flow.NewMachine() },
		now:        time.Now,
		idleTTL:    idleTTL,
		interval:   DefaultJanitorInterval,
		log:        log,
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.idleTTL > 0 {
		go r.janitor()
	}
	return r
}

// GetOrCreate returns the user's machine, creating a fresh one when absent.
// Concurrent calls for one user observe the same machine.
func (r *Registry) GetOrCreate(userID int64) *flow.Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.sessions[userID]; ok && !r.expired(e, now) {
		e.lastSeen = now
		return e.machine
	}

	e := &entry{machine: r.newMachine(), lastSeen: now}
	r.sessions[userID] = e
	if r.log != nil {
		r.log.Debug("Booking session created", "user_id", userID)
	}
	return e.machine
}

func (r *Registry) Get(userID int64) (*flow.Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	e, ok := r.sessions[userID]
	if !ok {
		return nil, false
	}
	if r.expired(e, now) {
		delete(r.sessions, userID)
		return nil, false
	}
	e.lastSeen = now
	return e.machine, true
}

// Delete removes the user's session. Deleting an absent session is a no-op.
func (r *Registry) Delete(userID int64) {
	r.mu.Lock()
	_, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if ok && r.log != nil {
		r.log.Debug("Booking session deleted", "user_id", userID)
	}
}

// Contains reports whether a live session exists without touching it.
func (r *Registry) Contains(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[userID]
	return ok && !r.expired(e, r.now())
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Stop ends the janitor. Safe to call more than once.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	return r.idleTTL > 0 && now.Sub(e.lastSeen) > r.idleTTL
}

// evictIdle drops every expired session and returns how many were removed.
func (r *Registry) evictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	evicted := 0
	for userID, e := range r.sessions {
		if r.expired(e, now) {
			delete(r.sessions, userID)
			evicted++
		}
	}
	return evicted
}

func (r *Registry) janitor() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.evictIdle(); n > 0 && r.log != nil {
				r.log.Info("Evicted idle booking sessions", "count", n, "idle_ttl", r.idleTTL)
			}
		case <-r.stopCh:
			return
		}
	}
}
