package query

import (
	"sync"
	"time"
)

// entry is the single shared slot behind a query key.
type entry struct {
	mu          sync.RWMutex
	data        any
	hasData     bool
	updatedAt   time.Time
	lastErr     error
	errAt       time.Time
	failures    int
	invalidated bool

	nextID    int
	listeners map[int]func()
}

// fresh reports whether cached data may be served without a request.
func (e *entry) fresh(now time.Time, staleTime time.Duration) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hasData && !e.invalidated && e.lastErr == nil && now.Sub(e.updatedAt) < staleTime
}

// nextDue returns when a watcher should fetch again: when cached data
// expires, or a full stale window after the latest failure. ok is false when a
// fetch is due now. An invalidation is consumed by the next fetch, whether it
// succeeds or fails.
func (e *entry) nextDue(staleTime time.Duration) (at time.Time, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.invalidated {
		return time.Time{}, false
	}
	if e.lastErr != nil {
		return e.errAt.Add(staleTime), true
	}
	if !e.hasData {
		return time.Time{}, false
	}
	return e.updatedAt.Add(staleTime), true
}

func (e *entry) succeed(data any, at time.Time) {
	e.mu.Lock()
	e.data = data
	e.hasData = true
	e.updatedAt = at
	e.lastErr = nil
	e.failures = 0
	e.invalidated = false
	listeners := e.listenersLocked()
	e.mu.Unlock()
	fire(listeners)
}

// fail records err while keeping previously cached data.
func (e *entry) fail(err error, at time.Time) {
	e.mu.Lock()
	e.lastErr = err
	e.errAt = at
	e.failures++
	e.invalidated = false
	listeners := e.listenersLocked()
	e.mu.Unlock()
	fire(listeners)
}

func (e *entry) invalidate() {
	e.mu.Lock()
	e.invalidated = true
	listeners := e.listenersLocked()
	e.mu.Unlock()
	fire(listeners)
}

// reset drops the cached result but keeps listeners, so running watchers and
// subscribers stay attached to the key.
func (e *entry) reset() {
	e.mu.Lock()
	e.data = nil
	e.hasData = false
	e.updatedAt = time.Time{}
	e.lastErr = nil
	e.errAt = time.Time{}
	e.failures = 0
	e.invalidated = false
	listeners := e.listenersLocked()
	e.mu.Unlock()
	fire(listeners)
}

func (e *entry) listen(fn func()) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

func (e *entry) listenersLocked() []func() {
	out := make([]func(), 0, len(e.listeners))
	for _, fn := range e.listeners {
		out = append(out, fn)
	}
	return out
}

func fire(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
