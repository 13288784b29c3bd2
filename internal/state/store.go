package state

import (
	"sync"
)

// Value is an owned, subscribable container for a single piece of shared
// state. The zero value is not usable; construct with NewValue.
type Value[T any] struct {
	mu     sync.RWMutex
	value  T
	clone  func(T) T
	nextID int
	subs   map[int]func(T)
}

// NewValue returns a container seeded with initial. clone, when non-nil, is
// used to copy values crossing the container boundary so callers never share
// maps or slices with the stored value.
func NewValue[T any](initial T, clone func(T) T) *Value[T] {
	v := &Value[T]{clone: clone, subs: make(map[int]func(T))}
	v.value = v.copy(initial)
	return v
}

// Get returns a copy of the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.copy(v.value)
}

// Set replaces the stored value and notifies subscribers.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	v.value = v.copy(next)
	current, subs := v.snapshotLocked()
	v.mu.Unlock()

	notify(subs, current, v.copy)
}

// Update applies fn to a copy of the current value and stores the result.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	v.value = v.copy(fn(v.copy(v.value)))
	current, subs := v.snapshotLocked()
	v.mu.Unlock()

	notify(subs, current, v.copy)
}

// Subscribe registers fn for change notifications and returns a function that
// removes it. fn runs on the goroutine that made the change, outside the lock.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}

func (v *Value[T]) snapshotLocked() (T, []func(T)) {
	subs := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	return v.value, subs
}

func (v *Value[T]) copy(in T) T {
	if v.clone == nil {
		return in
	}
	return v.clone(in)
}

func notify[T any](subs []func(T), value T, copyFn func(T) T) {
	for _, fn := range subs {
		fn(copyFn(value))
	}
}
