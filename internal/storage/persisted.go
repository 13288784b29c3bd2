package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Persisted is a value mirrored to a Backend key. Every write is saved and
// then broadcast to the other sessions open on the same Hub and key; the last
// write wins.
type Persisted[T any] struct {
	hub     *Hub
	key     string
	session string
	def     T
	clone   func(T) T
	detach  func()

	writeMu sync.Mutex

	mu     sync.RWMutex
	value  T
	seq    uint64
	nextID int
	subs   map[int]func(T)
}

// Open attaches a session to key. A missing key starts at def; an
// undecodable one is logged and also starts at def. clone, when non-nil,
// copies values crossing the boundary and may normalise decoded values.
func Open[T any](ctx context.Context, hub *Hub, key string, def T, clone func(T) T) (*Persisted[T], error) {
	p := &Persisted[T]{
		hub:     hub,
		key:     key,
		session: uuid.NewString(),
		clone:   clone,
		subs:    make(map[int]func(T)),
	}
	p.def = p.copy(def)
	p.value = p.copy(def)

	p.detach = hub.attach(key, p.session, p.receive)
	if err := p.Refresh(ctx); err != nil {
		p.detach()
		return nil, err
	}
	return p, nil
}

// Key returns the backend key.
func (p *Persisted[T]) Key() string { return p.key }

// Session returns the identifier of this session on the hub.
func (p *Persisted[T]) Session() string { return p.session }

// Get returns a copy of the current value.
func (p *Persisted[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.copy(p.value)
}

// Set saves v and broadcasts it. The local value changes only after the save
// succeeds.
func (p *Persisted[T]) Set(ctx context.Context, v T) error {
	p.writeMu.Lock()
	seq, err := p.write(ctx, v)
	p.writeMu.Unlock()
	if err != nil {
		return err
	}
	p.apply(p.copy(v), seq)
	return nil
}

// Update applies fn to a copy of the current value and saves the result.
// Updates from one session are serialised; sessions still race on
// last-writer-wins.
func (p *Persisted[T]) Update(ctx context.Context, fn func(T) T) error {
	p.writeMu.Lock()
	next := fn(p.Get())
	seq, err := p.write(ctx, next)
	p.writeMu.Unlock()
	if err != nil {
		return err
	}
	p.apply(p.copy(next), seq)
	return nil
}

// Refresh reloads the value from the backend.
func (p *Persisted[T]) Refresh(ctx context.Context) error {
	raw, seq, err := p.hub.load(ctx, p.key)
	switch {
	case errors.Is(err, ErrNotFound):
		p.apply(p.copy(p.def), seq)
		return nil
	case err != nil:
		return fmt.Errorf("load %s: %w", p.key, err)
	}

	v, err := p.decode(raw)
	if err != nil {
		p.hub.logger.Warn("stored value unreadable, using default",
			zap.String("key", p.key),
			zap.Error(err),
		)
		v = p.copy(p.def)
	}
	p.apply(v, seq)
	return nil
}

// Subscribe registers fn for changes from any session and returns a function
// that removes it. fn runs outside the lock.
func (p *Persisted[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Close detaches the session from the hub. The backend stays open.
func (p *Persisted[T]) Close() {
	p.detach()
}

func (p *Persisted[T]) write(ctx context.Context, v T) (uint64, error) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", p.key, err)
	}
	return p.hub.publish(ctx, p.session, p.key, raw)
}

func (p *Persisted[T]) receive(raw []byte, seq uint64) {
	v, err := p.decode(raw)
	if err != nil {
		p.hub.logger.Warn("broadcast value unreadable",
			zap.String("key", p.key),
			zap.Error(err),
		)
		return
	}
	p.apply(v, seq)
}

func (p *Persisted[T]) decode(raw []byte) (T, error) {
	var v T
	if err := sonic.Unmarshal(raw, &v); err != nil {
		return v, err
	}
	return p.copy(v), nil
}

// apply stores v unless a newer write has already been applied.
func (p *Persisted[T]) apply(v T, seq uint64) {
	p.mu.Lock()
	if seq < p.seq {
		p.mu.Unlock()
		return
	}
	p.seq = seq
	p.value = v
	subs := make([]func(T), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(p.copy(v))
	}
}

func (p *Persisted[T]) copy(v T) T {
	if p.clone == nil {
		return v
	}
	return p.clone(v)
}
