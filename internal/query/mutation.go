package query

import (
	"context"
	"sync"
	"time"
)

// MutationResult is the outcome of the latest Mutate call.
type MutationResult[Out any] struct {
	Data      Out
	Err       error
	Pending   bool
	UpdatedAt time.Time
}

// Mutation is a fire-once write. It never retries and never touches the query
// cache; callers that want fresh reads afterwards invalidate explicitly.
type Mutation[In, Out any] struct {
	client *Client
	key    string
	fn     func(ctx context.Context, in In) (Out, error)

	mu   sync.RWMutex
	last MutationResult[Out]
}

// NewMutation wraps fn. key labels metrics only.
func NewMutation[In, Out any](c *Client, key string, fn func(ctx context.Context, in In) (Out, error)) *Mutation[In, Out] {
	return &Mutation[In, Out]{client: c, key: key, fn: fn}
}

// Mutate runs the mutation once and records its outcome.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.last.Pending = true
	m.mu.Unlock()

	started := time.Now()
	out, err := m.fn(ctx, in)
	m.client.metrics.observe(m.key, started, err)

	m.mu.Lock()
	m.last = MutationResult[Out]{Data: out, Err: err, UpdatedAt: m.client.now()}
	m.mu.Unlock()
	return out, err
}

// Result returns the outcome of the latest call.
func (m *Mutation[In, Out]) Result() MutationResult[Out] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}
