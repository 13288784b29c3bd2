package storage

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/wishtrack/internal/logging"
)

type receiver func(raw []byte, seq uint64)

// Hub connects sessions that share one Backend. A write by one session is
// saved and then delivered to every other session open on the same key.
type Hub struct {
	backend Backend
	logger  *logging.Logger

	mu   sync.Mutex
	seq  map[string]uint64
	subs map[string]map[string]receiver
}

// NewHub wraps backend. A nil logger discards output.
func NewHub(backend Backend, logger *logging.Logger) *Hub {
	return &Hub{
		backend: backend,
		logger:  logging.OrNop(logger).Named("storage"),
		seq:     make(map[string]uint64),
		subs:    make(map[string]map[string]receiver),
	}
}

// Backend returns the underlying storage.
func (h *Hub) Backend() Backend {
	return h.backend
}

// Close closes the backend.
func (h *Hub) Close() error {
	return h.backend.Close()
}

func (h *Hub) load(ctx context.Context, key string) ([]byte, uint64, error) {
	h.mu.Lock()
	seq := h.seq[key]
	h.mu.Unlock()

	raw, err := h.backend.Load(ctx, key)
	return raw, seq, err
}

// publish saves raw under key and hands it to every session but origin.
// Sequence numbers are assigned under the lock, so receivers can discard
// deliveries that arrive after a newer write.
func (h *Hub) publish(ctx context.Context, origin, key string, raw []byte) (uint64, error) {
	h.mu.Lock()
	if err := h.backend.Save(ctx, key, raw); err != nil {
		h.mu.Unlock()
		return 0, fmt.Errorf("save %s: %w", key, err)
	}
	h.seq[key]++
	seq := h.seq[key]
	targets := make([]receiver, 0, len(h.subs[key]))
	for id, fn := range h.subs[key] {
		if id != origin {
			targets = append(targets, fn)
		}
	}
	h.mu.Unlock()

	h.logger.Debug("persisted value written",
		zap.String("key", key),
		zap.Uint64("seq", seq),
		zap.Int("sessions", len(targets)),
	)
	for _, fn := range targets {
		fn(raw, seq)
	}
	return seq, nil
}

func (h *Hub) attach(key, session string, fn receiver) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[string]receiver)
	}
	h.subs[key][session] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[key], session)
	}
}
