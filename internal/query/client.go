package query

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/five82/wishtrack/internal/logging"
)

// Client owns the query cache. Queries built on the same Client and key share
// one cache slot and one in-flight request.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	now     func() time.Time
	logger  *logging.Logger
	metrics *metrics
}

type clientConfig struct {
	now        func() time.Time
	logger     *logging.Logger
	registerer prometheus.Registerer
}

// Option customises NewClient.
type Option func(*clientConfig)

// WithClock replaces time.Now for staleness checks.
func WithClock(now func() time.Time) Option { return func(c *clientConfig) { c.now = now } }

// WithLogger sets the logger. Default: no-op.
func WithLogger(l *logging.Logger) Option { return func(c *clientConfig) { c.logger = l } }

// WithRegisterer sets where metrics are registered. Default: a private registry.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(c *clientConfig) { c.registerer = r }
}

// NewClient returns an empty query cache.
func NewClient(opts ...Option) *Client {
	cfg := clientConfig{now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.registerer == nil {
		cfg.registerer = prometheus.NewRegistry()
	}
	return &Client{
		entries: make(map[string]*entry),
		now:     cfg.now,
		logger:  logging.OrNop(cfg.logger).Named("query"),
		metrics: newMetrics(cfg.registerer),
	}
}

// Invalidate marks the cached result for key stale. The next Fetch issues a
// request and running watchers re-evaluate immediately.
func (c *Client) Invalidate(key string) {
	c.entry(key).invalidate()
}

// Remove drops the cached result for key. Watchers and subscribers on key
// keep running and see the next result.
func (c *Client) Remove(key string) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		e.reset()
	}
}

func (c *Client) entry(key string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{listeners: make(map[int]func())}
		c.entries[key] = e
	}
	return e
}

type metrics struct {
	fetches  *prometheus.CounterVec
	hits     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wishtrack_query_fetches_total",
				Help: "Network fetches issued by queries and mutations",
			},
			[]string{"key", "result"},
		),
		hits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wishtrack_query_cache_hits_total",
				Help: "Query reads served from a fresh cached result",
			},
			[]string{"key"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wishtrack_query_fetch_duration_seconds",
				Help:    "Duration of query and mutation fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"key"},
		),
	}
}

func (m *metrics) observe(key string, started time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(key, result).Inc()
	m.duration.WithLabelValues(key).Observe(time.Since(started).Seconds())
}
