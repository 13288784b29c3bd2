package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrDisabled is returned by Fetch and Refetch while the query's enablement
// condition is false.
var ErrDisabled = errors.New("query disabled")

// Fetcher performs the network call behind a query.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Options configure a Query.
type Options[T any] struct {
	Key       string
	StaleTime time.Duration
	Fetch     Fetcher[T]
	Enabled   Enabled
}

// Result is the cached state of a query.
type Result[T any] struct {
	Data                T
	HasData             bool
	UpdatedAt           time.Time
	LastError           error
	ErrorAt             time.Time
	ConsecutiveFailures int
	Stale               bool
}

// Query is a cached, enablement-gated read.
type Query[T any] struct {
	client    *Client
	key       string
	staleTime time.Duration
	fetch     Fetcher[T]
	enabled   Enabled
}

// New builds a query on c. A zero StaleTime means results are stale
// immediately, so every Fetch goes to the network.
func New[T any](c *Client, opts Options[T]) *Query[T] {
	return &Query[T]{
		client:    c,
		key:       opts.Key,
		staleTime: opts.StaleTime,
		fetch:     opts.Fetch,
		enabled:   opts.Enabled,
	}
}

// Key returns the cache key.
func (q *Query[T]) Key() string { return q.key }

// StaleTime returns the freshness window.
func (q *Query[T]) StaleTime() time.Duration { return q.staleTime }

// Enabled reports whether the query may currently execute.
func (q *Query[T]) Enabled() bool { return q.enabled.enabled() }

// Fetch returns the cached data while it is fresh. Otherwise it issues one
// request, shared with any concurrent caller, and caches the result.
func (q *Query[T]) Fetch(ctx context.Context) (T, error) {
	var zero T
	if !q.Enabled() {
		return zero, ErrDisabled
	}
	e := q.client.entry(q.key)
	if e.fresh(q.client.now(), q.staleTime) {
		q.client.metrics.hits.WithLabelValues(q.key).Inc()
		return q.Result().Data, nil
	}
	return q.execute(ctx)
}

// Refetch ignores freshness and issues a request, still honouring enablement.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	var zero T
	if !q.Enabled() {
		return zero, ErrDisabled
	}
	return q.execute(ctx)
}

// Invalidate marks the cached result stale.
func (q *Query[T]) Invalidate() {
	q.client.Invalidate(q.key)
}

// Result returns the cached state without fetching.
func (q *Query[T]) Result() Result[T] {
	e := q.client.entry(q.key)
	now := q.client.now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	res := Result[T]{
		HasData:             e.hasData,
		UpdatedAt:           e.updatedAt,
		LastError:           e.lastErr,
		ErrorAt:             e.errAt,
		ConsecutiveFailures: e.failures,
		Stale:               !e.hasData || e.invalidated || e.lastErr != nil || now.Sub(e.updatedAt) >= q.staleTime,
	}
	if data, ok := e.data.(T); ok {
		res.Data = data
	}
	return res
}

// Subscribe calls fn with the latest Result after every fetch, failure or
// invalidation of this key.
func (q *Query[T]) Subscribe(fn func(Result[T])) (unsubscribe func()) {
	return q.client.entry(q.key).listen(func() { fn(q.Result()) })
}

func (q *Query[T]) execute(ctx context.Context) (T, error) {
	var zero T
	if q.fetch == nil {
		return zero, fmt.Errorf("query %s: no fetcher", q.key)
	}

	// The shared request outlives any single caller's context.
	detached := context.WithoutCancel(ctx)
	ch := q.client.group.DoChan(q.key, func() (any, error) {
		started := time.Now()
		data, err := q.fetch(detached)
		q.client.metrics.observe(q.key, started, err)

		e := q.client.entry(q.key)
		if err != nil {
			e.fail(err, q.client.now())
			return nil, err
		}
		e.succeed(data, q.client.now())
		return data, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		data, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("query %s: cached value has type %T", q.key, res.Val)
		}
		return data, nil
	}
}

// Watch keeps the query fresh until ctx is cancelled. While enabled it fetches
// whenever the cached result is missing, invalidated or past its stale time.
// With a reactive enablement condition, a flip to disabled suspends polling and
// a flip back resumes it. A failed fetch is retried a full stale window later,
// or sooner on Invalidate. Failures are reported through Subscribe.
func (q *Query[T]) Watch(ctx context.Context) {
	wake := make(chan struct{}, 1)
	signal := func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}

	stopEnabled := q.enabled.subscribe(signal)
	defer stopEnabled()
	stopEntry := q.client.entry(q.key).listen(signal)
	defer stopEntry()

	logger := q.client.logger.With(zap.String("key", q.key))
	logger.Debug("watch started", zap.Bool("reactive", q.enabled.reactive()))

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	wasEnabled := q.Enabled()
	for {
		enabled := q.Enabled()
		if enabled != wasEnabled {
			logger.Info("query enablement changed", zap.Bool("enabled", enabled))
			wasEnabled = enabled
		}

		var timerC <-chan time.Time
		if enabled {
			if q.untilDue() <= 0 {
				if _, err := q.Fetch(ctx); err != nil && !errors.Is(err, ErrDisabled) {
					if ctx.Err() != nil {
						return
					}
					logger.Debug("query fetch failed", zap.Error(err))
				}
			}
			wait := maxDuration(q.untilDue(), minWatchInterval)
			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			return
		case <-wake:
		case <-timerC:
		}
	}
}

// untilDue returns how long until the watcher should fetch again. Zero or
// less means a fetch is due now.
func (q *Query[T]) untilDue() time.Duration {
	at, ok := q.client.entry(q.key).nextDue(maxDuration(q.staleTime, minWatchInterval))
	if !ok {
		return 0
	}
	return at.Sub(q.client.now())
}

// minWatchInterval keeps a zero stale time from spinning the watcher.
const minWatchInterval = 10 * time.Millisecond

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
