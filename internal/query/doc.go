// Package query is a small query cache for backend reads and writes.
//
// # Overview
//
// A Client owns one cache slot per key. A Query[T] configures a read on a key
// with a fetcher, a stale time and an enablement condition. A Mutation wraps a
// fire-once write.
//
// # Freshness
//
// Fetch serves the cached data while it is younger than the stale time and
// has not been invalidated. Once stale, the next Fetch issues exactly one
// request; concurrent callers share it through singleflight. Refetch and
// Invalidate force re-evaluation.
//
// Failures are recorded on the Result (LastError, ConsecutiveFailures) while
// previously cached data is kept. Nothing retries.
//
// # Enablement
//
//	Always()              always enabled
//	EnabledOnce(eval)     evaluated once at construction
//	EnabledFrom(src, fn)  re-evaluated on every read; watchers wake on change
//
// A disabled query returns ErrDisabled without touching the network.
//
// # Watching
//
// Watch runs the background polling loop:
//
//	for {
//		if enabled && due  → Fetch
//		sleep until due, or until the enablement source or cache entry changes
//	}
//
// With EnabledFrom, flipping the source to false suspends polling and flipping
// it back resumes it on the same Query value.
//
// # Metrics
//
//	wishtrack_query_fetches_total{key,result}
//	wishtrack_query_cache_hits_total{key}
//	wishtrack_query_fetch_duration_seconds{key}
package query
