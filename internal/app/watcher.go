package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/wishtrack/internal/backend"
	"github.com/five82/wishtrack/internal/query"
	"github.com/five82/wishtrack/internal/state"
)

// WatchStatus keeps the import status fresh until ctx is cancelled, calling
// onChange with every new result. Polling pauses while signed out and resumes
// on sign-in. It blocks.
func (a *App) WatchStatus(ctx context.Context, onChange func(query.Result[backend.JobStatus])) {
	q := a.Hoyo.StatusQuery()
	logger := a.Logger.With(zap.String("query", q.Key()))

	// Subscribe also fires on invalidation; log each failure once.
	var mu sync.Mutex
	logged := 0
	stop := q.Subscribe(func(res query.Result[backend.JobStatus]) {
		mu.Lock()
		report := res.LastError != nil && res.ConsecutiveFailures != logged
		logged = res.ConsecutiveFailures
		mu.Unlock()
		if report {
			logger.Warn("status poll failed",
				zap.Error(res.LastError),
				zap.Int("consecutive_failures", res.ConsecutiveFailures),
			)
		}
		if onChange != nil {
			onChange(res)
		}
	})
	defer stop()

	stopAuth := a.State.Subscribe(func(s state.ApplicationState) {
		logger.Info("authentication changed", zap.Bool("authenticated", s.IsAuthenticated))
	})
	defer stopAuth()

	q.Watch(ctx)
}
