package backend

import (
	"context"
	"net/url"
	"time"

	"github.com/five82/wishtrack/internal/query"
	"github.com/five82/wishtrack/internal/state"
)

const (
	// StatusQueryKey is the cache key of the import job status query.
	StatusQueryKey = "fetchHoyoWishhistoryStatus"
	// StartImportKey labels the start import mutation.
	StartImportKey = "startHoyoWishhistory"
	// DefaultStaleTime is the freshness window of the status query.
	DefaultStaleTime = time.Hour
)

// HoyoService starts wish history imports and polls their status.
type HoyoService struct {
	client *Client
	start  *query.Mutation[string, StartImportResponse]
	status *query.Query[JobStatus]
}

type hoyoConfig struct {
	staleTime time.Duration
	static    bool
}

// HoyoOption customises NewHoyoService.
type HoyoOption func(*hoyoConfig)

// WithStaleTime overrides DefaultStaleTime.
func WithStaleTime(d time.Duration) HoyoOption {
	return func(c *hoyoConfig) {
		if d > 0 {
			c.staleTime = d
		}
	}
}

// WithStaticEnablement evaluates the authentication gate once, when the
// service is built, instead of following the application state.
func WithStaticEnablement() HoyoOption {
	return func(c *hoyoConfig) { c.static = true }
}

// NewHoyoService wires the import mutation and the status query onto queries.
// The status query only runs while app is authenticated.
func NewHoyoService(client *Client, queries *query.Client, app *state.Application, opts ...HoyoOption) *HoyoService {
	cfg := hoyoConfig{staleTime: DefaultStaleTime}
	for _, o := range opts {
		o(&cfg)
	}

	enabled := query.EnabledFrom[state.ApplicationState](app, func(s state.ApplicationState) bool {
		return s.IsAuthenticated
	})
	if cfg.static {
		enabled = query.EnabledOnce(app.IsAuthenticated)
	}

	s := &HoyoService{client: client}
	s.start = query.NewMutation(queries, StartImportKey, s.fetchStartImport)
	s.status = query.New(queries, query.Options[JobStatus]{
		Key:       StatusQueryKey,
		StaleTime: cfg.staleTime,
		Fetch:     s.fetchStatus,
		Enabled:   enabled,
	})
	return s
}

// StartImport asks the backend to import the wish history behind authkey.
// Rejections come back as StartImportResponse states, not errors.
func (s *HoyoService) StartImport(ctx context.Context, authkey string) (StartImportResponse, error) {
	return s.start.Mutate(ctx, authkey)
}

// StartImportResult returns the outcome of the latest StartImport.
func (s *HoyoService) StartImportResult() query.MutationResult[StartImportResponse] {
	return s.start.Result()
}

// StatusQuery exposes the cached job status query.
func (s *HoyoService) StatusQuery() *query.Query[JobStatus] {
	return s.status
}

// Status returns the job status, served from cache while fresh.
func (s *HoyoService) Status(ctx context.Context) (JobStatus, error) {
	return s.status.Fetch(ctx)
}

func (s *HoyoService) fetchStartImport(ctx context.Context, authkey string) (StartImportResponse, error) {
	var resp StartImportResponse
	if err := s.client.get(ctx, "/wishhistory", url.Values{"authkey": {authkey}}, &resp); err != nil {
		return StartImportResponse{}, err
	}
	return resp, nil
}

func (s *HoyoService) fetchStatus(ctx context.Context) (JobStatus, error) {
	var status JobStatus
	if err := s.client.get(ctx, "/wishhistory/status", nil, &status); err != nil {
		if IsUnauthenticated(err) {
			return JobStatus{State: JobNotAuthenticated}, nil
		}
		return JobStatus{}, err
	}
	return status, nil
}
