package backend

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// StartImportState is the outcome of asking the backend to start an import.
type StartImportState string

const (
	StartMissingAuthkey StartImportState = "MISSING_AUTHKEY"
	StartAuthkeyInvalid StartImportState = "AUTHKEY_INVALID"
	StartCreated        StartImportState = "CREATED"
)

// StartImportResponse mirrors GET /wishhistory.
type StartImportResponse struct {
	State StartImportState `json:"state"`
}

// Accepted reports whether the backend created the import job.
func (r StartImportResponse) Accepted() bool {
	return r.State == StartCreated
}

// JobState tags the WishHistoryJobStatus variants.
type JobState string

const (
	JobNoJob              JobState = "NO_JOB"
	JobQueued             JobState = "QUEUED"
	JobActive             JobState = "ACTIVE"
	JobCompletedRateLimit JobState = "COMPLETED_RATE_LIMIT"
	// JobNotAuthenticated is the generic marker returned while the session is
	// not signed in.
	JobNotAuthenticated JobState = "NOT_AUTHENTICATED"
)

// QueuedData is carried by QUEUED.
type QueuedData struct {
	Count int `json:"count"`
}

// CompletedData is carried by COMPLETED_RATE_LIMIT. Both fields keep the
// exact server values.
type CompletedData struct {
	CompletedTimestamp string  `json:"completedTimestamp"`
	RateLimitDuration  float64 `json:"rateLimitDuration"`
}

// CompletedAt parses CompletedTimestamp.
func (d CompletedData) CompletedAt() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, d.CompletedTimestamp)
}

// RateLimit returns RateLimitDuration, which the backend sends in seconds.
func (d CompletedData) RateLimit() time.Duration {
	return time.Duration(d.RateLimitDuration * float64(time.Second))
}

// NextImportAt returns when the rate limit on a completed job lifts.
func (d CompletedData) NextImportAt() (time.Time, error) {
	at, err := d.CompletedAt()
	if err != nil {
		return time.Time{}, err
	}
	return at.Add(d.RateLimit()), nil
}

// JobStatus mirrors GET /wishhistory/status. Exactly one of Queued and
// Completed is set, matching State.
type JobStatus struct {
	State     JobState
	Queued    *QueuedData
	Completed *CompletedData
}

// Count returns the queue position for QUEUED.
func (s JobStatus) Count() (int, bool) {
	if s.State != JobQueued || s.Queued == nil {
		return 0, false
	}
	return s.Queued.Count, true
}

type jobStatusWire struct {
	State JobState        `json:"state"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON decodes the tagged variant.
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var wire jobStatusWire
	if err := sonic.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := JobStatus{State: wire.State}
	switch wire.State {
	case JobNoJob, JobActive, JobNotAuthenticated:
	case JobQueued:
		var q QueuedData
		if err := decodeData(wire, &q); err != nil {
			return err
		}
		out.Queued = &q
	case JobCompletedRateLimit:
		var c CompletedData
		if err := decodeData(wire, &c); err != nil {
			return err
		}
		out.Completed = &c
	default:
		return fmt.Errorf("unknown job state %q", wire.State)
	}
	*s = out
	return nil
}

// MarshalJSON encodes the tagged variant in the backend's shape.
func (s JobStatus) MarshalJSON() ([]byte, error) {
	wire := jobStatusWire{State: s.State}
	var data any
	switch {
	case s.Queued != nil:
		data = s.Queued
	case s.Completed != nil:
		data = s.Completed
	}
	if data != nil {
		raw, err := sonic.Marshal(data)
		if err != nil {
			return nil, err
		}
		wire.Data = raw
	}
	return sonic.Marshal(wire)
}

func decodeData(wire jobStatusWire, dest any) error {
	if len(wire.Data) == 0 {
		return fmt.Errorf("job state %s: missing data", wire.State)
	}
	if err := sonic.Unmarshal(wire.Data, dest); err != nil {
		return fmt.Errorf("job state %s: %w", wire.State, err)
	}
	return nil
}

type providersWire struct {
	Providers []string `json:"providers"`
}
