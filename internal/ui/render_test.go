package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/five82/wishtrack/internal/backend"
	"github.com/five82/wishtrack/internal/index"
	"github.com/five82/wishtrack/internal/logtail"
	"github.com/five82/wishtrack/internal/wish"
)

func fixedRenderer(now time.Time) *Renderer {
	return NewRenderer("Slate").WithClock(func() time.Time { return now })
}

func TestJobStatus_Variants(t *testing.T) {
	r := fixedRenderer(time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC))

	tests := []struct {
		name   string
		status backend.JobStatus
		want   []string
	}{
		{"no job", backend.JobStatus{State: backend.JobNoJob}, []string{"No Job", "no import running"}},
		{"queued", backend.JobStatus{State: backend.JobQueued, Queued: &backend.QueuedData{Count: 5}}, []string{"Queued", "5 ahead"}},
		{"active", backend.JobStatus{State: backend.JobActive}, []string{"Active"}},
		{"not authenticated", backend.JobStatus{State: backend.JobNotAuthenticated}, []string{"Not Authenticated", "wishtrack login"}},
		{"rate limited", backend.JobStatus{
			State: backend.JobCompletedRateLimit,
			Completed: &backend.CompletedData{
				CompletedTimestamp: "2024-01-01T00:00:00Z",
				RateLimitDuration:  3600,
			},
		}, []string{"Completed Rate Limit", "next import in 30m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.JobStatus(tt.status)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Fatalf("JobStatus = %q, want substring %q", got, w)
				}
			}
		})
	}
}

func TestJobStatus_RateLimitElapsed(t *testing.T) {
	r := fixedRenderer(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	got := r.JobStatus(backend.JobStatus{
		State:     backend.JobCompletedRateLimit,
		Completed: &backend.CompletedData{CompletedTimestamp: "2024-01-01T00:00:00Z", RateLimitDuration: 60},
	})
	if !strings.Contains(got, "available now") {
		t.Fatalf("JobStatus = %q, want available now", got)
	}
}

func TestJobStatus_UnparsedTimestampShownRaw(t *testing.T) {
	r := fixedRenderer(time.Now())
	got := r.JobStatus(backend.JobStatus{
		State:     backend.JobCompletedRateLimit,
		Completed: &backend.CompletedData{CompletedTimestamp: "yesterday"},
	})
	if !strings.Contains(got, "finished yesterday") {
		t.Fatalf("JobStatus = %q, want raw timestamp", got)
	}
}

func TestStartImport(t *testing.T) {
	r := NewRenderer("")
	if got := r.StartImport(backend.StartImportResponse{State: backend.StartCreated}); !strings.Contains(got, "Created") {
		t.Fatalf("StartImport = %q", got)
	}
	if got := r.StartImport(backend.StartImportResponse{State: backend.StartAuthkeyInvalid}); !strings.Contains(got, "rejected") {
		t.Fatalf("StartImport = %q", got)
	}
}

func TestProviders(t *testing.T) {
	r := NewRenderer("")
	got := r.Providers([]string{"discord", "google"}, func(p string) string { return "http://x/auth/" + p })
	for _, w := range []string{"Providers", "discord", "http://x/auth/google"} {
		if !strings.Contains(got, w) {
			t.Fatalf("Providers = %q, want %q", got, w)
		}
	}
	if got := r.Providers(nil, nil); !strings.Contains(got, "no login providers") {
		t.Fatalf("Providers(nil) = %q", got)
	}
}

func TestIndex_GroupsAndOrders(t *testing.T) {
	d := index.Default()
	d.Character["zhongli"] = index.Character{Name: "Zhongli", Rarity: 5}
	d.Character["amber"] = index.Character{Rarity: 4}
	d.AchievementCategory["b"] = index.AchievementCategory{Name: "Second", Order: 2}
	d.AchievementCategory["a"] = index.AchievementCategory{Name: "First", Order: 1}

	got := NewRenderer("Kanagawa").Index(d)
	if !strings.Contains(got, "Characters (2)") || !strings.Contains(got, "Weapons (0)") {
		t.Fatalf("Index headings missing: %q", got)
	}
	if strings.Index(got, "amber") > strings.Index(got, "Zhongli") {
		t.Fatalf("characters not sorted by key: %q", got)
	}
	if strings.Index(got, "First") > strings.Index(got, "Second") {
		t.Fatalf("categories not sorted by order: %q", got)
	}
}

func TestWishes(t *testing.T) {
	r := NewRenderer("")
	got := r.Wishes([]wish.Wish{{Type: wish.TypeCharacter, Number: 12, Key: "keqing", Rarity: 5, Pity: 77}})
	for _, w := range []string{"12", "Character", "keqing", "pity 77"} {
		if !strings.Contains(got, w) {
			t.Fatalf("Wishes = %q, want %q", got, w)
		}
	}
	if got := r.Wishes(nil); !strings.Contains(got, "no wishes") {
		t.Fatalf("Wishes(nil) = %q", got)
	}
}

func TestError(t *testing.T) {
	if got := NewRenderer("").Error(errors.New("boom")); !strings.Contains(got, "error: ") || !strings.Contains(got, "boom") {
		t.Fatalf("Error = %q", got)
	}
}

func TestLogEntry(t *testing.T) {
	r := NewRenderer("")
	e, ok := logtail.Parse(`{"level":"warn","timestamp":"2024-05-01T12:00:00.000Z","logger":"app","message":"status poll failed","error":"boom"}`)
	if !ok {
		t.Fatal("Parse failed")
	}
	got := r.LogEntry(e)
	for _, w := range []string{"WARN", "[app]", "status poll failed", "error=boom"} {
		if !strings.Contains(got, w) {
			t.Fatalf("LogEntry = %q, want %q", got, w)
		}
	}

	raw, _ := logtail.Parse("plain text")
	if got := r.LogEntry(raw); got != "plain text" {
		t.Fatalf("LogEntry(raw) = %q", got)
	}
}
