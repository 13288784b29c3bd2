package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap/zapcore"

	"github.com/five82/wishtrack/internal/backend"
	"github.com/five82/wishtrack/internal/index"
	"github.com/five82/wishtrack/internal/logtail"
	"github.com/five82/wishtrack/internal/wish"
)

// Renderer formats command output with a theme.
type Renderer struct {
	styles Styles
	now    func() time.Time
}

// NewRenderer returns a renderer for the named theme.
func NewRenderer(themeName string) *Renderer {
	return &Renderer{styles: GetTheme(themeName).Styles(), now: time.Now}
}

// WithClock overrides the time source used for relative times.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

func (r *Renderer) badge(state string) string {
	return r.styles.StatusStyle(state).Render(titleCase(state))
}

// JobStatus renders one import status line.
func (r *Renderer) JobStatus(s backend.JobStatus) string {
	badge := r.badge(string(s.State))
	var detail string
	switch s.State {
	case backend.JobNoJob:
		detail = "no import running"
	case backend.JobQueued:
		if n, ok := s.Count(); ok {
			detail = fmt.Sprintf("%d ahead in queue", n)
		}
	case backend.JobActive:
		detail = "import in progress"
	case backend.JobCompletedRateLimit:
		detail = r.completed(s.Completed)
	case backend.JobNotAuthenticated:
		detail = "sign in with: wishtrack login <provider>"
	}
	if detail == "" {
		return badge
	}
	return badge + "  " + r.styles.MutedText.Render(detail)
}

func (r *Renderer) completed(c *backend.CompletedData) string {
	if c == nil {
		return ""
	}
	at, err := c.CompletedAt()
	if err != nil {
		return "finished " + c.CompletedTimestamp
	}
	line := "finished " + at.Local().Format(time.DateTime)
	next, _ := c.NextImportAt()
	if wait := next.Sub(r.now()); wait > 0 {
		return line + ", next import in " + humanizeDuration(wait)
	}
	return line + ", next import available now"
}

// StartImport renders the outcome of a start-import request.
func (r *Renderer) StartImport(res backend.StartImportResponse) string {
	var detail string
	switch res.State {
	case backend.StartCreated:
		detail = "import queued"
	case backend.StartMissingAuthkey:
		detail = "no authkey given"
	case backend.StartAuthkeyInvalid:
		detail = "authkey rejected, fetch a fresh wish history link"
	}
	if detail == "" {
		return r.badge(string(res.State))
	}
	return r.badge(string(res.State)) + "  " + r.styles.MutedText.Render(detail)
}

// Providers renders one login line per provider.
func (r *Renderer) Providers(names []string, loginURL func(string) string) string {
	if len(names) == 0 {
		return r.styles.MutedText.Render("no login providers")
	}
	width := 0
	for _, n := range names {
		width = max(width, len([]rune(n)))
	}
	lines := make([]string, 0, len(names)+1)
	lines = append(lines, r.styles.Heading.Render("Providers"))
	for _, n := range names {
		lines = append(lines, "  "+r.styles.Text.Render(padRight(n, width))+"  "+r.styles.AccentText.Render(loginURL(n)))
	}
	return strings.Join(lines, "\n")
}

// Navigate renders an instruction to open url in a browser.
func (r *Renderer) Navigate(action, url string) string {
	return r.styles.Text.Render(action+": open ") + r.styles.AccentText.Render(url)
}

// Index renders the reference-data index grouped by category.
func (r *Renderer) Index(d index.DataIndex) string {
	var b strings.Builder
	section := func(title string, n int) {
		fmt.Fprintf(&b, "%s %s\n", r.styles.Heading.Render(title), r.styles.FaintText.Render(fmt.Sprintf("(%d)", n)))
	}

	section("Characters", len(d.Character))
	for _, k := range sortedKeys(d.Character) {
		c := d.Character[k]
		fmt.Fprintf(&b, "  %s  %s\n", r.styles.RarityStyle(c.Rarity).Render(padRight(truncate(nameOr(c.Name, k), 32), 32)), r.stars(c.Rarity))
	}
	section("Weapons", len(d.Weapon))
	for _, k := range sortedKeys(d.Weapon) {
		w := d.Weapon[k]
		fmt.Fprintf(&b, "  %s  %s\n", r.styles.RarityStyle(w.Rarity).Render(padRight(truncate(nameOr(w.Name, k), 32), 32)), r.stars(w.Rarity))
	}
	section("Achievement categories", len(d.AchievementCategory))
	cats := sortedKeys(d.AchievementCategory)
	slices.SortStableFunc(cats, func(a, b string) int {
		return d.AchievementCategory[a].Order - d.AchievementCategory[b].Order
	})
	for _, k := range cats {
		fmt.Fprintf(&b, "  %s\n", r.styles.Text.Render(nameOr(d.AchievementCategory[k].Name, k)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Wishes renders wishes in pull order.
func (r *Renderer) Wishes(list []wish.Wish) string {
	if len(list) == 0 {
		return r.styles.MutedText.Render("no wishes")
	}
	lines := make([]string, 0, len(list))
	for _, w := range list {
		lines = append(lines, fmt.Sprintf("%s  %s  %s  %s  %s",
			r.styles.FaintText.Render(fmt.Sprintf("%5d", w.Number)),
			r.styles.MutedText.Render(w.Date.Format(time.DateTime)),
			r.styles.Text.Render(padRight(string(w.Type), 9)),
			r.styles.RarityStyle(w.Rarity).Render(padRight(truncate(w.Key, 28), 28)),
			r.styles.FaintText.Render(fmt.Sprintf("pity %d", w.Pity)),
		))
	}
	return strings.Join(lines, "\n")
}

// LogEntry renders one decoded log line. Undecoded lines pass through.
func (r *Renderer) LogEntry(e logtail.Entry) string {
	if e.Message == "" && e.Time.IsZero() {
		return e.Raw
	}
	parts := make([]string, 0, 4+len(e.Fields))
	if !e.Time.IsZero() {
		parts = append(parts, r.styles.FaintText.Render(e.Time.Local().Format(time.DateTime)))
	}
	parts = append(parts, r.levelStyle(e.Level).Render(strings.ToUpper(e.Level.String())))
	if e.Logger != "" {
		parts = append(parts, r.styles.AccentText.Render("["+e.Logger+"]"))
	}
	parts = append(parts, r.styles.Text.Render(e.Message))
	for _, k := range sortedKeys(e.Fields) {
		parts = append(parts, r.styles.MutedText.Render(k+"="+e.Fields[k]))
	}
	return strings.Join(parts, " ")
}

func (r *Renderer) levelStyle(l zapcore.Level) lipgloss.Style {
	switch {
	case l >= zapcore.ErrorLevel:
		return r.styles.DangerText
	case l == zapcore.WarnLevel:
		return r.styles.WarningText.Bold(true)
	case l == zapcore.InfoLevel:
		return r.styles.SuccessText
	default:
		return r.styles.InfoText
	}
}

// Error renders err for the terminal.
func (r *Renderer) Error(err error) string {
	return r.styles.DangerText.Render("error: ") + r.styles.Text.Render(err.Error())
}

func (r *Renderer) stars(rarity int) string {
	if rarity <= 0 {
		return ""
	}
	return r.styles.WarningText.Render(strings.Repeat("★", rarity))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func nameOr(name, key string) string {
	if strings.TrimSpace(name) == "" {
		return key
	}
	return name
}
