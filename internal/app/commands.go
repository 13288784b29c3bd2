package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/five82/wishtrack/internal/backend"
	"github.com/five82/wishtrack/internal/config"
	"github.com/five82/wishtrack/internal/index"
	"github.com/five82/wishtrack/internal/logtail"
	"github.com/five82/wishtrack/internal/prefs"
	"github.com/five82/wishtrack/internal/query"
	"github.com/five82/wishtrack/internal/ui"
	"github.com/five82/wishtrack/internal/wish"
)

// Usage lists the subcommands.
const Usage = `usage: wishtrack [flags] <command> [args]

commands:
  providers                 list login providers
  login [provider]          print the login URL (remembers the provider)
  logout                    sign out and print the logout URL
  import -authkey KEY       start a wish history import
  status [-watch]           show the import job status
  index show                show the local reference-data index
  index merge FILE          merge reference data from a JSON file
  wishes FILE [-banner B]   list wishes from an export in pull order
  theme [name]              show or set the color theme
  logs [-n N] [-level L]    show recent log entries`

// Run executes one subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command", ErrUsage)
	}
	cmd, rest := args[0], args[1:]
	a.Logger.Debug("command", zap.String("name", cmd), zap.Strings("args", redactArgs(rest)))

	switch cmd {
	case "providers":
		return a.providers(ctx)
	case "login":
		return a.login(rest)
	case "logout":
		return a.logout()
	case "import":
		return a.startImport(ctx, rest)
	case "status":
		return a.status(ctx, rest)
	case "index":
		return a.index(ctx, rest)
	case "wishes":
		return a.wishes(rest)
	case "theme":
		return a.theme(rest)
	case "logs":
		return a.logs(rest)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) providers(ctx context.Context) error {
	names, err := a.Auth.FetchProviders(ctx)
	if err != nil {
		return fmt.Errorf("fetch providers: %w", err)
	}
	a.println(a.Renderer.Providers(names, a.Auth.LoginURL))
	return nil
}

func (a *App) login(args []string) error {
	provider := a.Prefs.Provider
	if len(args) > 0 {
		provider = strings.ToLower(strings.TrimSpace(args[0]))
	}
	if provider == "" {
		return fmt.Errorf("%w: login needs a provider (see: wishtrack providers)", ErrUsage)
	}

	if provider != a.Prefs.Provider {
		a.Prefs.Provider = provider
		if err := prefs.Save(a.prefsPath, a.Prefs); err != nil {
			a.Logger.Warn("save prefs failed", zap.Error(err))
		}
	}
	a.println(a.Renderer.Navigate("Sign in", a.Auth.LoginURL(provider)))
	return nil
}

func (a *App) logout() error {
	res := a.Auth.Logout()
	a.Queries.Remove(backend.StatusQueryKey)
	a.println(a.Renderer.Navigate("Sign out", res.RedirectURL))
	return nil
}

func (a *App) startImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	authkey := fs.String("authkey", "", "authkey from the in-game wish history link")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	res, err := a.Hoyo.StartImport(ctx, *authkey)
	if err != nil {
		return fmt.Errorf("start import: %w", err)
	}
	if res.Accepted() {
		a.Hoyo.StatusQuery().Invalidate()
	}
	a.println(a.Renderer.StartImport(res))
	return nil
}

func (a *App) status(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	watch := fs.Bool("watch", false, "keep polling until interrupted")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if *watch {
		if !a.State.IsAuthenticated() {
			a.println(a.Renderer.JobStatus(backend.JobStatus{State: backend.JobNotAuthenticated}))
		}
		var last backend.JobStatus
		var seen bool
		a.WatchStatus(ctx, func(res query.Result[backend.JobStatus]) {
			if !res.HasData || (seen && sameStatus(last, res.Data)) {
				return
			}
			last, seen = res.Data, true
			a.println(a.Renderer.JobStatus(res.Data))
		})
		return nil
	}

	status, err := a.Hoyo.Status(ctx)
	if errors.Is(err, query.ErrDisabled) {
		status = backend.JobStatus{State: backend.JobNotAuthenticated}
	} else if err != nil {
		return fmt.Errorf("fetch status: %w", err)
	}
	a.println(a.Renderer.JobStatus(status))
	return nil
}

func (a *App) index(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: index needs a subcommand (show, merge)", ErrUsage)
	}
	switch args[0] {
	case "show":
		a.println(a.Renderer.Index(a.Index.Get()))
		return nil
	case "merge":
		if len(args) < 2 {
			return fmt.Errorf("%w: index merge needs a file", ErrUsage)
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read index file: %w", err)
		}
		var incoming index.DataIndex
		if err := sonic.Unmarshal(data, &incoming); err != nil {
			return fmt.Errorf("decode index file: %w", err)
		}
		if err := a.Index.Merge(ctx, incoming); err != nil {
			return fmt.Errorf("merge index: %w", err)
		}
		a.printf("merged %d records, index holds %d\n", incoming.Len(), a.Index.Get().Len())
		return nil
	default:
		return fmt.Errorf("%w: unknown index subcommand %q", ErrUsage, args[0])
	}
}

func (a *App) wishes(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: wishes needs a file", ErrUsage)
	}
	fs := flag.NewFlagSet("wishes", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	banner := fs.String("banner", "", "only this banner")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read wishes: %w", err)
	}
	all, err := wish.Decode(data)
	if err != nil {
		return err
	}

	banners := []string{*banner}
	if *banner == "" {
		banners = banners[:0]
		for b := range all {
			banners = append(banners, b)
		}
		slices.Sort(banners)
	}
	for _, b := range banners {
		a.printf("%s\n%s\n", b, a.Renderer.Wishes(all.Ordered(b)))
	}
	return nil
}

func (a *App) theme(args []string) error {
	if len(args) == 0 {
		for _, name := range ui.ThemeNames() {
			marker := " "
			if name == ui.GetTheme(a.Prefs.Theme).Name {
				marker = "*"
			}
			a.printf("%s %s\n", marker, name)
		}
		return nil
	}

	name := args[0]
	if !slices.Contains(ui.ThemeNames(), name) {
		return fmt.Errorf("%w: unknown theme %q (have %s)", ErrUsage, name, strings.Join(ui.ThemeNames(), ", "))
	}
	a.Prefs.Theme = name
	if err := prefs.Save(a.prefsPath, a.Prefs); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	a.Renderer = ui.NewRenderer(name)
	a.printf("theme set to %s\n", name)
	return nil
}

func (a *App) logs(args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	n := fs.Int("n", 50, "lines to read from the end of the log")
	level := fs.String("level", "info", "minimum level")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	var min zapcore.Level
	if err := min.UnmarshalText([]byte(*level)); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	path := a.Config.LogPath()
	if path == config.LogStderr {
		return fmt.Errorf("%w: log_file is stderr, nothing to read", ErrUsage)
	}
	lines, err := logtail.Read(path, *n)
	if err != nil {
		return err
	}
	for _, e := range logtail.Filter(lines, min) {
		a.println(a.Renderer.LogEntry(e))
	}
	return nil
}

func sameStatus(a, b backend.JobStatus) bool {
	if a.State != b.State {
		return false
	}
	ac, aok := a.Count()
	bc, bok := b.Count()
	if aok != bok || ac != bc {
		return false
	}
	if (a.Completed == nil) != (b.Completed == nil) {
		return false
	}
	return a.Completed == nil || *a.Completed == *b.Completed
}

// redactArgs hides flag values that carry credentials.
func redactArgs(args []string) []string {
	out := slices.Clone(args)
	for i, arg := range out {
		switch {
		case strings.HasPrefix(arg, "-authkey=") || strings.HasPrefix(arg, "--authkey="):
			out[i] = arg[:strings.Index(arg, "=")+1] + "***"
		case (arg == "-authkey" || arg == "--authkey") && i+1 < len(out):
			out[i+1] = "***"
		}
	}
	return out
}
