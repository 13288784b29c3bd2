package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/five82/wishtrack/internal/backend"
	"github.com/five82/wishtrack/internal/config"
	"github.com/five82/wishtrack/internal/index"
	"github.com/five82/wishtrack/internal/logging"
	"github.com/five82/wishtrack/internal/prefs"
	"github.com/five82/wishtrack/internal/query"
	"github.com/five82/wishtrack/internal/state"
	"github.com/five82/wishtrack/internal/storage"
	"github.com/five82/wishtrack/internal/ui"
)

// Options configure the wishtrack application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/wishtrack/prefs.toml

	// Logger overrides the logger built from config.
	Logger *logging.Logger
	// Registerer receives query metrics. Nil keeps them private.
	Registerer prometheus.Registerer
	// Stdout receives command output. Nil means os.Stdout.
	Stdout io.Writer
}

// App is the wired client: state containers, query cache, backend services
// and the persisted index.
type App struct {
	Config   config.Config
	Prefs    prefs.Prefs
	Logger   *logging.Logger
	State    *state.Application
	Profile  *state.Profile
	Queries  *query.Client
	Client   *backend.Client
	Auth     *backend.AuthService
	Hoyo     *backend.HoyoService
	Index    *index.Store
	Renderer *ui.Renderer

	prefsPath string
	stdout    io.Writer
	hub       *storage.Hub
}

// New loads configuration and wires every component. Close releases storage.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger, err = newLogger(cfg)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := backend.NewClient(cfg.BackendURL,
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithSessionCookie(cfg.SessionCookie),
	)
	if err != nil {
		return nil, fmt.Errorf("init backend client: %w", err)
	}

	store, err := OpenStorage(cfg)
	if err != nil {
		return nil, err
	}
	hub := storage.NewHub(store, logger)
	idx, err := index.Open(ctx, hub, logger)
	if err != nil {
		_ = hub.Close()
		return nil, fmt.Errorf("open index: %w", err)
	}

	appState := state.NewApplication()
	profile := state.NewProfile()
	queries := query.NewClient(query.WithLogger(logger), query.WithRegisterer(opts.Registerer))

	a := &App{
		Config:    cfg,
		Prefs:     userPrefs,
		Logger:    logger.Named("app"),
		State:     appState,
		Profile:   profile,
		Queries:   queries,
		Client:    client,
		Auth:      backend.NewAuthService(client, appState, profile),
		Hoyo:      backend.NewHoyoService(client, queries, appState, backend.WithStaleTime(cfg.StaleTime)),
		Index:     idx,
		Renderer:  ui.NewRenderer(userPrefs.Theme),
		prefsPath: opts.PrefsPath,
		stdout:    opts.Stdout,
		hub:       hub,
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}

	// A configured session cookie stands in for the browser login.
	if cfg.SessionCookie != "" {
		appState.SetAuthenticated(true)
	}

	a.Logger.Debug("app ready",
		zap.String("backend", client.BaseURL()),
		zap.String("storage", cfg.Storage),
		zap.Bool("authenticated", appState.IsAuthenticated()),
	)
	return a, nil
}

func newLogger(cfg config.Config) (*logging.Logger, error) {
	path := cfg.LogPath()
	if path != config.LogStderr {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	return logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDev,
		OutputPaths: []string{path},
	})
}

// OpenStorage returns the backend selected by cfg.Storage.
func OpenStorage(cfg config.Config) (storage.Backend, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		b, err := storage.OpenSQLite(cfg.IndexDBPath())
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return b, nil
	case config.StorageFile, "":
		return storage.NewFileBackend(cfg.StoreDir()), nil
	default:
		return nil, fmt.Errorf("open storage: unknown backend %q", cfg.Storage)
	}
}

// Close detaches the index session and closes storage.
func (a *App) Close() error {
	a.Index.Close()
	err := a.hub.Close()
	_ = a.Logger.Sync()
	return err
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

func (a *App) println(s string) {
	fmt.Fprintln(a.stdout, s)
}

// ErrUsage marks command-line mistakes.
var ErrUsage = errors.New("usage")
