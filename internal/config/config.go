package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

// Storage backends accepted by the storage setting.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// LogStderr as log_file sends logs to the terminal.
const LogStderr = "stderr"

// Config captures everything wishtrack needs to reach the backend and persist
// local data.
type Config struct {
	BackendURL     string
	DataDir        string
	Storage        string
	StaleTime      time.Duration
	RequestTimeout time.Duration
	LogLevel       string
	LogDev         bool
	// LogFile receives log output. Empty means <data_dir>/wishtrack.log;
	// "stderr" writes to the terminal.
	LogFile string
	// SessionCookie is the backend session ("name=value") copied from a
	// browser after login. Empty means signed out.
	SessionCookie string
}

const (
	defaultConfigPath     = "~/.config/wishtrack/config.toml"
	defaultDataDir        = "~/.local/share/wishtrack"
	defaultBackendURL     = "http://127.0.0.1:3000"
	defaultStaleTime      = time.Hour
	defaultRequestTimeout = 10 * time.Second
	defaultLogLevel       = "info"
	envPrefix             = "WISHTRACK"
)

// env mirrors the overridable settings. Pointers distinguish unset from zero.
type env struct {
	BackendURL     *string        `envconfig:"BACKEND_URL"`
	DataDir        *string        `envconfig:"DATA_DIR"`
	Storage        *string        `envconfig:"STORAGE"`
	StaleTime      *time.Duration `envconfig:"STALE_TIME"`
	RequestTimeout *time.Duration `envconfig:"REQUEST_TIMEOUT"`
	LogLevel       *string        `envconfig:"LOG_LEVEL"`
	LogDev         *bool          `envconfig:"LOG_DEV"`
	LogFile        *string        `envconfig:"LOG_FILE"`
	SessionCookie  *string        `envconfig:"SESSION_COOKIE"`
}

// Default returns the configuration used when no file or environment is present.
func Default() Config {
	return Config{
		BackendURL:     defaultBackendURL,
		DataDir:        mustExpand(defaultDataDir),
		Storage:        StorageFile,
		StaleTime:      defaultStaleTime,
		RequestTimeout: defaultRequestTimeout,
		LogLevel:       defaultLogLevel,
	}
}

// Load locates and parses the config file, falling back to defaults when it is
// missing, then applies WISHTRACK_* environment overrides. A .env file in the
// working directory is loaded first when present.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := loadFile(resolved, &cfg); err != nil {
		return Config{}, err
	}

	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IndexDBPath returns the SQLite database used by the sqlite storage backend.
func (c Config) IndexDBPath() string {
	return filepath.Join(c.dataDir(), "wishtrack.db")
}

// LogPath returns where logs are written: a file path or LogStderr.
func (c Config) LogPath() string {
	if c.LogFile == "" {
		return filepath.Join(c.dataDir(), "wishtrack.log")
	}
	return c.LogFile
}

// StoreDir returns the directory used by the file storage backend.
func (c Config) StoreDir() string {
	return filepath.Join(c.dataDir(), "store")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BackendURL     string `toml:"backend_url"`
		DataDir        string `toml:"data_dir"`
		Storage        string `toml:"storage"`
		StaleTime      string `toml:"stale_time"`
		RequestTimeout string `toml:"request_timeout"`
		LogLevel       string `toml:"log_level"`
		LogDev         bool   `toml:"log_dev"`
		LogFile        string `toml:"log_file"`
		SessionCookie  string `toml:"session_cookie"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BackendURL); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(raw.Storage); v != "" {
		cfg.Storage = v
	}
	if v := strings.TrimSpace(raw.StaleTime); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: stale_time: %w", err)
		}
		cfg.StaleTime = d
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogDev = raw.LogDev
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = v
	}
	cfg.SessionCookie = raw.SessionCookie
	return nil
}

func applyEnv(cfg *Config) error {
	var e env
	if err := envconfig.Process(envPrefix, &e); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	if e.BackendURL != nil {
		cfg.BackendURL = *e.BackendURL
	}
	if e.DataDir != nil {
		cfg.DataDir = *e.DataDir
	}
	if e.Storage != nil {
		cfg.Storage = *e.Storage
	}
	if e.StaleTime != nil {
		cfg.StaleTime = *e.StaleTime
	}
	if e.RequestTimeout != nil {
		cfg.RequestTimeout = *e.RequestTimeout
	}
	if e.LogLevel != nil {
		cfg.LogLevel = *e.LogLevel
	}
	if e.LogDev != nil {
		cfg.LogDev = *e.LogDev
	}
	if e.LogFile != nil {
		cfg.LogFile = *e.LogFile
	}
	if e.SessionCookie != nil {
		cfg.SessionCookie = *e.SessionCookie
	}
	return nil
}

func (c *Config) normalize() error {
	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
	if c.BackendURL == "" {
		c.BackendURL = defaultBackendURL
	}

	c.DataDir = strings.TrimSpace(c.DataDir)
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	c.DataDir = mustExpand(c.DataDir)

	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case "":
		c.Storage = StorageFile
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}

	if c.StaleTime <= 0 {
		c.StaleTime = defaultStaleTime
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	c.LogFile = strings.TrimSpace(c.LogFile)
	if c.LogFile != "" && c.LogFile != LogStderr {
		c.LogFile = mustExpand(c.LogFile)
	}
	c.SessionCookie = strings.TrimSpace(c.SessionCookie)
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
