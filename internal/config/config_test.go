package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BackendURL != defaultBackendURL {
		t.Fatalf("BackendURL = %q, want %q", cfg.BackendURL, defaultBackendURL)
	}
	if cfg.StaleTime != time.Hour {
		t.Fatalf("StaleTime = %v, want 1h", cfg.StaleTime)
	}
	if cfg.Storage != StorageFile {
		t.Fatalf("Storage = %q, want %q", cfg.Storage, StorageFile)
	}

	wantDataDir, err := ExpandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("ExpandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.IndexDBPath() != filepath.Join(wantDataDir, "wishtrack.db") {
		t.Fatalf("IndexDBPath = %q", cfg.IndexDBPath())
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
backend_url = "  https://api.example.com/  "
data_dir = "  ~/.wishtrack  "
storage = " SQLite "
stale_time = "30m"
request_timeout = "3s"
log_level = "debug"
log_dev = true
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BackendURL != "https://api.example.com" {
		t.Fatalf("BackendURL = %q, want trailing slash trimmed", cfg.BackendURL)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.Storage != StorageSQLite {
		t.Fatalf("Storage = %q, want sqlite", cfg.Storage)
	}
	if cfg.StaleTime != 30*time.Minute || cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("durations = %v/%v, want 30m/3s", cfg.StaleTime, cfg.RequestTimeout)
	}
	if cfg.LogLevel != "debug" || !cfg.LogDev {
		t.Fatalf("logging = %q/%v, want debug/true", cfg.LogLevel, cfg.LogDev)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WISHTRACK_BACKEND_URL", "http://10.0.0.5:9999")
	t.Setenv("WISHTRACK_STALE_TIME", "5m")
	t.Setenv("WISHTRACK_SESSION_COOKIE", " sid=env ")

	path := filepath.Join(t.TempDir(), "config.toml")
	body := "backend_url = \"http://file.example\"\nsession_cookie = \"sid=file\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BackendURL != "http://10.0.0.5:9999" {
		t.Fatalf("BackendURL = %q, want env override", cfg.BackendURL)
	}
	if cfg.StaleTime != 5*time.Minute {
		t.Fatalf("StaleTime = %v, want 5m", cfg.StaleTime)
	}
	if cfg.SessionCookie != "sid=env" {
		t.Fatalf("SessionCookie = %q, want trimmed env override", cfg.SessionCookie)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
backend_url = "   "
data_dir = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BackendURL != defaultBackendURL {
		t.Fatalf("BackendURL = %q, want %q", cfg.BackendURL, defaultBackendURL)
	}
	wantDataDir, err := ExpandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("ExpandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`backend_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_UnknownStorageFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`storage = "redis"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load returned nil error, want unknown storage error")
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsUnderDataDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WISHTRACK_DATA_DIR", "/var/lib/wishtrack")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.LogPath(); got != filepath.Join("/var/lib/wishtrack", "wishtrack.log") {
		t.Fatalf("LogPath = %q", got)
	}

	t.Setenv("WISHTRACK_LOG_FILE", "stderr")
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.LogPath(); got != LogStderr {
		t.Fatalf("LogPath = %q, want stderr", got)
	}
}
