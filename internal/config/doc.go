// Package config loads wishtrack settings.
//
// # Resolution Order
//
//  1. Built-in defaults (see Default)
//  2. ~/.config/wishtrack/config.toml, or the explicit path passed to Load
//  3. A .env file in the working directory, if any
//  4. WISHTRACK_* environment variables
//
// A missing config file is not an error. Empty values in the file keep the
// defaults.
//
// # TOML Format
//
//	backend_url = "https://tracker.example.com/api"
//	data_dir = "~/.local/share/wishtrack"
//	storage = "file"        # or "sqlite"
//	stale_time = "1h"
//	request_timeout = "10s"
//	log_level = "info"
//	log_dev = false
//
// # Environment
//
//	WISHTRACK_BACKEND_URL, WISHTRACK_DATA_DIR, WISHTRACK_STORAGE,
//	WISHTRACK_STALE_TIME, WISHTRACK_REQUEST_TIMEOUT,
//	WISHTRACK_LOG_LEVEL, WISHTRACK_LOG_DEV
//
// Paths beginning with ~ are expanded to the home directory and made absolute.
package config
