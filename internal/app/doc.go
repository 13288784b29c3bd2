// Package app is the composition root of wishtrack.
//
// # Overview
//
// New loads configuration and preferences, builds the logger, opens the
// storage backend and wires the state containers, the query cache and the
// backend services together. Run dispatches one CLI subcommand against the
// wired App.
//
// # Components
//
//   - app.go: Options, New, OpenStorage, Close
//   - commands.go: subcommand dispatch and output
//   - watcher.go: WatchStatus, the long-running status poller
//
// # Data Flow
//
//	New()
//	  ├─> config.Load()          file, .env, WISHTRACK_* env
//	  ├─> logging.New()          zap, to <data_dir>/wishtrack.log by default
//	  ├─> prefs.Load()           theme, remembered provider
//	  ├─> backend.NewClient()    resty, cookie jar, session cookie
//	  ├─> OpenStorage()          file or sqlite
//	  ├─> index.Open()           persisted reference data
//	  └─> Auth / Hoyo services   on a shared query.Client
//
//	WatchStatus()
//	  └─> StatusQuery().Watch()  fetch when stale, pause while signed out
//	        └─> Subscribe        log failures, hand results to the caller
//
// # Error Handling
//
// Errors from New are fatal: bad configuration, an unusable log path or
// storage that cannot be opened. During WatchStatus a failed poll is logged
// with its failure count and polling resumes once the result goes stale;
// nothing retries early. Command-line mistakes wrap ErrUsage so the caller
// can print Usage.
//
// # Authentication
//
// A CLI cannot receive the browser session, so a session cookie copied from
// the browser can be set as session_cookie (or WISHTRACK_SESSION_COOKIE). When
// present the client sends it and the app starts out authenticated.
package app
