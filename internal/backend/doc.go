// Package backend is the client for the wish history tracker backend.
//
// # Architecture
//
//   - client.go: resty-based transport, base URL handling, StatusError
//   - types.go: wire types (start import states, job status variants)
//   - auth.go: AuthService, provider login/logout URLs
//   - hoyo.go: HoyoService, start import mutation and status query
//   - backendtest: chi-routed fake backend for tests
//
// # Endpoints
//
//	GET {base}/auth                      provider list
//	    {base}/auth/{provider}           login page (URL only)
//	    {base}/auth/logout               logout page (URL only)
//	GET {base}/wishhistory?authkey=KEY   start import
//	GET {base}/wishhistory/status        poll import status
//
// # Errors
//
// Transport failures and non-2xx responses are returned as errors, the latter
// as *StatusError. Domain rejections (MISSING_AUTHKEY, AUTHKEY_INVALID) are
// ordinary responses. A 401 or 403 from the status endpoint decodes to the
// NOT_AUTHENTICATED marker. Nothing in this package retries.
//
// # Usage
//
//	client, err := backend.NewClient(cfg.BackendURL, backend.WithTimeout(cfg.RequestTimeout))
//	auth := backend.NewAuthService(client, app, profile)
//	hoyo := backend.NewHoyoService(client, queries, app)
//
//	fmt.Println("open", auth.LoginURL("discord"))
//	res, err := hoyo.StartImport(ctx, authkey)
//	status, err := hoyo.Status(ctx)
package backend
