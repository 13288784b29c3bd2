// Package backendtest runs an in-memory stand-in for the tracker backend.
package backendtest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Server is a scripted fake backend. Zero configuration answers every
// endpoint with a successful response.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	providers     string
	startStates   map[string]string
	statusBody    string
	statusCode    int
	sessionCookie string
	calls         map[string]int
	authkeys      []string
}

// New starts a Server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		providers:   `["discord","google"]`,
		startStates: map[string]string{},
		statusBody:  `{"state":"NO_JOB"}`,
		statusCode:  http.StatusOK,
		calls:       map[string]int{},
	}

	r := chi.NewRouter()
	r.Get("/auth", s.handleProviders)
	r.Get("/wishhistory", s.handleStart)
	r.Get("/wishhistory/status", s.handleStatus)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// SetProviders replaces the raw /auth response body.
func (s *Server) SetProviders(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers = body
}

// SetStartState makes /wishhistory answer state for authkey. Unknown keys
// answer AUTHKEY_INVALID; an empty key answers MISSING_AUTHKEY.
func (s *Server) SetStartState(authkey, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startStates[authkey] = state
}

// SetStatus replaces the /wishhistory/status response.
func (s *Server) SetStatus(code int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCode = code
	s.statusBody = body
}

// RequireSession makes /wishhistory/status answer 401 unless the request
// carries cookie "name=value".
func (s *Server) RequireSession(cookie string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionCookie = cookie
}

// Calls returns how many requests path has served.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// Authkeys returns the authkeys received by /wishhistory, in order.
func (s *Server) Authkeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authkeys...)
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[r.URL.Path]++
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	s.mu.Lock()
	body := s.providers
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	key := r.URL.Query().Get("authkey")

	s.mu.Lock()
	s.authkeys = append(s.authkeys, key)
	state, ok := s.startStates[key]
	s.mu.Unlock()

	switch {
	case key == "":
		state = "MISSING_AUTHKEY"
	case !ok:
		state = "AUTHKEY_INVALID"
	}
	writeJSON(w, http.StatusOK, `{"state":"`+state+`"}`)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	s.mu.Lock()
	code, body, want := s.statusCode, s.statusBody, s.sessionCookie
	s.mu.Unlock()

	if want != "" && !hasCookie(r, want) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"unauthorized"}`)
		return
	}
	writeJSON(w, code, body)
}

func hasCookie(r *http.Request, raw string) bool {
	for _, c := range r.Cookies() {
		if c.Name+"="+c.Value == raw {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
