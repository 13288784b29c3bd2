package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/five82/wishtrack/internal/state"
)

// AuthService builds the identity provider redirect URLs and clears local
// state on logout. Navigation itself is left to the caller.
type AuthService struct {
	baseURL string
	client  *Client
	app     *state.Application
	profile *state.Profile
}

// LogoutResult tells the caller where to navigate to end the server session.
type LogoutResult struct {
	RedirectURL string
}

// NewAuthService returns an AuthService rooted at client's base URL.
func NewAuthService(client *Client, app *state.Application, profile *state.Profile) *AuthService {
	return &AuthService{
		baseURL: client.BaseURL() + "/auth",
		client:  client,
		app:     app,
		profile: profile,
	}
}

// LoginURL returns the page that starts a login with provider. provider is
// appended as given.
func (s *AuthService) LoginURL(provider string) string {
	return s.baseURL + "/" + provider
}

// ProvidersURL returns the provider listing endpoint.
func (s *AuthService) ProvidersURL() string {
	return s.baseURL
}

// FetchProviders lists the identity providers the backend accepts.
func (s *AuthService) FetchProviders(ctx context.Context) ([]string, error) {
	var raw json.RawMessage
	if err := s.client.get(ctx, "/auth", nil, &raw); err != nil {
		return nil, err
	}

	var list []string
	if err := sonic.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped providersWire
	if err := sonic.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}
	return wrapped.Providers, nil
}

// Logout marks the application unauthenticated, resets the user profile and
// returns the server logout URL for the caller to navigate to. Calling it
// again has the same effect.
func (s *AuthService) Logout() LogoutResult {
	s.app.SetAuthenticated(false)
	s.profile.Reset()
	return LogoutResult{RedirectURL: s.baseURL + "/logout"}
}
