package backend_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/wishtrack/internal/backend"
	"github.com/five82/wishtrack/internal/backend/backendtest"
	"github.com/five82/wishtrack/internal/query"
	"github.com/five82/wishtrack/internal/state"
)

type fixture struct {
	server  *backendtest.Server
	client  *backend.Client
	queries *query.Client
	app     *state.Application
	profile *state.Profile
}

func newFixture(t *testing.T, clientOpts ...backend.ClientOption) fixture {
	t.Helper()
	server := backendtest.New(t)
	client, err := backend.NewClient(server.URL, clientOpts...)
	require.NoError(t, err)
	return fixture{
		server:  server,
		client:  client,
		queries: query.NewClient(),
		app:     state.NewApplication(),
		profile: state.NewProfile(),
	}
}

func TestAuthService_URLs(t *testing.T) {
	client, err := backend.NewClient("https://tracker.example.com/api/")
	require.NoError(t, err)
	auth := backend.NewAuthService(client, state.NewApplication(), state.NewProfile())

	assert.Equal(t, "https://tracker.example.com/api/auth/discord", auth.LoginURL("discord"))
	assert.Equal(t, "https://tracker.example.com/api/auth", auth.ProvidersURL())
	assert.Equal(t, "https://tracker.example.com/api/auth/", auth.LoginURL(""), "provider is not validated")
}

func TestAuthService_LogoutIsIdempotent(t *testing.T) {
	f := newFixture(t)
	auth := backend.NewAuthService(f.client, f.app, f.profile)

	f.app.SetAuthenticated(true)
	f.profile.Set(state.UserProfile{ID: "1", Username: "traveler", Provider: "discord"})

	for i := 0; i < 2; i++ {
		res := auth.Logout()
		assert.Equal(t, f.server.URL+"/auth/logout", res.RedirectURL)
		assert.False(t, f.app.IsAuthenticated())
		assert.Equal(t, state.DefaultUserProfile(), f.profile.Get())
	}
}

func TestAuthService_FetchProviders(t *testing.T) {
	f := newFixture(t)
	auth := backend.NewAuthService(f.client, f.app, f.profile)

	got, err := auth.FetchProviders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"discord", "google"}, got)

	f.server.SetProviders(`{"providers":["github"]}`)
	got, err = auth.FetchProviders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"github"}, got)
}

func TestHoyoService_StartImportThenCachedStatus(t *testing.T) {
	f := newFixture(t)
	f.server.SetStartState("abc", "CREATED")
	f.server.SetStatus(http.StatusOK, `{"state":"ACTIVE"}`)
	f.app.SetAuthenticated(true)
	hoyo := backend.NewHoyoService(f.client, f.queries, f.app)

	started, err := hoyo.StartImport(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, backend.StartCreated, started.State)
	assert.Equal(t, backend.StartCreated, hoyo.StartImportResult().Data.State)
	assert.Equal(t, []string{"abc"}, f.server.Authkeys())

	first, err := hoyo.Status(context.Background())
	require.NoError(t, err)
	second, err := hoyo.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, backend.JobActive, second.State)
	assert.Equal(t, 1, f.server.Calls("/wishhistory/status"), "cached status must not hit the network")
}

func TestHoyoService_StartImportRejectionsAreValues(t *testing.T) {
	f := newFixture(t)
	hoyo := backend.NewHoyoService(f.client, f.queries, f.app)

	res, err := hoyo.StartImport(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, backend.StartAuthkeyInvalid, res.State)

	res, err = hoyo.StartImport(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, backend.StartMissingAuthkey, res.State)
}

func TestHoyoService_AuthkeyIsPassedThrough(t *testing.T) {
	f := newFixture(t)
	hoyo := backend.NewHoyoService(f.client, f.queries, f.app)

	key := "a+b/c=d&e"
	_, err := hoyo.StartImport(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, f.server.Authkeys())
}

func TestHoyoService_QueuedCount(t *testing.T) {
	f := newFixture(t)
	f.server.SetStatus(http.StatusOK, `{"state":"QUEUED","data":{"count":5}}`)
	f.app.SetAuthenticated(true)
	hoyo := backend.NewHoyoService(f.client, f.queries, f.app)

	status, err := hoyo.Status(context.Background())
	require.NoError(t, err)
	count, ok := status.Count()
	require.True(t, ok)
	assert.Equal(t, 5, count)
}

func TestHoyoService_CompletedFieldsPreserved(t *testing.T) {
	f := newFixture(t)
	f.server.SetStatus(http.StatusOK,
		`{"state":"COMPLETED_RATE_LIMIT","data":{"completedTimestamp":"2024-01-01T00:00:00Z","rateLimitDuration":3600}}`)
	f.app.SetAuthenticated(true)
	hoyo := backend.NewHoyoService(f.client, f.queries, f.app)

	status, err := hoyo.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.Completed)
	assert.Equal(t, "2024-01-01T00:00:00Z", status.Completed.CompletedTimestamp)
	assert.Equal(t, float64(3600), status.Completed.RateLimitDuration)

	cached := hoyo.StatusQuery().Result()
	assert.Equal(t, status, cached.Data)
}

func TestHoyoService_UnauthenticatedStatusIsMarker(t *testing.T) {
	f := newFixture(t)
	f.server.RequireSession("sid=ok")
	f.app.SetAuthenticated(true)
	hoyo := backend.NewHoyoService(f.client, f.queries, f.app)

	status, err := hoyo.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, backend.JobNotAuthenticated, status.State)

	signed := newFixture(t, backend.WithSessionCookie("sid=ok"))
	signed.server.RequireSession("sid=ok")
	signed.app.SetAuthenticated(true)
	hoyo = backend.NewHoyoService(signed.client, signed.queries, signed.app)

	status, err = hoyo.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, backend.JobNoJob, status.State)
}

func TestHoyoService_StatusGatedByAuthentication(t *testing.T) {
	f := newFixture(t)
	hoyo := backend.NewHoyoService(f.client, f.queries, f.app)

	_, err := hoyo.Status(context.Background())
	assert.ErrorIs(t, err, query.ErrDisabled)
	assert.Zero(t, f.server.Calls("/wishhistory/status"))

	// Reactive gate: no new service needed after login.
	f.app.SetAuthenticated(true)
	_, err = hoyo.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.server.Calls("/wishhistory/status"))
}

func TestHoyoService_StaticEnablementIsFixedAtConstruction(t *testing.T) {
	f := newFixture(t)
	hoyo := backend.NewHoyoService(f.client, f.queries, f.app, backend.WithStaticEnablement())

	f.app.SetAuthenticated(true)
	_, err := hoyo.Status(context.Background())
	assert.ErrorIs(t, err, query.ErrDisabled)
}

func TestHoyoService_StatusFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.server.SetStatus(http.StatusBadGateway, `{}`)
	f.app.SetAuthenticated(true)
	hoyo := backend.NewHoyoService(f.client, f.queries, f.app, backend.WithStaleTime(time.Minute))

	_, err := hoyo.Status(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, hoyo.StatusQuery().Result().ConsecutiveFailures)
	assert.Equal(t, time.Minute, hoyo.StatusQuery().StaleTime())
}
