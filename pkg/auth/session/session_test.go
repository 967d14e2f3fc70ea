package session

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	"github.com/cloudposse/hcloud-projects/internal/testutils"
	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

func newConfig(idp *testutils.IdentityProvider) Config {
	return Config{
		AuthorizeURL: idp.AuthorizeURL(),
		LoginURL:     idp.LoginURL(),
		ConsoleURL:   idp.ConsoleURL(),
		ClientID:     "cloud_console",
		Timeout:      5 * time.Second,
	}
}

func TestOpen_LandsOnLoginPage(t *testing.T) {
	idp := testutils.NewIdentityProvider(t)

	s, page, err := Open(context.Background(), newConfig(idp))
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, idp.LoginURL(), page.URL)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, string(page.Body), `name="_csrf_token"`)

	queries := idp.AuthorizeQueries()
	require.Len(t, queries, 1)
	query := queries[0]
	assert.Equal(t, "id_token token", query.Get("response_type"))
	assert.Equal(t, "cloud_console", query.Get("client_id"))
	assert.Equal(t, "openid", query.Get("scope"))
	assert.Equal(t, idp.ConsoleURL()+"/", query.Get("redirect_uri"))
	assert.NotEmpty(t, query.Get("state"))
	assert.NotEmpty(t, query.Get("nonce"))

	loginURL, err := url.Parse(idp.LoginURL())
	require.NoError(t, err)
	cookies := s.Cookies(loginURL)
	require.Len(t, cookies, 1)
	assert.Equal(t, "ACCOUNTS_SESSION", cookies[0].Name)
}

func TestOpen_FollowsRedirectsUpToLimit(t *testing.T) {
	idp := testutils.NewIdentityProvider(t)
	// authorize -> hop/1 -> hop/2 -> login is three redirects.
	idp.ExtraHops = 2

	_, page, err := Open(context.Background(), newConfig(idp))
	require.NoError(t, err)
	assert.Equal(t, idp.LoginURL(), page.URL)
}

func TestOpen_RefusesLongRedirectChain(t *testing.T) {
	idp := testutils.NewIdentityProvider(t)
	idp.ExtraHops = 3

	s, page, err := Open(context.Background(), newConfig(idp))
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, errUtils.ErrTooManyRedirects)
	assert.NotErrorIs(t, err, errUtils.ErrUnexpectedPage)
	assert.Contains(t, errUtils.Format(err, errUtils.FormatterConfig{Color: "never"}), "identity.max_redirects")
}

func TestOpen_CustomRedirectLimit(t *testing.T) {
	idp := testutils.NewIdentityProvider(t)
	idp.ExtraHops = 3

	config := newConfig(idp)
	config.MaxRedirects = 4

	_, page, err := Open(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, idp.LoginURL(), page.URL)
}

func TestOpen_AlreadyAuthenticated(t *testing.T) {
	idp := testutils.NewIdentityProvider(t)
	idp.AuthorizeLocation = idp.ConsoleURL() + "/#access_token=a&id_token=b"

	_, _, err := Open(context.Background(), newConfig(idp))
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrUnexpectedPage)
	assert.Contains(t, err.Error(), idp.LoginURL())
	assert.Equal(t, 0, idp.ConsoleHits(), "the console redirect must be captured, not followed")
}

func TestOpen_UnexpectedPage(t *testing.T) {
	idp := testutils.NewIdentityProvider(t)
	idp.AuthorizeLocation = "/oauth/resume"
	idp.SuccessLocation = idp.Server.URL + "/elsewhere"

	_, _, err := Open(context.Background(), newConfig(idp))
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrUnexpectedPage)
	assert.Contains(t, err.Error(), "/elsewhere")
}

func TestOpen_LoginPageQueryMustMatch(t *testing.T) {
	idp := testutils.NewIdentityProvider(t)
	idp.AuthorizeLocation = "/login?locale=de"

	_, _, err := Open(context.Background(), newConfig(idp))
	assert.ErrorIs(t, err, errUtils.ErrUnexpectedPage)
}

func TestOpen_LoginPageErrorStatus(t *testing.T) {
	server := http.NewServeMux()
	server.HandleFunc("/authorize", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	server.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})
	srv := newServer(t, server)

	_, _, err := Open(context.Background(), Config{
		AuthorizeURL: srv + "/authorize",
		LoginURL:     srv + "/login",
		ConsoleURL:   "https://console.example.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrUnexpectedPage)
	assert.Contains(t, err.Error(), "503")
}

func TestOpen_TransportFailure(t *testing.T) {
	_, _, err := Open(context.Background(), Config{
		AuthorizeURL: "http://127.0.0.1:1/authorize",
		LoginURL:     "http://127.0.0.1:1/login",
		ConsoleURL:   "https://console.example.com",
		Timeout:      time.Second,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrHTTPRequestFailed)
}

func TestOpen_CancelledContext(t *testing.T) {
	idp := testutils.NewIdentityProvider(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Open(ctx, newConfig(idp))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_MissingURLs(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "missing authorize", config: Config{LoginURL: "https://a/login", ConsoleURL: "https://c"}},
		{name: "missing login", config: Config{AuthorizeURL: "https://a/authorize", ConsoleURL: "https://c"}},
		{name: "missing console", config: Config{AuthorizeURL: "https://a/authorize", LoginURL: "https://a/login"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.config)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, errUtils.ErrInvalidConfig)
			assert.Equal(t, errUtils.ExitCodeUsage, errUtils.GetExitCode(err))
		})
	}
}

func TestNew_DefaultsMaxRedirects(t *testing.T) {
	s, err := New(Config{AuthorizeURL: "https://a/authorize", LoginURL: "https://a/login", ConsoleURL: "https://c"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxRedirects, s.Config().MaxRedirects)
}

func TestAuthorizeParams(t *testing.T) {
	params := AuthorizeParams(Config{ClientID: "cloud_console", ConsoleURL: "https://console.hetzner.cloud"})

	assert.Equal(t, "id_token token", params.Get("response_type"))
	assert.Equal(t, "cloud_console", params.Get("client_id"))
	assert.Equal(t, "openid", params.Get("scope"))
	assert.Equal(t, "https://console.hetzner.cloud/", params.Get("redirect_uri"))
	assert.NotEmpty(t, params.Get("state"))
	assert.NotEmpty(t, params.Get("nonce"))

	custom := AuthorizeParams(Config{ResponseType: "token", Scope: "openid profile", ConsoleURL: "https://c/"})
	assert.Equal(t, "token", custom.Get("response_type"))
	assert.Equal(t, "openid profile", custom.Get("scope"))
	assert.Equal(t, "https://c/", custom.Get("redirect_uri"))
}

func TestConfigFromSchema(t *testing.T) {
	cfg := &schema.Configuration{
		Console: schema.Console{URL: "https://console.hetzner.cloud"},
		Identity: schema.Identity{
			AuthorizeURL: "https://accounts.hetzner.com/oauth/authorize",
			LoginURL:     "https://accounts.hetzner.com/login",
			ClientID:     "cloud_console",
			MaxRedirects: 5,
		},
		HTTP: schema.HTTP{Timeout: 10 * time.Second, UserAgent: "test-agent"},
	}

	config := ConfigFromSchema(cfg)
	assert.Equal(t, "https://accounts.hetzner.com/oauth/authorize", config.AuthorizeURL)
	assert.Equal(t, "https://accounts.hetzner.com/login", config.LoginURL)
	assert.Equal(t, "https://console.hetzner.cloud", config.ConsoleURL)
	assert.Equal(t, "cloud_console", config.ClientID)
	assert.Equal(t, 5, config.MaxRedirects)
	assert.Equal(t, 10*time.Second, config.Timeout)
	assert.Equal(t, "test-agent", config.UserAgent)
}

func TestResolvedURL(t *testing.T) {
	assert.Empty(t, ResolvedURL(nil))
	assert.Empty(t, ResolvedURL(&http.Response{}))

	u, err := url.Parse("https://accounts.example.com/login")
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example.com/login", ResolvedURL(&http.Response{Request: &http.Request{URL: u}}))
}
