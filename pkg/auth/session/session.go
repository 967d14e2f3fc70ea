// Package session establishes a cookie-backed HTTP session with the identity provider and fetches
// its login page through the OAuth implicit flow's authorize endpoint.
package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	httpClient "github.com/cloudposse/hcloud-projects/pkg/http"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
	"github.com/cloudposse/hcloud-projects/pkg/perf"
	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

// DefaultMaxRedirects is the number of redirects a session follows before giving up.
const DefaultMaxRedirects = 3

// maxPageSize bounds how much of a login page is read into memory.
const maxPageSize = 4 << 20

// Config describes the identity provider endpoints and the session's transport.
type Config struct {
	AuthorizeURL string
	LoginURL     string
	ConsoleURL   string
	ClientID     string
	Scope        string
	ResponseType string
	MaxRedirects int
	Timeout      time.Duration
	UserAgent    string
	// Transport overrides the base HTTP transport.
	Transport http.RoundTripper
}

// ConfigFromSchema builds a session Config from the CLI configuration.
func ConfigFromSchema(cfg *schema.Configuration) Config {
	return Config{
		AuthorizeURL: cfg.Identity.AuthorizeURL,
		LoginURL:     cfg.Identity.LoginURL,
		ConsoleURL:   cfg.Console.URL,
		ClientID:     cfg.Identity.ClientID,
		Scope:        cfg.Identity.Scope,
		ResponseType: cfg.Identity.ResponseType,
		MaxRedirects: cfg.Identity.MaxRedirects,
		Timeout:      cfg.HTTP.Timeout,
		UserAgent:    cfg.HTTP.UserAgent,
	}
}

// LoginPage is the page the authorize request resolved to.
type LoginPage struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Session is a cookie jar plus a redirect policy, owned by a single login attempt.
//
// The policy follows at most MaxRedirects hops and never follows a redirect into the console origin:
// that redirect carries the OAuth tokens in its URL fragment, which only the client can observe, so the
// redirect response itself is returned for the caller to read its Location header.
type Session struct {
	config Config
	jar    http.CookieJar
	client httpClient.Client
}

// New creates a session with an empty cookie jar.
func New(config Config) (*Session, error) {
	defer perf.Track(nil, "session.New")()

	if config.AuthorizeURL == "" || config.LoginURL == "" || config.ConsoleURL == "" {
		return nil, errUtils.Build(fmt.Errorf("%w: identity authorize URL, login URL and console URL are required",
			errUtils.ErrInvalidConfig)).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}
	if config.MaxRedirects <= 0 {
		config.MaxRedirects = DefaultMaxRedirects
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errUtils.Wrap(errUtils.ErrHTTPRequestFailed, err).Err()
	}

	s := &Session{config: config, jar: jar}
	s.client = httpClient.NewDefaultClient(
		httpClient.WithTransport(config.Transport),
		httpClient.WithTimeout(config.Timeout),
		httpClient.WithUserAgent(config.UserAgent),
		httpClient.WithCookieJar(jar),
		httpClient.WithCheckRedirect(s.checkRedirect),
	)

	return s, nil
}

// Open creates a session and requests the login page through the authorize endpoint.
func Open(ctx context.Context, config Config) (*Session, *LoginPage, error) {
	defer perf.Track(nil, "session.Open")()

	s, err := New(config)
	if err != nil {
		return nil, nil, err
	}

	page, err := s.Authorize(ctx)
	if err != nil {
		return nil, nil, err
	}

	return s, page, nil
}

// Config returns the session's configuration.
func (s *Session) Config() Config {
	return s.config
}

// Authorize requests the authorize endpoint and checks that the redirect chain landed on the login page.
func (s *Session) Authorize(ctx context.Context) (*LoginPage, error) {
	defer perf.Track(nil, "session.Session.Authorize")()

	authorizeURL, err := s.authorizeURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authorizeURL, nil)
	if err != nil {
		return nil, errUtils.Wrap(errUtils.ErrHTTPRequestFailed, err).Err()
	}

	log.Debug("Requesting login page", "authorize_url", s.config.AuthorizeURL)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errUtils.Wrap(errUtils.ErrHTTPRequestFailed, err).
			WithContext("authorize_url", s.config.AuthorizeURL).
			Err()
	}
	defer resp.Body.Close()

	observed := ResolvedURL(resp)
	if observed != s.config.LoginURL {
		builder := errUtils.Build(fmt.Errorf("%w: expected the login page %s, got %s (HTTP %d)",
			errUtils.ErrUnexpectedPage, s.config.LoginURL, observed, resp.StatusCode)).
			WithContext("expected", s.config.LoginURL).
			WithContext("observed", observed)
		if strings.HasPrefix(resp.Header.Get("Location"), s.config.ConsoleURL) {
			builder = builder.WithHint("The identity provider redirected straight to the console; the session is already authenticated")
		} else {
			builder = builder.WithHint("The identity provider login flow may have changed")
		}
		return nil, builder.Err()
	}

	if !httpClient.IsSuccess(resp.StatusCode) {
		return nil, errUtils.Build(fmt.Errorf("%w: login page %s returned HTTP %d",
			errUtils.ErrUnexpectedPage, observed, resp.StatusCode)).
			WithContext("observed", observed).
			WithContext("status", resp.StatusCode).
			Err()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, errUtils.Wrap(errUtils.ErrHTTPRequestFailed, err).Err()
	}

	return &LoginPage{URL: observed, StatusCode: resp.StatusCode, Body: body}, nil
}

// Do sends a request through the session, sharing its cookies and redirect policy.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	return s.client.Do(req)
}

// PostForm submits a form-encoded body through the session.
// The caller owns the response and must close its body.
func (s *Session) PostForm(ctx context.Context, target string, form url.Values) (*http.Response, error) {
	defer perf.Track(nil, "session.Session.PostForm")()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errUtils.Wrap(errUtils.ErrHTTPRequestFailed, err).Err()
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errUtils.Wrap(errUtils.ErrHTTPRequestFailed, err).
			WithContext("url", target).
			Err()
	}
	return resp, nil
}

// Cookies returns the cookies the session would send to u.
func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	return s.jar.Cookies(u)
}

// checkRedirect stops before the console origin and refuses chains longer than MaxRedirects.
func (s *Session) checkRedirect(req *http.Request, via []*http.Request) error {
	if strings.HasPrefix(req.URL.String(), s.config.ConsoleURL) {
		log.Debug("Not following redirect into the console", "host", req.URL.Host, "path", req.URL.Path)
		return http.ErrUseLastResponse
	}

	if len(via) > s.config.MaxRedirects {
		return errUtils.Build(fmt.Errorf("%w: stopped after %d redirects", errUtils.ErrTooManyRedirects, s.config.MaxRedirects)).
			WithContext("max_redirects", s.config.MaxRedirects).
			WithContext("last_url", via[len(via)-1].URL.String()).
			WithExplanationf("The identity provider redirected more than %d times before showing the login page. "+
				"Raise identity.max_redirects if the chain is expected to be this long.", s.config.MaxRedirects).
			Err()
	}

	log.Trace("Following redirect", "host", req.URL.Host, "path", req.URL.Path, "hop", len(via))
	return nil
}

// authorizeURL builds the implicit-flow authorize request.
// state and nonce are random but not validated on the way back.
func (s *Session) authorizeURL() (string, error) {
	u, err := url.Parse(s.config.AuthorizeURL)
	if err != nil {
		return "", errUtils.Wrap(errUtils.ErrInvalidConfig, err).
			WithContext("authorize_url", s.config.AuthorizeURL).
			Err()
	}

	query := u.Query()
	for key, values := range AuthorizeParams(s.config) {
		query[key] = values
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// AuthorizeParams returns the implicit-flow query parameters for the authorize endpoint.
func AuthorizeParams(config Config) url.Values {
	responseType := config.ResponseType
	if responseType == "" {
		responseType = "id_token token"
	}
	scope := config.Scope
	if scope == "" {
		scope = "openid"
	}

	return url.Values{
		"response_type": {responseType},
		"client_id":     {config.ClientID},
		"state":         {uuid.NewString()},
		"nonce":         {uuid.NewString()},
		"redirect_uri":  {strings.TrimSuffix(config.ConsoleURL, "/") + "/"},
		"scope":         {scope},
	}
}

// ResolvedURL returns the URL a response was finally served from, after any followed redirects.
func ResolvedURL(resp *http.Response) string {
	if resp == nil || resp.Request == nil || resp.Request.URL == nil {
		return ""
	}
	return resp.Request.URL.String()
}
