package http

import (
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/cloudposse/hcloud-projects/pkg/perf"
)

// DefaultTimeout bounds every request, connect through body read.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent when no other user agent is configured.
const DefaultUserAgent = "hcloud-projects"

// Client defines the interface for making HTTP requests.
// This interface allows for easy mocking in tests.
type Client interface {
	// Do performs an HTTP request and returns the response.
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption is a functional option for configuring the DefaultClient.
type ClientOption func(*DefaultClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *DefaultClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithTransport sets the base HTTP transport.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *DefaultClient) {
		c.base = transport
	}
}

// WithBearerToken authenticates every request with an `Authorization: Bearer` header.
func WithBearerToken(token string) ClientOption {
	return func(c *DefaultClient) {
		c.token = token
	}
}

// WithUserAgent sets the User-Agent header on requests that do not already carry one.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *DefaultClient) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithCookieJar persists cookies across requests.
func WithCookieJar(jar http.CookieJar) ClientOption {
	return func(c *DefaultClient) {
		c.client.Jar = jar
	}
}

// WithCheckRedirect sets the redirect policy.
func WithCheckRedirect(policy func(req *http.Request, via []*http.Request) error) ClientOption {
	return func(c *DefaultClient) {
		c.client.CheckRedirect = policy
	}
}

// DefaultClient is the default HTTP client implementation.
type DefaultClient struct {
	client    *http.Client
	base      http.RoundTripper
	token     string
	userAgent string
}

// NewDefaultClient creates a new DefaultClient with optional configuration.
func NewDefaultClient(opts ...ClientOption) *DefaultClient {
	defer perf.Track(nil, "http.NewDefaultClient")()

	client := &DefaultClient{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	base := client.base
	if base == nil {
		base = http.DefaultTransport
	}

	var transport http.RoundTripper = &userAgentTransport{Base: base, UserAgent: client.userAgent}
	if client.token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: client.token, TokenType: "Bearer"}),
			Base:   transport,
		}
	}
	client.client.Transport = transport

	return client
}

// Do implements Client.Do.
func (c *DefaultClient) Do(req *http.Request) (*http.Response, error) {
	defer perf.Track(nil, "http.DefaultClient.Do")()

	return c.client.Do(req)
}

// userAgentTransport wraps a transport to add a User-Agent header.
type userAgentTransport struct {
	Base      http.RoundTripper
	UserAgent string
}

// RoundTrip implements http.RoundTripper interface.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" && t.UserAgent != "" {
		// RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.UserAgent)
	}
	return t.Base.RoundTrip(req)
}

// IsSuccess reports whether the status code is in the 2xx range.
func IsSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

// DrainAndClose discards the rest of a response body and closes it so the connection can be reused.
func DrainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
