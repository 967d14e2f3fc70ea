// Package hcloud is a client for the cloud console's private project API: project listing and lookup by
// name, project creation and deletion, and token issuance.
package hcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	httpClient "github.com/cloudposse/hcloud-projects/pkg/http"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
	"github.com/cloudposse/hcloud-projects/pkg/perf"
	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

const (
	// DefaultBaseURL is the cloud API base, including its version prefix.
	DefaultBaseURL = "https://api.hetzner.cloud/v1"
	// DefaultPerPage is the page size used when listing projects.
	DefaultPerPage = 25

	maxResponseSize = 8 << 20
)

// Client calls the cloud API, authenticating with a bearer token when one is set.
type Client struct {
	baseURL string
	perPage int
	http    httpClient.Client
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient httpClient.Client
	httpOpts   []httpClient.ClientOption
}

// WithHTTPClient replaces the HTTP client. The caller is then responsible for authentication.
func WithHTTPClient(client httpClient.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithHTTPOptions passes options to the default HTTP client.
func WithHTTPOptions(opts ...httpClient.ClientOption) Option {
	return func(o *options) {
		o.httpOpts = append(o.httpOpts, opts...)
	}
}

// NewClient creates a client for the API described by cfg. An empty token creates an unauthenticated client,
// which can only exchange OAuth tokens for a user token.
func NewClient(cfg *schema.Configuration, token string, opts ...Option) *Client {
	defer perf.Track(cfg, "hcloud.NewClient")()

	baseURL := DefaultBaseURL
	perPage := DefaultPerPage
	if cfg != nil {
		if cfg.API.URL != "" {
			baseURL = cfg.API.URL
		}
		if cfg.API.PerPage > 0 {
			perPage = cfg.API.PerPage
		}
		// Caller options come after these and win.
		opts = append([]Option{WithHTTPOptions(
			httpClient.WithTimeout(cfg.HTTP.Timeout),
			httpClient.WithUserAgent(cfg.HTTP.UserAgent),
		)}, opts...)
	}
	if token != "" {
		opts = append(opts, WithHTTPOptions(httpClient.WithBearerToken(token)))
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.httpClient
	if client == nil {
		client = httpClient.NewDefaultClient(o.httpOpts...)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		perPage: perPage,
		http:    client,
	}
}

// PerPage returns the page size used when listing projects.
func (c *Client) PerPage() int {
	return c.perPage
}

// do sends a request with an optional JSON body and decodes a JSON response into out when out is non-nil.
// Transport failures wrap ErrHTTPRequestFailed, non-2xx responses ErrUnexpectedStatus and undecodable bodies
// ErrResponseDecode.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %w", errUtils.ErrHTTPRequestFailed, err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%w: %w", errUtils.ErrHTTPRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Trace("Calling cloud API", "method", method, "path", req.URL.Path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", errUtils.ErrHTTPRequestFailed, method, req.URL.Path, err)
	}
	defer httpClient.DrainAndClose(resp)

	if !httpClient.IsSuccess(resp.StatusCode) {
		return fmt.Errorf("%w: %s %s returned %s%s", errUtils.ErrUnexpectedStatus, method, req.URL.Path, resp.Status,
			apiErrorMessage(resp.Body))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", errUtils.ErrResponseDecode, method, req.URL.Path, err)
	}

	return nil
}

// apiErrorMessage extracts the message of an API error body, formatted for appending to an error string.
func apiErrorMessage(body io.Reader) string {
	var apiErr ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxResponseSize)).Decode(&apiErr); err != nil {
		return ""
	}
	if apiErr.Error.Message == "" {
		return ""
	}
	return fmt.Sprintf(" (%s: %s)", apiErr.Error.Code, apiErr.Error.Message)
}
