// Package auth exchanges account credentials for a cloud API user token.
//
// Two interchangeable strategies implement TokenAcquirer: HTTPFlow replays the console's web login with plain
// HTTP requests, and BrowserFlow drives a headless browser through the same login and reads the token the
// console stores in a cookie.
package auth

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=$GOFILE -destination=mock_acquirer_test.go -package=$GOPACKAGE

import (
	"context"
	"fmt"
	"strings"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	"github.com/cloudposse/hcloud-projects/pkg/hcloud"
	"github.com/cloudposse/hcloud-projects/pkg/perf"
	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

// Token is a bearer token for the cloud API. It has no known expiry.
type Token string

// String returns the token value.
func (t Token) String() string {
	return string(t)
}

// TokenAcquirer turns account credentials into a user token.
type TokenAcquirer interface {
	// AcquireUserToken logs in with username and password and returns a token with the account's privileges.
	AcquireUserToken(ctx context.Context, username, password string) (Token, error)
}

// UserTokenIssuer exchanges the OAuth tokens of a console login for an API user token.
type UserTokenIssuer interface {
	IssueUserToken(ctx context.Context, accessToken, idToken string) (string, error)
}

// NewTokenAcquirer returns the acquirer selected by the login strategy in cfg.
func NewTokenAcquirer(cfg *schema.Configuration) (TokenAcquirer, error) {
	defer perf.Track(cfg, "auth.NewTokenAcquirer")()

	switch strategy := strings.ToLower(cfg.Login.Strategy); strategy {
	case "", schema.LoginStrategyHTTP:
		return NewHTTPFlow(cfg, hcloud.NewClient(cfg, "")), nil
	case schema.LoginStrategyBrowser:
		return NewBrowserFlow(cfg, NewPlaywrightLauncher()), nil
	default:
		return nil, errUtils.Build(fmt.Errorf("%w: %q", errUtils.ErrUnknownLoginStrategy, cfg.Login.Strategy)).
			WithHintf("Use --strategy %s or --strategy %s", schema.LoginStrategyHTTP, schema.LoginStrategyBrowser).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}
}

// validateCredentials rejects empty credentials before any request is made.
func validateCredentials(username, password string) error {
	switch {
	case username == "":
		return errUtils.Build(fmt.Errorf("%w: username", errUtils.ErrMissingRequiredValue)).
			WithHint("Pass --username or set HETZNER_USERNAME").
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	case password == "":
		return errUtils.Build(fmt.Errorf("%w: password", errUtils.ErrMissingRequiredValue)).
			WithHint("Pass --password or set HETZNER_PASSWORD").
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}
	return nil
}
