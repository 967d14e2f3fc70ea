package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	"github.com/cloudposse/hcloud-projects/pkg/auth/session"
	httpClient "github.com/cloudposse/hcloud-projects/pkg/http"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
	"github.com/cloudposse/hcloud-projects/pkg/perf"
	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

// Login form field names.
const (
	fieldUsername = "_username"
	fieldPassword = "_password"
)

// HTTPFlow logs in by replaying the console's implicit-flow web login over plain HTTP.
type HTTPFlow struct {
	session       session.Config
	loginCheckURL string
	csrfField     string
	issuer        UserTokenIssuer
}

// NewHTTPFlow creates an HTTP login flow that exchanges the resulting OAuth tokens through issuer.
func NewHTTPFlow(cfg *schema.Configuration, issuer UserTokenIssuer) *HTTPFlow {
	defer perf.Track(cfg, "auth.NewHTTPFlow")()

	csrfField := cfg.Identity.CSRFField
	if csrfField == "" {
		csrfField = DefaultCSRFField
	}

	return &HTTPFlow{
		session:       session.ConfigFromSchema(cfg),
		loginCheckURL: cfg.Identity.LoginCheckURL,
		csrfField:     csrfField,
		issuer:        issuer,
	}
}

// AcquireUserToken implements TokenAcquirer.
func (f *HTTPFlow) AcquireUserToken(ctx context.Context, username, password string) (Token, error) {
	defer perf.Track(nil, "auth.HTTPFlow.AcquireUserToken")()

	if err := validateCredentials(username, password); err != nil {
		return "", err
	}

	s, page, err := session.Open(ctx, f.session)
	if err != nil {
		return "", err
	}

	form, err := ParseLoginForm(page.Body)
	if err != nil {
		return "", err
	}
	csrfToken, err := form.CSRFToken(f.csrfField)
	if err != nil {
		return "", err
	}

	fragment, err := f.submitCredentials(ctx, s, url.Values{
		fieldUsername: {username},
		fieldPassword: {password},
		f.csrfField:   {csrfToken},
	})
	if err != nil {
		return "", err
	}

	values, err := fragment.Require(FieldAccessToken, FieldIDToken)
	if err != nil {
		return "", err
	}
	accessToken, idToken := values[0], values[1]

	logIDTokenClaims(idToken)

	token, err := f.issuer.IssueUserToken(ctx, accessToken, idToken)
	if err != nil {
		return "", err
	}

	log.Debug("Acquired user token", "strategy", schema.LoginStrategyHTTP)
	return Token(token), nil
}

// submitCredentials posts the login form and reads the OAuth fragment off the captured console redirect.
func (f *HTTPFlow) submitCredentials(ctx context.Context, s *session.Session, form url.Values) (OAuthFragment, error) {
	if f.loginCheckURL == "" {
		return nil, errUtils.Build(fmt.Errorf("%w: identity login-check URL is required", errUtils.ErrInvalidConfig)).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}

	resp, err := s.PostForm(ctx, f.loginCheckURL, form)
	if err != nil {
		return nil, err
	}
	defer httpClient.DrainAndClose(resp)

	config := s.Config()
	resolved := session.ResolvedURL(resp)
	if resolved == config.LoginURL {
		return nil, errUtils.Build(errUtils.ErrInvalidCredentials).
			WithHint("Check the username and password; the login page was shown again").
			WithExitCode(errUtils.ExitCodeFailure).
			Err()
	}

	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, config.ConsoleURL) {
		observed := redactLocation(location)
		return nil, errUtils.Build(fmt.Errorf("%w: expected a redirect to %s, got %q from %s (HTTP %d)",
			errUtils.ErrUnexpectedRedirect, config.ConsoleURL, observed, resolved, resp.StatusCode)).
			WithHint("The identity provider may require an additional login step this tool does not support").
			WithContext("expected", config.ConsoleURL).
			WithContext("location", observed).
			WithContext("resolved", resolved).
			Err()
	}

	log.Debug("Captured console redirect", "resolved", resolved)

	return FragmentFromLocation(location)
}

// redactLocation drops the fragment of a location, which may carry tokens.
func redactLocation(location string) string {
	before, _, found := strings.Cut(location, "#")
	if found {
		return before + "#…"
	}
	return before
}
