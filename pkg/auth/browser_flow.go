package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
	"github.com/cloudposse/hcloud-projects/pkg/perf"
	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

// Default page selectors of the console login.
const (
	DefaultUsernameSelector = "#_username"
	DefaultPasswordSelector = "#_password"
	DefaultSubmitSelector   = "#submit-login"
	DefaultReadySelector    = ".user-details__robotcn"
)

// BrowserFlow logs in through a browser and reads the API token the console stores in a cookie.
type BrowserFlow struct {
	launcher   BrowserLauncher
	options    BrowserOptions
	consoleURL string
	loginURL   string
	cookieName string
	selectors  schema.BrowserSelectors
}

// NewBrowserFlow creates a browser login flow that starts browsers with launcher.
func NewBrowserFlow(cfg *schema.Configuration, launcher BrowserLauncher) *BrowserFlow {
	defer perf.Track(cfg, "auth.NewBrowserFlow")()

	selectors := cfg.Browser.Selectors
	selectors.Username = lo.CoalesceOrEmpty(selectors.Username, DefaultUsernameSelector)
	selectors.Password = lo.CoalesceOrEmpty(selectors.Password, DefaultPasswordSelector)
	selectors.Submit = lo.CoalesceOrEmpty(selectors.Submit, DefaultSubmitSelector)
	selectors.Ready = lo.CoalesceOrEmpty(selectors.Ready, DefaultReadySelector)

	timeout := cfg.Browser.Timeout
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}

	return &BrowserFlow{
		launcher: launcher,
		options: BrowserOptions{
			ExecutablePath: cfg.Browser.ExecutablePath,
			NoSandbox:      cfg.Browser.NoSandbox,
			Headless:       cfg.Browser.Headless,
			Timeout:        timeout,
		},
		consoleURL: cfg.Console.URL,
		loginURL:   cfg.Identity.LoginURL,
		cookieName: lo.CoalesceOrEmpty(cfg.Browser.CookieName, DefaultTokensCookie),
		selectors:  selectors,
	}
}

// AcquireUserToken implements TokenAcquirer.
func (f *BrowserFlow) AcquireUserToken(ctx context.Context, username, password string) (Token, error) {
	defer perf.Track(nil, "auth.BrowserFlow.AcquireUserToken")()

	if err := validateCredentials(username, password); err != nil {
		return "", err
	}

	consoleHost, err := f.consoleHost()
	if err != nil {
		return "", err
	}

	browser, err := f.launcher.Launch(ctx, f.options)
	if err != nil {
		if errors.Is(err, errUtils.ErrBrowserLaunchFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", errUtils.ErrBrowserLaunchFailed, err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.Debug("Failed to close browser", "error", closeErr)
		}
	}()

	landed, err := browser.Navigate(ctx, f.consoleURL)
	if err != nil {
		return "", stepError(ctx, "navigate", f.consoleURL, err)
	}
	if !strings.HasPrefix(landed, f.loginURL) {
		return "", errUtils.Build(fmt.Errorf("%w: expected navigation to the login page %s, got %s",
			errUtils.ErrUnexpectedPage, f.loginURL, landed)).
			WithContext("expected", f.loginURL).
			WithContext("observed", landed).
			Err()
	}

	log.Debug("Submitting login form", "url", landed)

	if err := browser.Fill(ctx, f.selectors.Username, username); err != nil {
		return "", stepError(ctx, "fill", f.selectors.Username, err)
	}
	if err := browser.Fill(ctx, f.selectors.Password, password); err != nil {
		return "", stepError(ctx, "fill", f.selectors.Password, err)
	}
	if err := browser.Click(ctx, f.selectors.Submit); err != nil {
		return "", stepError(ctx, "click", f.selectors.Submit, err)
	}
	if err := browser.WaitFor(ctx, f.selectors.Ready); err != nil {
		return "", stepError(ctx, "wait for", f.selectors.Ready, err)
	}

	cookies, err := browser.Cookies(ctx)
	if err != nil {
		return "", stepError(ctx, "read cookies of", consoleHost, err)
	}

	cookie, ok := lo.Find(cookies, func(c Cookie) bool {
		return c.Name == f.cookieName && c.Domain == consoleHost
	})
	if !ok {
		return "", errUtils.Build(fmt.Errorf("%w: %s at %s", errUtils.ErrCookieNotFound, f.cookieName, consoleHost)).
			WithContext("cookie", f.cookieName).
			WithContext("domain", consoleHost).
			WithContext("cookies_seen", len(cookies)).
			Err()
	}

	value, err := DecodeTokensCookie(cookie.Value)
	if err != nil {
		return "", err
	}

	log.Debug("Acquired user token", "strategy", schema.LoginStrategyBrowser)
	return Token(value), nil
}

func (f *BrowserFlow) consoleHost() (string, error) {
	u, err := url.Parse(f.consoleURL)
	if err != nil || u.Hostname() == "" {
		return "", errUtils.Build(fmt.Errorf("%w: console URL %q has no host", errUtils.ErrInvalidConfig, f.consoleURL)).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}
	return u.Hostname(), nil
}

// stepError reports a failed browser step; timeouts and an expired context surface as ErrLoginTimeout.
func stepError(ctx context.Context, action, target string, err error) error {
	if errors.Is(err, errUtils.ErrLoginTimeout) {
		return fmt.Errorf("%s %s: %w", action, target, err)
	}
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s %s: %w", errUtils.ErrLoginTimeout, action, target, err)
	}
	return fmt.Errorf("failed to %s %s: %w", action, target, err)
}
