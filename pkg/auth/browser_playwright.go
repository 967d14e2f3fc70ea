package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
	"github.com/cloudposse/hcloud-projects/pkg/perf"
)

// PlaywrightLauncher launches Chromium through playwright.
type PlaywrightLauncher struct{}

// NewPlaywrightLauncher creates a launcher backed by the playwright driver.
func NewPlaywrightLauncher() *PlaywrightLauncher {
	return &PlaywrightLauncher{}
}

// Launch starts the playwright driver and a Chromium instance with a single page.
func (l *PlaywrightLauncher) Launch(ctx context.Context, opts BrowserOptions) (Browser, error) {
	defer perf.Track(nil, "auth.PlaywrightLauncher.Launch")()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrBrowserLaunchFailed, err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultBrowserTimeout
	}

	pw, err := playwright.Run(&playwright.RunOptions{
		Browsers:            []string{"chromium"},
		SkipInstallBrowsers: opts.ExecutablePath != "",
	})
	if err != nil {
		return nil, errUtils.Build(fmt.Errorf("%w: starting playwright: %w", errUtils.ErrBrowserLaunchFailed, err)).
			WithHint("Install the playwright driver and Chromium, or use --strategy http").
			Err()
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless:        playwright.Bool(opts.Headless),
		ChromiumSandbox: playwright.Bool(!opts.NoSandbox),
		Timeout:         playwright.Float(milliseconds(ctx, opts.Timeout)),
	}
	if opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecutablePath)
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, errUtils.Build(fmt.Errorf("%w: %w", errUtils.ErrBrowserLaunchFailed, err)).
			WithHint("Pass --headless-path to use an installed Chromium, or --headless-no-sandbox when running as root").
			WithContext("executable_path", opts.ExecutablePath).
			Err()
	}

	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: opening page: %w", errUtils.ErrBrowserLaunchFailed, err)
	}

	log.Debug("Launched browser", "headless", opts.Headless, "sandbox", !opts.NoSandbox, "version", browser.Version())

	return &playwrightBrowser{pw: pw, browser: browser, page: page, timeout: opts.Timeout}, nil
}

type playwrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	timeout time.Duration
}

func (b *playwrightBrowser) Navigate(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", driverError(err)
	}

	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(milliseconds(ctx, b.timeout)),
	})
	if err != nil {
		return "", driverError(err)
	}
	return b.page.URL(), nil
}

func (b *playwrightBrowser) Fill(ctx context.Context, selector, value string) error {
	if err := ctx.Err(); err != nil {
		return driverError(err)
	}

	return driverError(b.page.Locator(selector).Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(milliseconds(ctx, b.timeout)),
	}))
}

func (b *playwrightBrowser) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return driverError(err)
	}

	return driverError(b.page.Locator(selector).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(milliseconds(ctx, b.timeout)),
	}))
}

func (b *playwrightBrowser) WaitFor(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return driverError(err)
	}

	return driverError(b.page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(milliseconds(ctx, b.timeout)),
	}))
}

func (b *playwrightBrowser) Cookies(ctx context.Context) ([]Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, driverError(err)
	}

	raw, err := b.page.Context().Cookies()
	if err != nil {
		return nil, driverError(err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain})
	}
	return cookies, nil
}

func (b *playwrightBrowser) Close() error {
	return errors.Join(b.browser.Close(), b.pw.Stop())
}

// driverError maps driver and context timeouts to ErrLoginTimeout.
func driverError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", errUtils.ErrLoginTimeout, err)
	}
	return err
}

// milliseconds returns the driver timeout for one step: timeout, shortened to the context deadline.
func milliseconds(ctx context.Context, timeout time.Duration) float64 {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = max(remaining, time.Millisecond)
		}
	}
	return float64(timeout.Milliseconds())
}
