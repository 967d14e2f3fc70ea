package auth

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=$GOFILE -destination=mock_browser_test.go -package=$GOPACKAGE

import (
	"context"
	"time"
)

// DefaultBrowserTimeout bounds each navigation and each wait for a page element.
const DefaultBrowserTimeout = 30 * time.Second

// BrowserOptions are passed through to the browser driver.
type BrowserOptions struct {
	ExecutablePath string
	NoSandbox      bool
	Headless       bool
	Timeout        time.Duration
}

// Cookie is a cookie read from a browser.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// Browser is a single page of a launched browser.
type Browser interface {
	// Navigate loads url, waits for the load event and returns the URL the page landed on.
	Navigate(ctx context.Context, url string) (string, error)
	// Fill types value into the element matching selector.
	Fill(ctx context.Context, selector, value string) error
	// Click clicks the element matching selector.
	Click(ctx context.Context, selector string) error
	// WaitFor waits until an element matching selector is visible.
	WaitFor(ctx context.Context, selector string) error
	// Cookies returns every cookie of the browser context.
	Cookies(ctx context.Context) ([]Cookie, error)
	// Close shuts the browser down.
	Close() error
}

// BrowserLauncher starts browsers.
type BrowserLauncher interface {
	Launch(ctx context.Context, opts BrowserOptions) (Browser, error)
}
