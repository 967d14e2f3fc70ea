package errors

import (
	"errors"
)

// Login flow errors.
var (
	ErrUnexpectedPage        = errors.New("unexpected page")
	ErrTokenNotFound         = errors.New("anti-forgery token not found in login form")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUnexpectedRedirect    = errors.New("unexpected redirect")
	ErrMissingOAuthField     = errors.New("missing OAuth field")
	ErrTokenExtractionFailed = errors.New("failed to extract token")
	ErrCookieNotFound        = errors.New("cookie not found")
	ErrLoginTimeout          = errors.New("timed out waiting for login")
	ErrTooManyRedirects      = errors.New("too many redirects")
	ErrBrowserLaunchFailed   = errors.New("failed to launch browser")
	ErrUnknownLoginStrategy  = errors.New("unknown login strategy")
)

// Cloud API errors.
var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrPageFetchFailed   = errors.New("failed to fetch project page")
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	ErrUnexpectedStatus  = errors.New("unexpected HTTP status")
	ErrResponseDecode    = errors.New("failed to decode response")
)

// Configuration and CLI errors.
var (
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrMissingRequiredValue = errors.New("missing required value")
	ErrInvalidOutputFormat  = errors.New("invalid output format")
	ErrInvalidLogLevel      = errors.New("invalid log level")
)
