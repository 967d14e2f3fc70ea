package auth

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
)

// DefaultTokensCookie is the cookie in which the console stores its API tokens.
const DefaultTokensCookie = "tokens"

// DecodeTokensCookie extracts the API token from the console's tokens cookie.
//
// The value is form-urlencoded JSON: an object whose keys are chosen by the console and whose values are objects
// carrying a "token" string. The token of the first entry, in document order, is returned.
func DecodeTokensCookie(value string) (string, error) {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return "", fmt.Errorf("%w: cookie is not url-encoded: %w", errUtils.ErrTokenExtractionFailed, err)
	}

	if !json.Valid([]byte(decoded)) {
		return "", fmt.Errorf("%w: cookie does not hold valid JSON", errUtils.ErrTokenExtractionFailed)
	}

	dec := json.NewDecoder(strings.NewReader(decoded))
	start, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUtils.ErrTokenExtractionFailed, err)
	}
	if delim, ok := start.(json.Delim); !ok || delim != '{' {
		return "", fmt.Errorf("%w: cookie JSON is not an object", errUtils.ErrTokenExtractionFailed)
	}
	if !dec.More() {
		return "", fmt.Errorf("%w: cookie JSON object is empty", errUtils.ErrTokenExtractionFailed)
	}

	// Key of the first entry.
	if _, err := dec.Token(); err != nil {
		return "", fmt.Errorf("%w: %w", errUtils.ErrTokenExtractionFailed, err)
	}

	var entry struct {
		Token any `json:"token"`
	}
	if err := dec.Decode(&entry); err != nil {
		return "", fmt.Errorf("%w: first cookie entry is not an object: %w", errUtils.ErrTokenExtractionFailed, err)
	}

	token, ok := entry.Token.(string)
	if !ok || token == "" {
		return "", fmt.Errorf("%w: first cookie entry has no token string", errUtils.ErrTokenExtractionFailed)
	}

	return token, nil
}
