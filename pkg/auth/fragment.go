package auth

import (
	"fmt"
	"net/url"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
)

// OAuth fields the console redirect must carry.
const (
	FieldAccessToken = "access_token"
	FieldIDToken     = "id_token"
)

// OAuthFragment holds the form-encoded key/value pairs of a redirect URL's fragment.
type OAuthFragment map[string]string

// ParseFragment parses a raw, still-escaped fragment. When a key repeats, its first value wins.
func ParseFragment(fragment string) (OAuthFragment, error) {
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed URL fragment: %w", errUtils.ErrUnexpectedRedirect, err)
	}

	parsed := make(OAuthFragment, len(values))
	for key, v := range values {
		if len(v) > 0 {
			parsed[key] = v[0]
		}
	}
	return parsed, nil
}

// FragmentFromLocation parses the fragment of a redirect Location.
func FragmentFromLocation(location string) (OAuthFragment, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed redirect location: %w", errUtils.ErrUnexpectedRedirect, err)
	}
	return ParseFragment(u.EscapedFragment())
}

// Require returns the values of keys, failing on the first one that is absent or empty.
func (f OAuthFragment) Require(keys ...string) ([]string, error) {
	values := make([]string, 0, len(keys))
	for _, key := range keys {
		value := f[key]
		if value == "" {
			return nil, errUtils.Build(fmt.Errorf("%w: %s", errUtils.ErrMissingOAuthField, key)).
				WithContext("field", key).
				Err()
		}
		values = append(values, value)
	}
	return values, nil
}
