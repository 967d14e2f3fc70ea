package auth

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
)

func TestDecodeTokensCookie(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{
			name:  "single entry",
			value: url.QueryEscape(`{"a1b2":{"token":"secret","expires":1700000000}}`),
			want:  "secret",
		},
		{
			name:  "first entry in document order",
			value: url.QueryEscape(`{"zzz":{"token":"first"},"aaa":{"token":"second"}}`),
			want:  "first",
		},
		{
			name:  "plus decodes to space",
			value: "%7B%22k%22%3A%7B%22token%22%3A%22a+b%22%7D%7D",
			want:  "a b",
		},
		{
			name:  "not encoded",
			value: `{"k":{"token":"plain"}}`,
			want:  "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTokensCookie(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeTokensCookie_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "bad escape", value: "%7B%22k%22%3A%zz"},
		{name: "truncated escape", value: "%7"},
		{name: "invalid json", value: url.QueryEscape(`{"k":{"token":"x"}`)},
		{name: "trailing data", value: url.QueryEscape(`{"k":{"token":"x"}} trailing`)},
		{name: "array", value: url.QueryEscape(`[{"token":"x"}]`)},
		{name: "string", value: url.QueryEscape(`"token"`)},
		{name: "empty object", value: url.QueryEscape(`{}`)},
		{name: "entry not an object", value: url.QueryEscape(`{"k":"token"}`)},
		{name: "entry without token", value: url.QueryEscape(`{"k":{"other":"x"}}`)},
		{name: "token not a string", value: url.QueryEscape(`{"k":{"token":42}}`)},
		{name: "null token", value: url.QueryEscape(`{"k":{"token":null}}`)},
		{name: "empty token", value: url.QueryEscape(`{"k":{"token":""}}`)},
		{name: "first entry lacks token", value: url.QueryEscape(`{"a":{},"b":{"token":"x"}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got string
				err error
			)
			require.NotPanics(t, func() {
				got, err = DecodeTokensCookie(tt.value)
			})
			assert.ErrorIs(t, err, errUtils.ErrTokenExtractionFailed)
			assert.Empty(t, got)
		})
	}
}
