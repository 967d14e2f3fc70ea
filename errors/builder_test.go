package errors

import (
	"io"
	"testing"

	cockroach "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_NilError(t *testing.T) {
	assert.Nil(t, Build(nil).WithHint("ignored").Err())
}

func TestBuild_SentinelIsMatchable(t *testing.T) {
	err := Build(ErrInvalidCredentials).
		WithHint("Check HETZNER_USERNAME and HETZNER_PASSWORD").
		WithContext("login_url", "https://accounts.example.com/login").
		Err()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, cockroach.Is(err, ErrInvalidCredentials))
	assert.NotErrorIs(t, err, ErrUnexpectedPage)
	assert.Equal(t, []string{"Check HETZNER_USERNAME and HETZNER_PASSWORD"}, cockroach.GetAllHints(err))
}

func TestWrap_KeepsSentinelAndCause(t *testing.T) {
	err := Wrap(ErrPageFetchFailed, io.ErrUnexpectedEOF).
		WithContext("page", 2).
		Err()

	assert.ErrorIs(t, err, ErrPageFetchFailed)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "failed to fetch project page")
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestWrap_NilCause(t *testing.T) {
	err := Wrap(ErrCookieNotFound, nil).Err()
	assert.ErrorIs(t, err, ErrCookieNotFound)
	assert.Equal(t, ErrCookieNotFound.Error(), err.Error())
}

func TestBuild_WithExitCode(t *testing.T) {
	err := Build(ErrInvalidConfig).WithExitCode(ExitCodeUsage).Err()
	assert.Equal(t, ExitCodeUsage, GetExitCode(err))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuild_WithExplanation(t *testing.T) {
	err := Build(ErrUnexpectedPage).
		WithExplanationf("expected %s", "https://accounts.example.com/login").
		Err()

	assert.Contains(t, cockroach.FlattenDetails(err), "expected https://accounts.example.com/login")
}

func TestBuild_ContextIsSortedAndSafe(t *testing.T) {
	err := Build(ErrPageFetchFailed).
		WithContext("project", "staging").
		WithContext("page", 2).
		Err()

	details := cockroach.GetAllSafeDetails(err)
	var payloads []string
	for _, d := range details {
		payloads = append(payloads, d.SafeDetails...)
	}
	assert.Contains(t, payloads, "page=2 project=staging")
}
