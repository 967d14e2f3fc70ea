package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "plain error", err: errors.New("boom"), expected: 1},
		{name: "attached exit code", err: WithExitCode(errors.New("usage"), 2), expected: 2},
		{name: "wrapped exit code", err: fmt.Errorf("outer: %w", WithExitCode(ErrInvalidConfig, 3)), expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetExitCode(tt.err))
		})
	}
}

func TestWithExitCode_Nil(t *testing.T) {
	assert.Nil(t, WithExitCode(nil, 2))
}

func TestWithExitCode_PreservesChain(t *testing.T) {
	err := WithExitCode(ErrProjectNotFound, 4)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.Equal(t, ErrProjectNotFound.Error(), err.Error())
}

func TestExit_UsesOsExit(t *testing.T) {
	original := OsExit
	defer func() { OsExit = original }()

	var code int
	OsExit = func(c int) { code = c }

	Exit(7)
	assert.Equal(t, 7, code)
}
