package testutils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsolateEnv(t *testing.T) {
	t.Setenv("HCLOUD_USER_TOKEN", "secret")
	t.Setenv("HETZNER_USERNAME", "user@example.com")
	t.Setenv("UNRELATED_VAR", "kept")

	t.Run("unsets", func(t *testing.T) {
		IsolateEnv(t)

		_, ok := os.LookupEnv("HCLOUD_USER_TOKEN")
		assert.False(t, ok)
		_, ok = os.LookupEnv("HETZNER_USERNAME")
		assert.False(t, ok)
		assert.Equal(t, "kept", os.Getenv("UNRELATED_VAR"))
	})

	assert.Equal(t, "secret", os.Getenv("HCLOUD_USER_TOKEN"))
	assert.Equal(t, "user@example.com", os.Getenv("HETZNER_USERNAME"))
}
