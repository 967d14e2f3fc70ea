package testutils

import (
	"os"
	"strings"
	"testing"
)

// envPrefix is the prefix of every environment variable the CLI reads through viper.
const envPrefix = "HCLOUD_"

// legacyEnvVars are the unprefixed environment variables the CLI still honors.
var legacyEnvVars = []string{
	"HETZNER_USERNAME",
	"HETZNER_PASSWORD",
	"HEADLESS_NO_SANDBOX",
	"HEADLESS_PATH",
}

// IsolateEnv unsets every environment variable the CLI reads, restoring them when the test ends.
// Tests using it must not run in parallel.
func IsolateEnv(t *testing.T) {
	t.Helper()

	keys := append([]string(nil), legacyEnvVars...)
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, envPrefix) {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		// t.Setenv registers the restore; the variable is then removed for the test's duration.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
