package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/cloudposse/hcloud-projects/internal/testutils"
)

// fakes wires the CLI to an in-process identity provider and cloud API through the environment.
type fakes struct {
	idp *testutils.IdentityProvider
	api *testutils.CloudAPI
}

func setupFakes(t *testing.T) *fakes {
	t.Helper()

	testutils.IsolateEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Cleanup(Cleanup)

	f := &fakes{
		idp: testutils.NewIdentityProvider(t),
		api: testutils.NewCloudAPI(t),
	}

	t.Setenv("HCLOUD_API_URL", f.api.URL())
	t.Setenv("HCLOUD_CONSOLE_URL", f.idp.ConsoleURL())
	t.Setenv("HCLOUD_IDENTITY_AUTHORIZE_URL", f.idp.AuthorizeURL())
	t.Setenv("HCLOUD_IDENTITY_LOGIN_URL", f.idp.LoginURL())
	t.Setenv("HCLOUD_IDENTITY_LOGIN_CHECK_URL", f.idp.LoginCheckURL())
	t.Setenv("HCLOUD_RETRY_INITIAL_DELAY", "1ms")
	t.Setenv("HCLOUD_RETRY_RANDOM_JITTER", "false")

	return f
}

// runCommand executes a fresh command tree and returns what it wrote to stdout and stderr.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
