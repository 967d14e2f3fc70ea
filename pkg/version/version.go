// Package version holds the build version, set at link time with
// -ldflags "-X github.com/cloudposse/hcloud-projects/pkg/version.Version=v1.2.3".
package version

// Version is the released version of the CLI.
var Version = "test"

// UserAgent is the User-Agent sent with every HTTP request.
func UserAgent() string {
	return "hcloud-projects/" + Version
}
