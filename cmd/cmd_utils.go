package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	"github.com/cloudposse/hcloud-projects/pkg/config"
	"github.com/cloudposse/hcloud-projects/pkg/hcloud"
	"github.com/cloudposse/hcloud-projects/pkg/retry"
	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

const colorGreen = "#00D787"

var successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)).Bold(true)

// addTokenFlag adds -t/--token to commands that call the API with a user token.
func addTokenFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("token", "t", "", fmt.Sprintf("User API token (env %s)", config.UserTokenEnvVar))
}

// newAPIClient returns a client authenticated with the configured user token.
func newAPIClient(cfg *schema.Configuration) (*hcloud.Client, error) {
	if cfg.API.Token == "" {
		return nil, errUtils.Build(fmt.Errorf("%w: user API token", errUtils.ErrMissingRequiredValue)).
			WithHintf("Pass --token or set %s; `hcloud-projects login` prints one", config.UserTokenEnvVar).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}
	return hcloud.NewClient(cfg, cfg.API.Token), nil
}

// resolveProjectID looks up a project by name, retrying the whole lookup when a page cannot be fetched.
func resolveProjectID(ctx context.Context, cfg *schema.Configuration, client *hcloud.Client, name string) (uint64, error) {
	var id uint64
	err := retry.WithPredicate(ctx, &cfg.Retry, func() error {
		var err error
		id, err = client.FindProjectID(ctx, name)
		return err
	}, retry.RetryOn(errUtils.ErrPageFetchFailed))
	if err != nil {
		return 0, err
	}
	return id, nil
}

// printSuccess writes a status line to the diagnostic stream; stdout carries only results.
func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}
