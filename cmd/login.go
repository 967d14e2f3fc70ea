package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudposse/hcloud-projects/pkg/auth"
	"github.com/cloudposse/hcloud-projects/pkg/config"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
)

// newTokenAcquirer is replaced in tests that exercise the browser strategy without a browser.
var newTokenAcquirer = auth.NewTokenAcquirer

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Generate a user API token from account credentials",
		Long: `Log in to the cloud console with an account username and password and print a user API token. ` +
			`The token can create and delete projects and issue project tokens.`,
		Args: cobra.NoArgs,
		RunE: executeLoginCommand,
	}

	cmd.Flags().StringP("username", "u", "", fmt.Sprintf("Account username (env %s)", config.UsernameEnvVar))
	cmd.Flags().StringP("password", "p", "", fmt.Sprintf("Account password (env %s)", config.PasswordEnvVar))
	cmd.Flags().String("strategy", "", "Login strategy: http or browser (env HCLOUD_LOGIN_STRATEGY)")
	cmd.Flags().Bool("headless-no-sandbox", false, fmt.Sprintf("Disable the headless browser sandbox (env %s)", config.HeadlessNoSandboxEnvVar))
	cmd.Flags().String("headless-path", "", fmt.Sprintf("Path to the browser binary (env %s)", config.HeadlessPathEnvVar))

	return cmd
}

func executeLoginCommand(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)

	ctx, cancel := operationContext(cmd)
	defer cancel()

	acquirer, err := newTokenAcquirer(cfg)
	if err != nil {
		return err
	}

	log.Debug("Logging in", "strategy", cfg.Login.Strategy, "user", cfg.Login.Username)
	token, err := acquirer.AcquireUserToken(ctx, cfg.Login.Username, cfg.Login.Password)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	printSuccess(cmd.ErrOrStderr(), "Logged in as %s", cfg.Login.Username)
	return nil
}
