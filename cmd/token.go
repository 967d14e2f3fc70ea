package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <name>",
		Short: "Issue an API token scoped to a project",
		Args:  cobra.ExactArgs(1),
		RunE:  executeTokenCommand,
	}
	addTokenFlag(cmd)
	return cmd
}

func executeTokenCommand(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := operationContext(cmd)
	defer cancel()

	id, err := resolveProjectID(ctx, cfg, client, args[0])
	if err != nil {
		return err
	}

	token, err := client.IssueProjectToken(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
