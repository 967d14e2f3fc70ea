package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id <name>",
		Short: "Print the ID of a project",
		Args:  cobra.ExactArgs(1),
		RunE:  executeIDCommand,
	}
	addTokenFlag(cmd)
	return cmd
}

func executeIDCommand(cmd *cobra.Command, args []string) error {
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

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
