package cmd

import (
	"github.com/spf13/cobra"

	log "github.com/cloudposse/hcloud-projects/pkg/logger"
)

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a project by name",
		Args:  cobra.ExactArgs(1),
		RunE:  executeDeleteCommand,
	}
	addTokenFlag(cmd)
	return cmd
}

func executeDeleteCommand(cmd *cobra.Command, args []string) error {
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

	log.Debug("Deleting project", "name", args[0], "id", id)
	if err := client.DeleteProject(ctx, id); err != nil {
		return err
	}

	printSuccess(cmd.ErrOrStderr(), "Deleted project %s (%d)", args[0], id)
	return nil
}
