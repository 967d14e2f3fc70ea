package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	"github.com/cloudposse/hcloud-projects/pkg/hcloud"
	"github.com/cloudposse/hcloud-projects/pkg/retry"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every project the token can see",
		Args:  cobra.NoArgs,
		RunE:  executeListCommand,
	}
	addTokenFlag(cmd)
	return cmd
}

func executeListCommand(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := operationContext(cmd)
	defer cancel()

	var projects []hcloud.Project
	err = retry.WithPredicate(ctx, &cfg.Retry, func() error {
		var err error
		projects, err = client.ListProjects(ctx)
		return err
	}, retry.RetryOn(errUtils.ErrPageFetchFailed))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, p := range projects {
		fmt.Fprintf(tw, "%d\t%s\n", p.ID, p.Name)
	}
	return tw.Flush()
}
