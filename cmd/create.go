package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	"github.com/cloudposse/hcloud-projects/pkg/hcloud"
)

// Output formats of the create command.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE:  executeCreateCommand,
	}

	addTokenFlag(cmd)
	cmd.Flags().StringP("format", "f", FormatJSON, "Output format: json or yaml")

	return cmd
}

func executeCreateCommand(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)

	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if format != FormatJSON && format != FormatYAML {
		return errUtils.Build(fmt.Errorf("%w: %q", errUtils.ErrInvalidOutputFormat, format)).
			WithHintf("Use --format %s or --format %s", FormatJSON, FormatYAML).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := operationContext(cmd)
	defer cancel()

	project, err := client.CreateProject(ctx, args[0])
	if err != nil {
		return err
	}

	if err := writeProject(cmd.OutOrStdout(), format, project); err != nil {
		return err
	}
	printSuccess(cmd.ErrOrStderr(), "Created project %s (%d)", project.Name, project.ID)
	return nil
}

func writeProject(w io.Writer, format string, project *hcloud.Project) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(project); err != nil {
			return fmt.Errorf("failed to encode project as YAML: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(project); err != nil {
			return fmt.Errorf("failed to encode project as JSON: %w", err)
		}
		return nil
	}
}
