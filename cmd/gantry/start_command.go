package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gantry/internal/workflow"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Create a new run workspace with a seed blueprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(func(orch *workflow.Orchestrator) error {
				state, err := orch.Start(cmd.Context())
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(cmd, state)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Started run %s\n", state.RunID)
				fmt.Fprintf(out, "Workspace: %s\n", state.WorkdirPath)
				fmt.Fprintf(out, "Blueprint draft: %s\n", state.BlueprintPath)
				fmt.Fprintln(out, "Edit the blueprint, then run `gantry validate-blueprint`.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")
	return cmd
}
