package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gantry/internal/workflow"
)

func newFinishCommand(ctx *commandContext) *cobra.Command {
	var workdir string
	var force bool

	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Delete a run workspace",
		Long:  "Deletes the run workspace directory. Directories outside the configured workspace root are refused unless --force is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := ctx.resolveWorkdir(cmd, workdir)
			if err != nil {
				return err
			}
			return ctx.withOrchestrator(func(orch *workflow.Orchestrator) error {
				if err := orch.Finish(cmd.Context(), resolved, force); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", resolved)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Run workspace directory")
	cmd.Flags().BoolVar(&force, "force", false, "Delete even outside the workspace root")
	return cmd
}
