package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gantry/internal/workflow"
)

func newApproveCommand(ctx *commandContext) *cobra.Command {
	var workdir string

	cmd := &cobra.Command{
		Use:   "approve <stage>",
		Short: "Approve the current stage and advance the workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, ok := workflow.ParseStage(args[0])
			if !ok {
				return fmt.Errorf("unknown stage %q (use A-E or interview, blueprint, scaffold, implementation, verification)", args[0])
			}
			resolved, err := ctx.resolveWorkdir(cmd, workdir)
			if err != nil {
				return err
			}
			return ctx.withOrchestrator(func(orch *workflow.Orchestrator) error {
				state, err := orch.Approve(cmd.Context(), resolved, stage)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Approved stage %s (%s)\n", stage, stage.Name())
				if state.CurrentStage == workflow.StageDone {
					fmt.Fprintln(out, "Workflow complete; run `gantry finish` to clean up the workspace.")
				} else {
					fmt.Fprintf(out, "Current stage: %s (%s)\n", state.CurrentStage, state.CurrentStage.Name())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Run workspace directory")
	return cmd
}
