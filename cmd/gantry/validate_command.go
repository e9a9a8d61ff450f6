package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gantry/internal/blueprint"
	"gantry/internal/workflow"
)

func newValidateBlueprintCommand(ctx *commandContext) *cobra.Command {
	var workdir string
	var blueprintPath string
	var format string

	cmd := &cobra.Command{
		Use:   "validate-blueprint",
		Short: "Validate the workspace blueprint and record the outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := ctx.resolveWorkdir(cmd, workdir)
			if err != nil {
				return err
			}
			var result blueprint.ValidationResult
			err = ctx.withOrchestrator(func(orch *workflow.Orchestrator) error {
				_, res, err := orch.ValidateBlueprint(cmd.Context(), resolved, blueprintPath)
				result = res
				return err
			})
			if err != nil {
				return err
			}

			if format == "json" {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				renderValidation(cmd, result)
			}
			if !result.OK {
				return fmt.Errorf("blueprint validation failed with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Run workspace directory")
	cmd.Flags().StringVar(&blueprintPath, "blueprint", "", "Validate this document and repoint the run at it")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")
	return cmd
}

func renderValidation(cmd *cobra.Command, result blueprint.ValidationResult) {
	out := cmd.OutOrStdout()
	for _, msg := range result.Errors {
		fmt.Fprintf(out, "error: %s\n", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", msg)
	}
	if result.OK {
		fmt.Fprintf(out, "Blueprint valid (%d warning(s)); stage B is ready for review.\n", len(result.Warnings))
	}
}
