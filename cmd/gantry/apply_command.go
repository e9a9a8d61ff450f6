package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gantry/internal/scaffold"
	"gantry/internal/workflow"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var workdir string
	var repoRoot string
	var format string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Execute the scaffold plan for an approved blueprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := ctx.resolveWorkdir(cmd, workdir)
			if err != nil {
				return err
			}
			return ctx.withOrchestrator(func(orch *workflow.Orchestrator) error {
				outcome, err := orch.Apply(cmd.Context(), resolved, repoRoot, overwrite)
				if err != nil {
					return err
				}
				// Per-operation failures are reported in the outcome
				// list; only validation and gating errors abort.
				if format == "json" {
					return writeJSON(cmd, outcome.Outcomes)
				}
				renderApply(cmd, outcome)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Run workspace directory")
	cmd.Flags().StringVar(&repoRoot, "repo-root", "", "Scaffold target root (defaults to the run workspace)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files instead of skipping them")
	return cmd
}

func renderApply(cmd *cobra.Command, outcome *workflow.ApplyOutcome) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(outcome.Outcomes))
	for _, o := range outcome.Outcomes {
		detail := o.Detail
		rows = append(rows, []string{string(o.Status), o.Op.TargetPath, detail})
	}
	if stdoutIsTerminal() {
		fmt.Fprintln(out, renderTable([]string{"Outcome", "Target", "Detail"}, rows))
	} else {
		for _, row := range rows {
			fmt.Fprintf(out, "%-15s %s", row[0], row[1])
			if row[2] != "" {
				fmt.Fprintf(out, "  (%s)", row[2])
			}
			fmt.Fprintln(out)
		}
	}

	s := outcome.Summary
	fmt.Fprintf(out, "%d written, %d updated, %d skipped, %d failed\n",
		s.Written, s.Updated, s.Skipped, s.Failed)
	if hasSkips(outcome.Outcomes) {
		fmt.Fprintln(out, "Existing files were left untouched; re-run with --overwrite to replace them.")
	}
}

func hasSkips(outcomes []scaffold.OperationOutcome) bool {
	for _, o := range outcomes {
		if o.Status == scaffold.OutcomeSkipped {
			return true
		}
	}
	return false
}
