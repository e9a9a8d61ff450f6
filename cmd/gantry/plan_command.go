package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gantry/internal/scaffold"
	"gantry/internal/workflow"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var workdir string
	var repoRoot string
	var format string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the scaffold operations apply would perform",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := ctx.resolveWorkdir(cmd, workdir)
			if err != nil {
				return err
			}
			return ctx.withOrchestrator(func(orch *workflow.Orchestrator) error {
				ops, bp, err := orch.Plan(resolved, repoRoot)
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(cmd, ops)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Plan for agent %s (%d operations):\n", bp.AgentID(), len(ops))
				renderPlan(cmd, ops)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Run workspace directory")
	cmd.Flags().StringVar(&repoRoot, "repo-root", "", "Scaffold target root (defaults to the run workspace)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")
	return cmd
}

func renderPlan(cmd *cobra.Command, ops []scaffold.PlannedOperation) {
	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		source := op.SourceTemplate
		if source == "" {
			source = op.Render
		}
		rows = append(rows, []string{string(op.Action), op.TargetPath, source})
	}

	out := cmd.OutOrStdout()
	if stdoutIsTerminal() {
		fmt.Fprintln(out, renderTable([]string{"Action", "Target", "Source"}, rows))
		return
	}
	for _, row := range rows {
		fmt.Fprintf(out, "%-7s %s", row[0], row[1])
		if row[2] != "" {
			fmt.Fprintf(out, "  (%s)", row[2])
		}
		fmt.Fprintln(out)
	}
}
