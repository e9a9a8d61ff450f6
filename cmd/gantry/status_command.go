package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gantry/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var workdir string
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show workflow state for a run",
		Long:  "Shows the stage table for a run workspace. Without --workdir the most recently active run from the index is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := ctx.resolveWorkdir(cmd, workdir)
			if err != nil {
				return err
			}
			state, err := workflow.LoadState(resolved)
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(cmd, state)
			}
			renderStatus(cmd, state)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Run workspace directory")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")
	return cmd
}

func renderStatus(cmd *cobra.Command, state *workflow.State) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (created %s)\n", state.RunID, state.CreatedAt)
	fmt.Fprintf(out, "Workspace: %s\n", state.WorkdirPath)
	fmt.Fprintf(out, "Current stage: %s (%s)\n", state.CurrentStage, state.CurrentStage.Name())

	rows := make([][]string, 0, len(workflow.Stages()))
	for _, stage := range workflow.Stages() {
		entry := state.Stage(stage)
		marker := ""
		if stage == state.CurrentStage {
			marker = "->"
		}
		rows = append(rows, []string{
			marker,
			fmt.Sprintf("%s (%s)", stage, stage.Name()),
			entry.Status,
			yesNo(entry.UserApproved),
		})
	}

	if stdoutIsTerminal() {
		fmt.Fprintln(out, renderTable([]string{"", "Stage", "Status", "Approved"}, rows))
		return
	}
	for _, row := range rows {
		fmt.Fprintf(out, "%-2s %-22s %-18s approved=%s\n", row[0], row[1], row[2], row[3])
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
