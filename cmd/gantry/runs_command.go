package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List known runs from the run index",
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := ctx.openIndex()
			if err != nil {
				return err
			}
			defer func() { _ = index.Close() }()

			runs, err := index.List(cmd.Context())
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded; start one with `gantry start`.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				agent := run.AgentID
				if agent == "" {
					agent = "-"
				}
				rows = append(rows, []string{
					run.RunID,
					agent,
					run.Stage,
					run.Status,
					run.UpdatedAt.Local().Format(time.RFC3339),
					run.Workdir,
				})
			}
			headers := []string{"Run", "Agent", "Stage", "Status", "Updated", "Workdir"}
			if stdoutIsTerminal() {
				fmt.Fprintln(out, renderTable(headers, rows))
				return nil
			}
			for _, row := range rows {
				fmt.Fprintf(out, "%s  %-20s %-5s %-9s %s  %s\n",
					row[0], row[1], row[2], row[3], row[4], row[5])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")
	return cmd
}
