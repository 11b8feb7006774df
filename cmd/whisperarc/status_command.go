package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"whisperarc/internal/ledger"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var recentRuns int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ledger statistics and recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			count, err := store.ArchivedCount(cmd.Context())
			if err != nil {
				return err
			}
			lastRun, err := store.LastRunTimestamp(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ledger: %s\n", store.Path())
			fmt.Fprintf(out, "Archived recordings: %d\n", count)
			if lastRun != nil {
				fmt.Fprintf(out, "Last run: %s\n", lastRun.Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Last run: never")
			}

			runs, err := store.RecentRuns(cmd.Context(), recentRuns)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.RunAt.Format("2006-01-02 15:04:05"),
					strconv.Itoa(run.RecordingsProcessed),
					strconv.Itoa(run.RecordingsArchived),
					strconv.Itoa(run.RecordingsFailed),
				})
			}
			fmt.Fprintln(out, renderTable("Recent Runs",
				[]string{"Run At", "Processed", "Archived", "Failed"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVar(&recentRuns, "runs", 5, "Number of recent runs to list")
	return cmd
}
