package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"whisperarc/internal/archiver"
	"whisperarc/internal/document"
	"whisperarc/internal/gitrepo"
	"whisperarc/internal/ledger"
	"whisperarc/internal/recording"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun        bool
		backfill      bool
		sinceFlag     string
		modesFlag     string
		minDurationMS int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Archive new recordings",
		Long: `Scan the recordings directory, render each new recording as markdown,
commit it into the archive repository, and record it in the ledger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			opts := archiver.Options{
				DryRun:        dryRun,
				Backfill:      backfill,
				MinDurationMS: minDurationMS,
			}
			if sinceFlag != "" {
				since, err := parseSince(sinceFlag)
				if err != nil {
					return fmt.Errorf("parse --since: %w", err)
				}
				opts.Since = since
			}
			if modesFlag != "" {
				opts.Modes = splitModes(modesFlag)
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			repo, err := gitrepo.New(cfg.Archive.RepoDir, cfg.Archive.Remote, cfg.Archive.Branch,
				gitrepo.WithBinary(cfg.GitBinary()))
			if err != nil {
				return fmt.Errorf("open archive repository: %w", err)
			}

			arch := archiver.New(
				cfg,
				recording.NewScanner(cfg.Recordings.Dir, logger),
				document.NewRenderer(),
				store,
				repo,
				logger,
			)

			summary, err := arch.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			printSummary(cmd, summary, dryRun)
			if summary.Failed > 0 {
				return fmt.Errorf("%d recording(s) failed to archive", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be archived without writing anything")
	cmd.Flags().BoolVar(&backfill, "backfill", false, "Ignore the run watermark and consider all eligible recordings")
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Only archive recordings at or after this date (ISO-8601)")
	cmd.Flags().StringVar(&modesFlag, "modes", "", "Override the mode filter (comma-separated, e.g. meeting,super)")
	cmd.Flags().Int64Var(&minDurationMS, "min-duration-ms", -1, "Override the minimum duration threshold")

	return cmd
}

func printSummary(cmd *cobra.Command, summary archiver.Summary, dryRun bool) {
	title := "Archive Summary"
	if dryRun {
		title = "Archive Summary (dry run)"
	}
	rows := [][]string{
		{"Total Recordings", strconv.Itoa(summary.TotalCandidates)},
		{"Archived", strconv.Itoa(summary.Archived)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
	}
	if summary.PushAttempted {
		rows = append(rows, []string{"Pushed", yesNo(summary.PushSucceeded)})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(title,
		[]string{"Metric", "Count"}, rows,
		[]columnAlignment{alignLeft, alignRight}))

	if failed := summary.FailedOutcomes(); len(failed) > 0 {
		fmt.Fprintln(out, "\nFailed:")
		for _, outcome := range failed {
			fmt.Fprintf(out, "  - %s: %s\n", outcome.SourceID, outcome.Err)
		}
	}
}

func parseSince(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return recording.ParseTimestamp(value)
}

func splitModes(value string) []string {
	parts := strings.Split(value, ",")
	modes := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			modes = append(modes, trimmed)
		}
	}
	return modes
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
