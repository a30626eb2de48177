package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bioscope-hq/bioscope/pkg/cli"
	"bioscope-hq/bioscope/pkg/history"
	"bioscope-hq/bioscope/pkg/project"
)

var (
	historyLimit int
	historyPurge time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent compliance check runs",
	Long: `List the most recent compliance check runs recorded by check and
status, newest first. With --purge-older-than, delete runs older than
the given duration instead.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to show")
	historyCmd.Flags().DurationVar(&historyPurge, "purge-older-than", 0, "delete runs older than this duration (e.g. 2160h) instead of listing")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	dbPath := project.HistoryDBPath(root)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		cmd.Println("No check history recorded yet.")
		return nil
	}

	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	ctx := context.Background()

	if historyPurge > 0 {
		deleted, err := store.Purge(ctx, time.Now().Add(-historyPurge))
		if err != nil {
			return cli.NewCommandError("history", err)
		}
		cmd.Printf("Purged %d check run(s).\n", deleted)
		return nil
	}

	runs, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	if len(runs) == 0 {
		cmd.Println("No check history recorded yet.")
		return nil
	}

	for _, run := range runs {
		verdict := "ok"
		if !run.Compliant {
			verdict = "invalid"
		}
		cmd.Printf("%s  %-7s  %s  (policy: %s)\n",
			run.CheckedAt.Format(time.RFC3339), verdict, run.RecordPath, run.PolicySource)
		for _, issue := range run.Issues {
			cmd.Println("    -", issue)
		}
	}
	cmd.Println(strings.Repeat("-", 40))
	cmd.Printf("%d run(s)\n", len(runs))

	return nil
}
