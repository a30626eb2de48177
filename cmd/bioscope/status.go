package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"bioscope-hq/bioscope/pkg/annotation"
	"bioscope-hq/bioscope/pkg/cli"
	"bioscope-hq/bioscope/pkg/history"
	"bioscope-hq/bioscope/pkg/policy/resolver"
	"bioscope-hq/bioscope/pkg/project"
)

var statusCmd = &cobra.Command{
	Use:   "status [file...]",
	Short: "Show annotation compliance for tracked metadata records",
	Long: `Evaluate tracked metadata records against the effective validation
configuration. With no arguments every tracked record is evaluated;
otherwise only the given project-relative paths are.

Exit codes: 0 all compliant, 2 one or more non-compliant, 1 on
configuration or fetch errors.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths, err = annotation.TrackedRecords(root)
		if err != nil {
			return cli.NewCommandError("status", err)
		}
	}
	if len(paths) == 0 {
		cmd.Println("No tracked metadata records.")
		return nil
	}

	res, closer, err := newResolver(root, logger)
	if err != nil {
		return err
	}
	defer closer()

	ctx := context.Background()
	result, err := res.Resolve(ctx, root)
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		cmd.PrintErrln("Warning:", warning)
	}

	engine := annotation.NewEngine(logger)
	reports := engine.EvaluateFiles(ctx, root, paths, result.Config)

	cli.RenderReports(cmd.OutOrStdout(), reports)

	recordRuns(ctx, root, reports, result, logger)

	if annotation.Summarize(reports).NonCompliant > 0 {
		return errNonCompliant
	}
	return nil
}

// recordRuns appends one history entry per evaluated record. History is
// best effort: failures are logged, never surfaced to the caller, so a
// broken history database cannot mask the compliance result.
func recordRuns(ctx context.Context, root string, reports map[string]annotation.Report, result *resolver.Result, logger *slog.Logger) {
	dbPath := project.HistoryDBPath(root)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Warn("failed to create history directory", "path", dbPath, "error", err)
		return
	}

	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn("failed to open history database", "path", dbPath, "error", err)
		return
	}
	defer store.Close()

	paths := make([]string, 0, len(reports))
	for p := range reports {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		report := reports[p]
		run := &history.CheckRun{
			RecordPath:   p,
			Compliant:    report.Compliant,
			Issues:       report.Issues,
			PolicySource: result.Source,
		}
		if err := store.Append(ctx, run); err != nil {
			logger.Warn("failed to record check run", "record", p, "error", err)
			continue
		}
	}
}
