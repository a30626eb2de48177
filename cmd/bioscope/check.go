package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bioscope-hq/bioscope/pkg/annotation"
	"bioscope-hq/bioscope/pkg/cli"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check one metadata record for annotation compliance",
	Long: `Evaluate a single metadata record against the effective validation
configuration and print any violations.

Exit codes: 0 compliant, 2 non-compliant, 1 on configuration or fetch
errors.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
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
	reports := engine.EvaluateFiles(ctx, root, args, result.Config)
	if len(reports) == 0 {
		return cli.NewCommandError("check", fmt.Errorf("no metadata record to check (expected a %s file)", annotation.MetadataExt))
	}

	cli.RenderReports(cmd.OutOrStdout(), reports)

	recordRuns(ctx, root, reports, result, logger)

	if annotation.Summarize(reports).NonCompliant > 0 {
		return errNonCompliant
	}
	return nil
}
