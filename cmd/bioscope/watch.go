package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"bioscope-hq/bioscope/pkg/annotation"
	"bioscope-hq/bioscope/pkg/cli"
	"bioscope-hq/bioscope/pkg/history"
	"bioscope-hq/bioscope/pkg/policy/fetch"
	"bioscope-hq/bioscope/pkg/policy/resolver"
	"bioscope-hq/bioscope/pkg/project"
	"bioscope-hq/bioscope/pkg/telemetry/metrics"
)

var (
	watchMetricsAddr      string
	watchRetentionCron    string
	watchFetchesPerMinute int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and re-check compliance on config changes",
	Long: `Run until interrupted, re-evaluating all tracked metadata records
whenever the project configuration changes. Also runs scheduled
retention cleanup of old check runs and expired policy cache entries,
and can expose Prometheus metrics over HTTP.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")
	watchCmd.Flags().StringVar(&watchRetentionCron, "retention-schedule", "0 3 * * *", "cron schedule for retention cleanup (empty disables)")
	watchCmd.Flags().IntVar(&watchFetchesPerMinute, "fetches-per-minute", 6, "rate limit for remote policy fetches (0 disables)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	validationMetrics := metrics.NewValidation(registry)

	store, err := openCache(root)
	if err != nil {
		return err
	}
	defer store.Close()

	var res *resolver.Resolver
	if noRemote {
		res = resolver.New(nil, logger)
	} else {
		res = resolver.New(fetch.NewFetcher(fetch.FetcherConfig{
			Cache:            store,
			Timeout:          10 * time.Second,
			FetchesPerMinute: watchFetchesPerMinute,
			Logger:           logger,
			Metrics:          validationMetrics,
		}), logger)
	}

	historyPath := project.HistoryDBPath(root)
	if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
		return cli.NewCommandError("watch", err)
	}
	runs, err := history.NewSQLiteStore(historyPath)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer runs.Close()

	scheduler := history.NewScheduler(history.RetentionConfig{
		Schedule: watchRetentionCron,
	}, runs, store, logger)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer scheduler.Stop()

	if watchMetricsAddr != "" {
		srv := &http.Server{
			Addr: watchMetricsAddr,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{
				EnableOpenMetrics: true,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", "addr", watchMetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	engine := annotation.NewEngine(logger)

	evaluate := func() {
		paths, err := annotation.TrackedRecords(root)
		if err != nil {
			logger.Error("failed to list tracked records", "error", err)
			return
		}
		if len(paths) == 0 {
			logger.Info("no tracked metadata records")
			return
		}

		result, err := res.Resolve(ctx, root)
		if err != nil {
			logger.Error("configuration resolution failed", "error", cli.Describe(err))
			return
		}
		for _, warning := range result.Warnings {
			logger.Warn(warning)
		}

		reports := engine.EvaluateFiles(ctx, root, paths, result.Config)
		for _, report := range reports {
			validationMetrics.RecordEvaluation(report.Compliant)
		}
		summary := annotation.Summarize(reports)
		logger.Info("evaluated tracked records",
			"total", summary.Total,
			"compliant", summary.Compliant,
			"non_compliant", summary.NonCompliant,
		)
		recordRuns(ctx, root, reports, result, logger)
	}

	evaluate()

	watcher, err := project.NewConfigWatcher(root, logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer watcher.Stop()

	cmd.PrintErrln("Watching", project.ConfigPath(root), "(ctrl-c to stop)")

	return watcher.Watch(ctx, func() {
		res.Invalidate(root)
		evaluate()
	})
}
