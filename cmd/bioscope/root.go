package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"bioscope-hq/bioscope/pkg/cli"
	"bioscope-hq/bioscope/pkg/policy/cache"
	"bioscope-hq/bioscope/pkg/policy/fetch"
	"bioscope-hq/bioscope/pkg/policy/resolver"
	"bioscope-hq/bioscope/pkg/project"
	"bioscope-hq/bioscope/pkg/telemetry/logging"
)

var (
	// Global flags
	logLevel  string
	logFormat string
	noRemote  bool
)

// errNonCompliant signals that evaluation ran cleanly but found
// non-compliant records; it maps to a distinct exit code.
var errNonCompliant = errors.New("non-compliant records found")

var rootCmd = &cobra.Command{
	Use:   "bioscope",
	Short: "bioscope - dataset metadata management with annotation compliance",
	Long: `bioscope manages dataset metadata records and checks them against the
project's annotation requirements, optionally layered under an
institution-wide validation policy fetched from a remote URL.

Compliance checking:
  - required metadata fields per project and per institution
  - per-field rules: type, minimum length, required keys, format, pattern
  - remote policies cached on disk with time-to-live freshness`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and maps errors to exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errNonCompliant) {
			os.Exit(cli.ExitNonCompliant)
		}
		fmt.Fprintln(os.Stderr, "Error:", cli.Describe(err))
		os.Exit(cli.ExitError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json")
	rootCmd.PersistentFlags().BoolVar(&noRemote, "no-remote", false, "skip remote policy fetching, use local configuration only")
}

// newLogger builds the process logger from the global flags.
func newLogger() (*slog.Logger, error) {
	return logging.New(logging.Config{
		Level:  logLevel,
		Format: logFormat,
	})
}

// findProjectRoot locates the enclosing bioscope project.
func findProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, err := project.FindRoot(cwd)
	if err != nil {
		return "", &cli.ProjectError{Message: "not in a bioscope project"}
	}
	return root, nil
}

// openCache opens the project's durable policy cache.
func openCache(root string) (cache.Store, error) {
	dbPath := project.CacheDBPath(root)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return cache.NewSQLiteStore(dbPath)
}

// newResolver wires the cache, fetcher, and resolver for a project.
// The returned closer releases the cache store.
func newResolver(root string, logger *slog.Logger) (*resolver.Resolver, func(), error) {
	if noRemote {
		return resolver.New(nil, logger), func() {}, nil
	}

	store, err := openCache(root)
	if err != nil {
		return nil, nil, err
	}

	fetcher := fetch.NewFetcher(fetch.FetcherConfig{
		Cache:   store,
		Timeout: 10 * time.Second,
		Logger:  logger,
	})

	closer := func() { _ = store.Close() }
	return resolver.New(fetcher, logger), closer, nil
}
