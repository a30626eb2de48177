package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bioscope-hq/bioscope/pkg/cli"
	"bioscope-hq/bioscope/pkg/project"
)

var setRemoteFlags struct {
	url             string
	cacheDuration   int
	fallbackToLocal bool
}

var setRemoteValidationCmd = &cobra.Command{
	Use:   "set-remote-validation",
	Short: "Point the project at a remote validation policy",
	Long: `Configure an institution-wide validation policy served from a URL.
The policy is fetched over HTTPS, cached under the project's cache
directory, and merged under the local configuration: remote required
fields can only be extended locally, and local field rules override
remote ones per field.

Example:
  bioscope config set-remote-validation \
    --url https://cluster.example.com/validation.yaml \
    --cache-duration 7200 --fallback-to-local`,
	RunE: runSetRemoteValidation,
}

var showRemoteValidationCmd = &cobra.Command{
	Use:   "show-remote-validation",
	Short: "Show the remote validation configuration and cache state",
	RunE:  runShowRemoteValidation,
}

var removeRemoteValidationCmd = &cobra.Command{
	Use:   "remove-remote-validation",
	Short: "Remove the remote validation configuration",
	RunE:  runRemoveRemoteValidation,
}

var clearValidationCacheCmd = &cobra.Command{
	Use:   "clear-validation-cache",
	Short: "Clear cached remote validation policies",
	Long: `Remove all cached remote policies. The next compliance check fetches
the remote policy again; a cleared entry behaves exactly like one that
was never fetched.`,
	RunE: runClearValidationCache,
}

func init() {
	setRemoteValidationCmd.Flags().StringVar(&setRemoteFlags.url, "url", "", "remote policy URL (required)")
	setRemoteValidationCmd.Flags().IntVar(&setRemoteFlags.cacheDuration, "cache-duration", project.DefaultCacheDurationSeconds, "cache freshness window in seconds")
	setRemoteValidationCmd.Flags().BoolVar(&setRemoteFlags.fallbackToLocal, "fallback-to-local", true, "use local configuration when the remote is unreachable")
	_ = setRemoteValidationCmd.MarkFlagRequired("url")
	configCmd.AddCommand(setRemoteValidationCmd)

	configCmd.AddCommand(showRemoteValidationCmd)
	configCmd.AddCommand(removeRemoteValidationCmd)
	configCmd.AddCommand(clearValidationCacheCmd)
}

func runSetRemoteValidation(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	cfg, err := project.Load(root)
	if err != nil {
		return cli.NewCommandError("set-remote-validation", err)
	}

	fallback := setRemoteFlags.fallbackToLocal
	cfg.AnnotationValidation.RemoteConfig = &project.RemoteRef{
		URL:                  setRemoteFlags.url,
		CacheDurationSeconds: setRemoteFlags.cacheDuration,
		FallbackToLocal:      &fallback,
	}

	if err := project.Save(root, cfg); err != nil {
		return cli.NewCommandError("set-remote-validation", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set remote validation URL: %s\n", setRemoteFlags.url)
	fmt.Fprintf(out, "Cache duration: %d seconds\n", setRemoteFlags.cacheDuration)
	fmt.Fprintf(out, "Fallback to local: %t\n", fallback)
	return nil
}

func runShowRemoteValidation(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	cfg, err := project.Load(root)
	if err != nil {
		return cli.NewCommandError("show-remote-validation", err)
	}

	out := cmd.OutOrStdout()
	ref := cfg.AnnotationValidation.RemoteConfig
	if ref == nil {
		fmt.Fprintln(out, "No remote validation configuration.")
		fmt.Fprintln(out, "Use 'bioscope config set-remote-validation --url <url>' to add one.")
		return nil
	}

	fmt.Fprintln(out, "Remote validation configuration:")
	fmt.Fprintf(out, "  URL: %s\n", ref.URL)
	fmt.Fprintf(out, "  Cache duration: %d seconds\n", ref.CacheDurationSeconds)
	fmt.Fprintf(out, "  Fallback to local: %t\n", ref.FallsBackToLocal())

	store, err := openCache(root)
	if err != nil {
		return cli.NewCommandError("show-remote-validation", err)
	}
	defer store.Close()

	entry, err := store.Get(context.Background(), ref.URL)
	if err != nil {
		return cli.NewCommandError("show-remote-validation", err)
	}
	if entry == nil {
		fmt.Fprintln(out, "  Cache: not fetched yet")
		return nil
	}

	state := "stale"
	if entry.FreshAt(time.Now(), ref.CacheDuration()) {
		state = "fresh"
	}
	fmt.Fprintf(out, "  Cache: %s (fetched %s)\n", state, entry.FetchedAt.Format(time.RFC3339))
	return nil
}

func runRemoveRemoteValidation(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	cfg, err := project.Load(root)
	if err != nil {
		return cli.NewCommandError("remove-remote-validation", err)
	}

	if cfg.AnnotationValidation.RemoteConfig == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No remote validation configuration to remove.")
		return nil
	}

	cfg.AnnotationValidation.RemoteConfig = nil
	if err := project.Save(root, cfg); err != nil {
		return cli.NewCommandError("remove-remote-validation", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Removed remote validation configuration")
	return nil
}

func runClearValidationCache(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	store, err := openCache(root)
	if err != nil {
		return cli.NewCommandError("clear-validation-cache", err)
	}
	defer store.Close()

	if err := store.ClearAll(context.Background()); err != nil {
		return cli.NewCommandError("clear-validation-cache", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Cleared validation cache")
	return nil
}
