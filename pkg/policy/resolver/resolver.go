package resolver

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"bioscope-hq/bioscope/pkg/annotation"
	"bioscope-hq/bioscope/pkg/policy/fetch"
	"bioscope-hq/bioscope/pkg/project"
)

// Resolver builds effective validation configurations. Resolution is
// idempotent and may be retried; the resolver holds no locks across a
// fetch. Resolved configurations are memoized per project root for the
// life of the process; Invalidate drops the memo (wired to the project
// config watcher by long-running callers).
type Resolver struct {
	fetcher *fetch.Fetcher
	logger  *slog.Logger

	mu     sync.Mutex
	cached map[string]*resolved
}

type resolved struct {
	config   *annotation.Config
	source   string
	warnings []string
}

// Result is the outcome of a successful resolution.
type Result struct {
	// Config is the effective validation configuration.
	Config *annotation.Config

	// Source records where the effective configuration came from.
	Source string

	// Warnings carries non-fatal degradations, such as a remote fetch
	// failure absorbed by fallback. Never silently dropped: the resolver
	// also logs each one.
	Warnings []string
}

// Values for Result.Source.
const (
	SourceLocal       = "local"
	SourceRemote      = "remote"
	SourceRemoteStale = "remote-stale"
)

// New creates a Resolver. The fetcher may be nil for projects that never
// configure a remote policy; resolution then fails only if one appears.
func New(fetcher *fetch.Fetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fetcher: fetcher,
		logger:  logger,
		cached:  make(map[string]*resolved),
	}
}

// Resolve produces the effective validation configuration for a project
// root, serving a memoized copy when one exists.
func (r *Resolver) Resolve(ctx context.Context, root string) (*Result, error) {
	r.mu.Lock()
	if memo, ok := r.cached[root]; ok {
		r.mu.Unlock()
		return &Result{Config: memo.config, Source: memo.source, Warnings: memo.warnings}, nil
	}
	r.mu.Unlock()

	result, err := r.resolve(ctx, root)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cached[root] = &resolved{config: result.Config, source: result.Source, warnings: result.Warnings}
	r.mu.Unlock()

	return result, nil
}

// Invalidate drops the memoized configuration for a project root.
func (r *Resolver) Invalidate(root string) {
	r.mu.Lock()
	delete(r.cached, root)
	r.mu.Unlock()
}

func (r *Resolver) resolve(ctx context.Context, root string) (*Result, error) {
	cfg, err := project.Load(root)
	if err != nil {
		return nil, &ConfigError{
			Source:  project.ConfigPath(root),
			Message: "failed to load local configuration",
			Cause:   err,
		}
	}
	local := cfg.AnnotationValidation

	if err := checkRules(local.FieldValidation, project.ConfigPath(root)); err != nil {
		return nil, err
	}

	if local.RemoteConfig == nil {
		return &Result{Config: buildLocalOnly(local), Source: SourceLocal}, nil
	}

	ref := fetch.Reference{
		URL:             local.RemoteConfig.URL,
		CacheDuration:   local.RemoteConfig.CacheDuration(),
		FallbackToLocal: local.RemoteConfig.FallsBackToLocal(),
	}

	if r.fetcher == nil {
		// Remote fetching disabled for this resolver (e.g. --no-remote).
		warning := "remote validation policy skipped, using local configuration"
		r.logger.Warn("remote policy fetching disabled", "url", ref.URL)
		return &Result{Config: buildLocalOnly(local), Source: SourceLocal, Warnings: []string{warning}}, nil
	}

	remote, err := r.fetcher.Fetch(ctx, ref)
	if err != nil {
		var fetchErr *fetch.FetchError
		if errors.As(err, &fetchErr) && ref.FallbackToLocal {
			warning := "remote validation policy unavailable, using local configuration: " + fetchErr.Error()
			r.logger.Warn("falling back to local validation configuration",
				"url", ref.URL,
				"error", fetchErr,
			)
			return &Result{Config: buildLocalOnly(local), Source: SourceLocal, Warnings: []string{warning}}, nil
		}
		return nil, err
	}

	if err := checkRules(remote.Document.FieldValidation, ref.URL); err != nil {
		return nil, err
	}

	source := SourceRemote
	var warnings []string
	if remote.Stale {
		source = SourceRemoteStale
		warning := "remote validation policy is stale (refetch failed), using cached copy"
		r.logger.Warn("using stale remote validation policy", "url", ref.URL)
		warnings = append(warnings, warning)
	}

	return &Result{Config: merge(remote.Document, local), Source: source, Warnings: warnings}, nil
}

// checkRules validates each rule's internal consistency, surfacing
// contradictory combinations at resolve time so evaluation never sees
// them.
func checkRules(rules map[string]annotation.Rule, source string) error {
	fields := make([]string, 0, len(rules))
	for field := range rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if err := rules[field].Check(field); err != nil {
			return &ConfigError{
				Source:  source,
				Field:   field,
				Message: "invalid rule",
				Cause:   err,
			}
		}
	}
	return nil
}

// buildLocalOnly lifts the local layer into an effective configuration,
// tagging everything with local provenance.
func buildLocalOnly(local project.ValidationSettings) *annotation.Config {
	out := &annotation.Config{
		Enabled:        local.EnabledOrDefault(),
		RequiredFields: append([]string(nil), local.MinimumRequiredFields...),
		FieldRules:     make(map[string]annotation.Rule, len(local.FieldValidation)),
		Provenance:     make(map[string]annotation.Origin),
	}
	for field, rule := range local.FieldValidation {
		out.FieldRules[field] = rule
		out.Provenance[field] = annotation.OriginLocal
	}
	for _, field := range local.MinimumRequiredFields {
		if _, ok := out.Provenance[field]; !ok {
			out.Provenance[field] = annotation.OriginLocal
		}
	}
	return out
}

// merge layers the local settings over a remote policy document.
//
// Required fields are the union of both sets, remote order first, local
// additions after, so an institution-wide requirement can never be
// narrowed locally. Field rules are the remote's overlaid by the
// local's: a local rule fully replaces the remote rule for that field.
// The enabled flag is the local one when explicitly set, else the
// remote's.
func merge(remote *fetch.Document, local project.ValidationSettings) *annotation.Config {
	out := &annotation.Config{
		FieldRules: make(map[string]annotation.Rule),
		Provenance: make(map[string]annotation.Origin),
	}

	switch {
	case local.Enabled != nil:
		out.Enabled = *local.Enabled
	case remote.Enabled != nil:
		out.Enabled = *remote.Enabled
	default:
		out.Enabled = true
	}

	seen := make(map[string]bool)
	for _, field := range remote.MinimumRequiredFields {
		if !seen[field] {
			seen[field] = true
			out.RequiredFields = append(out.RequiredFields, field)
			out.Provenance[field] = annotation.OriginRemote
		}
	}
	for _, field := range local.MinimumRequiredFields {
		if seen[field] {
			out.Provenance[field] = annotation.OriginMerged
			continue
		}
		seen[field] = true
		out.RequiredFields = append(out.RequiredFields, field)
		out.Provenance[field] = annotation.OriginLocal
	}

	for field, rule := range remote.FieldValidation {
		out.FieldRules[field] = rule
		if _, ok := out.Provenance[field]; !ok {
			out.Provenance[field] = annotation.OriginRemote
		}
	}
	for field, rule := range local.FieldValidation {
		if _, fromRemote := remote.FieldValidation[field]; fromRemote {
			out.Provenance[field] = annotation.OriginMerged
		} else if origin, ok := out.Provenance[field]; ok && origin != annotation.OriginLocal {
			out.Provenance[field] = annotation.OriginMerged
		} else {
			out.Provenance[field] = annotation.OriginLocal
		}
		out.FieldRules[field] = rule
	}

	return out
}
