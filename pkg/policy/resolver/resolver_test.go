package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bioscope-hq/bioscope/internal/policytest"
	"bioscope-hq/bioscope/pkg/annotation"
	"bioscope-hq/bioscope/pkg/policy/cache"
	"bioscope-hq/bioscope/pkg/policy/fetch"
	"bioscope-hq/bioscope/pkg/project"
)

func newTestProject(t *testing.T, configYAML string) string {
	t.Helper()
	root := t.TempDir()
	path := project.ConfigPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	fetcher := fetch.NewFetcher(fetch.FetcherConfig{Cache: cache.NewMemoryStore()})
	return New(fetcher, nil)
}

func TestResolveMissingConfig(t *testing.T) {
	root := t.TempDir()

	result, err := newTestResolver(t).Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if !result.Config.Enabled {
		t.Error("a fresh project defaults to enabled")
	}
	if len(result.Config.RequiredFields) != 0 {
		t.Errorf("required fields = %v, want none", result.Config.RequiredFields)
	}
	if result.Source != SourceLocal {
		t.Errorf("source = %q, want %q", result.Source, SourceLocal)
	}
}

func TestResolveLocalOnly(t *testing.T) {
	root := newTestProject(t, `
annotation_validation:
  enabled: true
  minimum_required_fields:
    - name
    - description
  field_validation:
    name:
      type: string
      min_length: 1
`)

	result, err := newTestResolver(t).Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	cfg := result.Config
	if got := cfg.RequiredFields; len(got) != 2 || got[0] != "name" || got[1] != "description" {
		t.Errorf("required fields = %v", got)
	}
	rule, ok := cfg.FieldRules["name"]
	if !ok || rule.Type != annotation.TypeString || rule.MinLength == nil || *rule.MinLength != 1 {
		t.Errorf("name rule = %+v", rule)
	}
	for _, field := range []string{"name", "description"} {
		if cfg.Provenance[field] != annotation.OriginLocal {
			t.Errorf("provenance[%s] = %q, want local", field, cfg.Provenance[field])
		}
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", result.Warnings)
	}
}

func TestResolveExplicitlyDisabled(t *testing.T) {
	root := newTestProject(t, "annotation_validation:\n  enabled: false\n")

	result, err := newTestResolver(t).Resolve(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if result.Config.Enabled {
		t.Error("explicitly disabled config resolved as enabled")
	}
}

func TestResolveMalformedLocalConfig(t *testing.T) {
	root := newTestProject(t, "annotation_validation: [not: a: mapping\n")

	_, err := newTestResolver(t).Resolve(context.Background(), root)
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("error = %v, want *ConfigError", err)
	}
	if configErr.Source != project.ConfigPath(root) {
		t.Errorf("source = %q, want the config path", configErr.Source)
	}
}

func TestResolveContradictoryLocalRule(t *testing.T) {
	root := newTestProject(t, `
annotation_validation:
  field_validation:
    name:
      type: number
      min_length: 3
`)

	_, err := newTestResolver(t).Resolve(context.Background(), root)
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("error = %v, want *ConfigError", err)
	}
	if configErr.Field != "name" {
		t.Errorf("field = %q, want name", configErr.Field)
	}
}

func remoteProjectYAML(url string) string {
	return `
annotation_validation:
  enabled: true
  minimum_required_fields:
    - name
    - description
  field_validation:
    name:
      type: string
      min_length: 5
  remote_config:
    url: ` + url + `
    cache_duration: 3600
    fallback_to_local: true
`
}

const remotePolicyYAML = `
enabled: true
minimum_required_fields:
  - name
  - description
  - license
field_validation:
  name:
    type: string
    min_length: 1
  license:
    type: string
`

func TestResolveMergesRemote(t *testing.T) {
	server := policytest.NewServer(remotePolicyYAML)
	defer server.Close()

	root := newTestProject(t, remoteProjectYAML(server.URL()))

	result, err := newTestResolver(t).Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if result.Source != SourceRemote {
		t.Errorf("source = %q, want %q", result.Source, SourceRemote)
	}

	cfg := result.Config

	// Union of required fields, remote order first.
	want := []string{"name", "description", "license"}
	if len(cfg.RequiredFields) != len(want) {
		t.Fatalf("required fields = %v, want %v", cfg.RequiredFields, want)
	}
	for i := range want {
		if cfg.RequiredFields[i] != want[i] {
			t.Errorf("required[%d] = %q, want %q", i, cfg.RequiredFields[i], want[i])
		}
	}

	// The local rule for name fully replaces the remote's.
	rule := cfg.FieldRules["name"]
	if rule.MinLength == nil || *rule.MinLength != 5 {
		t.Errorf("name rule = %+v, want the local min_length 5", rule)
	}

	// The remote-only rule survives.
	if cfg.FieldRules["license"].Type != annotation.TypeString {
		t.Errorf("license rule = %+v", cfg.FieldRules["license"])
	}

	if cfg.Provenance["name"] != annotation.OriginMerged {
		t.Errorf("provenance[name] = %q, want merged", cfg.Provenance["name"])
	}
	if cfg.Provenance["license"] != annotation.OriginRemote {
		t.Errorf("provenance[license] = %q, want remote", cfg.Provenance["license"])
	}

	// A record without the remote-required license is non-compliant.
	engine := annotation.NewEngine(nil)
	report := engine.Evaluate(annotation.Record{
		"name":        "coral-survey",
		"description": "x",
	}, cfg)
	if report.Compliant {
		t.Error("record lacking a remote-required field must be non-compliant")
	}
}

func TestResolveLocalEnabledOverridesRemote(t *testing.T) {
	server := policytest.NewServer("enabled: true\nminimum_required_fields: [name]\n")
	defer server.Close()

	root := newTestProject(t, `
annotation_validation:
  enabled: false
  remote_config:
    url: `+server.URL()+`
`)

	result, err := newTestResolver(t).Resolve(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if result.Config.Enabled {
		t.Error("an explicit local enabled=false must win over the remote")
	}
}

func TestResolveFallsBackWhenRemoteUnavailable(t *testing.T) {
	server := policytest.NewServer(remotePolicyYAML)
	server.SetStatusCode(503)
	defer server.Close()

	root := newTestProject(t, remoteProjectYAML(server.URL()))

	result, err := newTestResolver(t).Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve() error = %v, want local fallback", err)
	}
	if result.Source != SourceLocal {
		t.Errorf("source = %q, want %q", result.Source, SourceLocal)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", result.Warnings)
	}

	// Local layer only: no license requirement.
	if result.Config.IsRequired("license") {
		t.Error("fallback config must not carry remote requirements")
	}
}

func TestResolveFailsWhenFallbackDisabled(t *testing.T) {
	server := policytest.NewServer(remotePolicyYAML)
	server.SetStatusCode(503)
	defer server.Close()

	root := newTestProject(t, `
annotation_validation:
  remote_config:
    url: `+server.URL()+`
    fallback_to_local: false
`)

	_, err := newTestResolver(t).Resolve(context.Background(), root)
	var fetchErr *fetch.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError when fallback is disabled", err)
	}
}

func TestResolveStaleCacheFallback(t *testing.T) {
	server := policytest.NewServer(remotePolicyYAML)
	defer server.Close()

	store := cache.NewMemoryStore()
	fetcher := fetch.NewFetcher(fetch.FetcherConfig{Cache: store})

	root := newTestProject(t, `
annotation_validation:
  minimum_required_fields: [name]
  remote_config:
    url: `+server.URL()+`
    cache_duration: 1
`)

	// First resolve warms the cache.
	first := New(fetcher, nil)
	if _, err := first.Resolve(context.Background(), root); err != nil {
		t.Fatal(err)
	}

	// Past the 1 second cache duration, with the server now failing, a
	// fresh resolver degrades to the stale cached copy and says so.
	time.Sleep(1100 * time.Millisecond)
	server.SetStatusCode(500)

	second := New(fetcher, nil)
	result, err := second.Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve() error = %v, want stale-cache success", err)
	}
	if result.Source != SourceRemoteStale {
		t.Errorf("source = %q, want %q", result.Source, SourceRemoteStale)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %v, want a staleness warning", result.Warnings)
	}
	if !result.Config.IsRequired("license") {
		t.Error("stale result must still carry the remote requirements")
	}
}

func TestResolveContradictoryRemoteRule(t *testing.T) {
	server := policytest.NewServer(`
field_validation:
  name:
    type: object
    pattern: ".*"
`)
	defer server.Close()

	root := newTestProject(t, `
annotation_validation:
  remote_config:
    url: `+server.URL()+`
`)

	_, err := newTestResolver(t).Resolve(context.Background(), root)
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("error = %v, want *ConfigError for the remote rule", err)
	}
	if configErr.Source != server.URL() {
		t.Errorf("source = %q, want the remote url", configErr.Source)
	}
}

func TestResolveNilFetcherSkipsRemote(t *testing.T) {
	root := newTestProject(t, `
annotation_validation:
  minimum_required_fields: [name]
  remote_config:
    url: https://example.org/policy.yaml
`)

	result, err := New(nil, nil).Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if result.Source != SourceLocal {
		t.Errorf("source = %q, want %q", result.Source, SourceLocal)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %v, want a skip warning", result.Warnings)
	}
}

func TestResolveMemoizesPerRoot(t *testing.T) {
	server := policytest.NewServer(remotePolicyYAML)
	defer server.Close()

	root := newTestProject(t, remoteProjectYAML(server.URL()))
	res := newTestResolver(t)

	if _, err := res.Resolve(context.Background(), root); err != nil {
		t.Fatal(err)
	}

	// Break the config on disk: the memo hides it until invalidated.
	if err := os.WriteFile(project.ConfigPath(root), []byte("annotation_validation: [broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := res.Resolve(context.Background(), root); err != nil {
		t.Errorf("memoized Resolve() error = %v", err)
	}

	res.Invalidate(root)
	if _, err := res.Resolve(context.Background(), root); err == nil {
		t.Error("invalidated resolver must re-read the broken config and fail")
	}
}

func TestMergeDeduplicatesRequiredFields(t *testing.T) {
	remote := &fetch.Document{MinimumRequiredFields: []string{"name", "name", "license"}}
	local := project.ValidationSettings{MinimumRequiredFields: []string{"license", "name", "creator"}}

	cfg := merge(remote, local)

	want := []string{"name", "license", "creator"}
	if len(cfg.RequiredFields) != len(want) {
		t.Fatalf("required fields = %v, want %v", cfg.RequiredFields, want)
	}
	for i := range want {
		if cfg.RequiredFields[i] != want[i] {
			t.Errorf("required[%d] = %q, want %q", i, cfg.RequiredFields[i], want[i])
		}
	}
	if cfg.Provenance["license"] != annotation.OriginMerged {
		t.Errorf("provenance[license] = %q, want merged", cfg.Provenance["license"])
	}
	if cfg.Provenance["creator"] != annotation.OriginLocal {
		t.Errorf("provenance[creator] = %q, want local", cfg.Provenance["creator"])
	}
}

func TestMergeEnabledDefaultsTrue(t *testing.T) {
	cfg := merge(&fetch.Document{}, project.ValidationSettings{})
	if !cfg.Enabled {
		t.Error("merge with neither side setting enabled must default to true")
	}
}
