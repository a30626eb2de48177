package fetch

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"bioscope-hq/bioscope/pkg/annotation"
)

// DefaultCacheDuration is applied when a reference does not set one.
const DefaultCacheDuration = 3600 * time.Second

// Reference points at a remote validation policy.
type Reference struct {
	// URL is the policy document location. Required.
	URL string

	// CacheDuration is how long a cached copy stays fresh.
	// Zero means DefaultCacheDuration.
	CacheDuration time.Duration

	// FallbackToLocal tells the resolver whether a fetch failure may
	// degrade to local-only configuration. The fetcher itself only
	// carries the flag.
	FallbackToLocal bool
}

// cacheDuration returns the effective cache duration for the reference.
func (r Reference) cacheDuration() time.Duration {
	if r.CacheDuration <= 0 {
		return DefaultCacheDuration
	}
	return r.CacheDuration
}

// Document is the validation section of a remote policy. Remote policies
// carry no remote_config of their own: they do not chain to further
// remotes.
type Document struct {
	// Enabled is the remote's enabled flag. Nil when the remote does not
	// set one.
	Enabled *bool `yaml:"enabled"`

	// MinimumRequiredFields lists field names the remote requires.
	MinimumRequiredFields []string `yaml:"minimum_required_fields"`

	// FieldValidation maps field names to validation rules.
	FieldValidation map[string]annotation.Rule `yaml:"field_validation"`
}

// Result is a successfully resolved remote policy.
type Result struct {
	// Document is the parsed policy.
	Document *Document

	// Payload is the raw document body, byte-identical to what was
	// fetched (or cached).
	Payload []byte

	// FromCache is true when no network fetch produced this result.
	FromCache bool

	// Stale is true when the result came from a cache entry past its
	// cache duration, returned because a live fetch failed.
	Stale bool
}

// parseDocument decodes a remote policy payload. Servers may wrap the
// validation section in a top-level annotation_validation key or serve
// it bare; both shapes are accepted.
func parseDocument(payload []byte) (*Document, error) {
	var wrapped struct {
		AnnotationValidation *Document `yaml:"annotation_validation"`
	}
	if err := yaml.Unmarshal(payload, &wrapped); err == nil && wrapped.AnnotationValidation != nil {
		return wrapped.AnnotationValidation, nil
	}

	var doc Document
	if err := yaml.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("not a valid policy document: %w", err)
	}
	return &doc, nil
}
