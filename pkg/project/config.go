package project

import (
	"time"

	"bioscope-hq/bioscope/pkg/annotation"
)

// Config is the project configuration document.
type Config struct {
	// AnnotationValidation is the local validation layer.
	AnnotationValidation ValidationSettings `yaml:"annotation_validation"`
}

// ValidationSettings is the annotation_validation section of the
// configuration document.
type ValidationSettings struct {
	// Enabled gates validation. Nil means "not explicitly set", which
	// matters during remote merge: an explicit local value wins over the
	// remote's, an unset one defers to it.
	Enabled *bool `yaml:"enabled,omitempty"`

	// MinimumRequiredFields lists field names every record must carry.
	MinimumRequiredFields []string `yaml:"minimum_required_fields,omitempty"`

	// FieldValidation maps field names to validation rules.
	FieldValidation map[string]annotation.Rule `yaml:"field_validation,omitempty"`

	// RemoteConfig points at an institution-wide policy, if any.
	RemoteConfig *RemoteRef `yaml:"remote_config,omitempty"`
}

// RemoteRef is the local pointer to an external validation policy.
type RemoteRef struct {
	// URL is the policy document location. Required.
	URL string `yaml:"url"`

	// CacheDurationSeconds is how long a cached copy stays fresh.
	// Zero means the default of 3600.
	CacheDurationSeconds int `yaml:"cache_duration,omitempty"`

	// FallbackToLocal controls whether a fetch failure degrades to
	// local-only configuration. Nil means true.
	FallbackToLocal *bool `yaml:"fallback_to_local,omitempty"`
}

// DefaultCacheDurationSeconds is applied when a remote reference does
// not set a cache duration.
const DefaultCacheDurationSeconds = 3600

// CacheDuration returns the effective cache duration.
func (r *RemoteRef) CacheDuration() time.Duration {
	secs := r.CacheDurationSeconds
	if secs <= 0 {
		secs = DefaultCacheDurationSeconds
	}
	return time.Duration(secs) * time.Second
}

// FallsBackToLocal returns the effective fallback flag (default true).
func (r *RemoteRef) FallsBackToLocal() bool {
	if r.FallbackToLocal == nil {
		return true
	}
	return *r.FallbackToLocal
}

// EnabledOrDefault returns the enabled flag, defaulting to true when the
// document does not set one.
func (s ValidationSettings) EnabledOrDefault() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}
