package annotation

// Origin tags where a piece of the effective configuration came from.
// It is diagnostic only and never affects evaluation.
type Origin string

const (
	// OriginLocal marks a field contributed only by the project config.
	OriginLocal Origin = "local"
	// OriginRemote marks a field contributed only by the remote policy.
	OriginRemote Origin = "remote"
	// OriginMerged marks a field both layers contributed to.
	OriginMerged Origin = "merged"
)

// Config is the effective, fully merged validation configuration consumed
// by the Engine. It is rebuilt by the resolver on each compliance check
// (or served from the resolver's in-process cache) and never persisted in
// merged form.
type Config struct {
	// Enabled gates evaluation entirely. When false every record is
	// reported compliant without inspection.
	Enabled bool

	// RequiredFields lists field names that must be present in a record.
	// Order affects only report rendering; membership is what matters.
	RequiredFields []string

	// FieldRules maps field names to their validation rules.
	FieldRules map[string]Rule

	// Provenance records the origin of each required field and rule.
	Provenance map[string]Origin
}

// DefaultConfig returns the configuration used for a project with no
// validation settings: enabled, with nothing required.
func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		FieldRules: map[string]Rule{},
		Provenance: map[string]Origin{},
	}
}

// IsRequired reports whether the named field is in the required set.
func (c *Config) IsRequired(field string) bool {
	for _, f := range c.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}
