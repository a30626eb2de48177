package resolver

import "fmt"

// ConfigError reports a malformed local or remote configuration: a
// document that fails to parse or a rule with a contradictory constraint
// combination. It names the source and, when known, the offending field.
type ConfigError struct {
	// Source identifies where the bad configuration came from: a file
	// path for the local layer, a URL for a remote policy.
	Source string

	// Field is the offending field name, if the problem is field-level.
	Field string

	// Message describes what is wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid validation configuration from %s", e.Source)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %q)", msg, e.Field)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
