package annotation

import (
	"fmt"
)

// FieldType identifies the expected runtime shape of a metadata field.
type FieldType string

const (
	// TypeString expects a text value.
	TypeString FieldType = "string"
	// TypeObject expects a key-value mapping.
	TypeObject FieldType = "object"
	// TypeArray expects a list of values.
	TypeArray FieldType = "array"
	// TypeNumber expects a numeric value.
	TypeNumber FieldType = "number"
	// TypeBoolean expects a true/false value.
	TypeBoolean FieldType = "boolean"
)

// FormatDate is the only supported string format. It requires the value
// to parse as an ISO-8601 calendar date or date-time.
const FormatDate = "date"

// Rule describes one constraint on one metadata field.
// The zero value is a rule with no constraints beyond presence.
type Rule struct {
	// Type is the expected runtime shape of the field value.
	Type FieldType `yaml:"type,omitempty" json:"type,omitempty"`

	// MinLength is the minimum character count for strings or the
	// minimum element count for arrays.
	MinLength *int `yaml:"min_length,omitempty" json:"min_length,omitempty"`

	// RequiredKeys lists keys that must exist in an object value.
	RequiredKeys []string `yaml:"required_keys,omitempty" json:"required_keys,omitempty"`

	// Format names a string format constraint ("date").
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// Pattern is a regular expression the full string value must match.
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// Check validates the rule's internal consistency. A constraint that only
// applies to a different type than the rule declares is a configuration
// error. Check is called at resolve time; the field validator assumes
// rules it receives have already passed Check.
func (r Rule) Check(field string) error {
	switch r.Type {
	case TypeString, TypeObject, TypeArray, TypeNumber, TypeBoolean, "":
	default:
		return fmt.Errorf("field %q: unknown type %q", field, r.Type)
	}

	if r.MinLength != nil {
		if *r.MinLength < 0 {
			return fmt.Errorf("field %q: min_length must be non-negative, got %d", field, *r.MinLength)
		}
		if r.Type != TypeString && r.Type != TypeArray {
			return fmt.Errorf("field %q: min_length requires type string or array, got %q", field, r.Type)
		}
	}

	if len(r.RequiredKeys) > 0 && r.Type != TypeObject {
		return fmt.Errorf("field %q: required_keys requires type object, got %q", field, r.Type)
	}

	if r.Format != "" {
		if r.Type != TypeString {
			return fmt.Errorf("field %q: format requires type string, got %q", field, r.Type)
		}
		if r.Format != FormatDate {
			return fmt.Errorf("field %q: unknown format %q", field, r.Format)
		}
	}

	if r.Pattern != "" {
		if r.Type != TypeString {
			return fmt.Errorf("field %q: pattern requires type string, got %q", field, r.Type)
		}
		if _, err := compilePattern(r.Pattern); err != nil {
			return fmt.Errorf("field %q: invalid pattern: %w", field, err)
		}
	}

	return nil
}
