package annotation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Outcome is the result of validating one field value against one rule.
type Outcome struct {
	// Passed is true when the value satisfies every constraint.
	Passed bool

	// Reasons lists one message per violated constraint, in the order
	// constraints were checked.
	Reasons []string
}

// ValidateField evaluates a single field value against a rule. It is pure
// and never fails for malformed input: an unexpected value shape is a
// validation failure, not an error. Rules are assumed to have passed
// Rule.Check at resolve time.
func ValidateField(value any, field string, rule Rule) Outcome {
	var reasons []string

	if rule.Type != "" && !matchesType(value, rule.Type) {
		reasons = append(reasons, fmt.Sprintf("field %q: wrong type: expected %s got %s", field, rule.Type, typeName(value)))
		// Remaining constraints are type-specific; a type mismatch makes
		// them meaningless for this value.
		return Outcome{Passed: false, Reasons: reasons}
	}

	switch rule.Type {
	case TypeString:
		s := value.(string)
		if rule.MinLength != nil {
			if n := utf8.RuneCountInString(strings.TrimSpace(s)); n < *rule.MinLength {
				reasons = append(reasons, fmt.Sprintf("field %q: must be at least %d characters, got %d", field, *rule.MinLength, n))
			}
		}
		if rule.Pattern != "" {
			if re, err := compilePattern(rule.Pattern); err != nil || !re.MatchString(s) {
				reasons = append(reasons, fmt.Sprintf("field %q: must match pattern %q", field, rule.Pattern))
			}
		}
		if rule.Format == FormatDate && !parseableDate(s) {
			reasons = append(reasons, fmt.Sprintf("field %q: must be a valid ISO date", field))
		}

	case TypeObject:
		obj := asObject(value)
		for _, key := range rule.RequiredKeys {
			if _, ok := obj[key]; !ok {
				reasons = append(reasons, fmt.Sprintf("field %q: must contain key %q", field, key))
			}
		}

	case TypeArray:
		arr := value.([]any)
		if rule.MinLength != nil && len(arr) < *rule.MinLength {
			reasons = append(reasons, fmt.Sprintf("field %q: must contain at least %d items, got %d", field, *rule.MinLength, len(arr)))
		}
	}

	return Outcome{Passed: len(reasons) == 0, Reasons: reasons}
}

// matchesType reports whether the runtime shape of value matches the
// declared field type. Records come from JSON or YAML decoding into any,
// so numbers may appear as float64, int, or json.Number.
func matchesType(value any, t FieldType) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeObject:
		return asObject(value) != nil
	case TypeArray:
		_, ok := value.([]any)
		return ok
	case TypeNumber:
		switch value.(type) {
		case float64, float32, int, int64, json.Number:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	}
	return true
}

// asObject normalizes the decoded shapes of a mapping value. Returns nil
// when the value is not a mapping.
func asObject(value any) map[string]any {
	switch m := value.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprintf("%v", k)] = v
		}
		return out
	}
	return nil
}

// typeName reports the schema-level name of a value's runtime shape, for
// use in mismatch messages.
func typeName(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, json.Number:
		return "number"
	case []any:
		return "array"
	case nil:
		return "null"
	}
	if asObject(value) != nil {
		return "object"
	}
	return fmt.Sprintf("%T", value)
}

// compilePattern anchors a rule pattern so it must cover the whole
// value. Anchoring with a group keeps alternations and non-greedy
// quantifiers matching the full string rather than a leftmost prefix.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")$")
}

// parseableDate accepts ISO-8601 calendar dates and date-times, matching
// what metadata records produced by annotation tooling actually contain.
func parseableDate(s string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
