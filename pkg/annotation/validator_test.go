package annotation

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateFieldTypeMatching(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		rule   Rule
		passed bool
	}{
		{name: "string ok", value: "hello", rule: Rule{Type: TypeString}, passed: true},
		{name: "string wrong type", value: 42.0, rule: Rule{Type: TypeString}, passed: false},
		{name: "object ok", value: map[string]any{"a": 1}, rule: Rule{Type: TypeObject}, passed: true},
		{name: "object from yaml decoding", value: map[any]any{"a": 1}, rule: Rule{Type: TypeObject}, passed: true},
		{name: "object wrong type", value: []any{}, rule: Rule{Type: TypeObject}, passed: false},
		{name: "array ok", value: []any{"x"}, rule: Rule{Type: TypeArray}, passed: true},
		{name: "array wrong type", value: "x", rule: Rule{Type: TypeArray}, passed: false},
		{name: "number float64", value: 3.14, rule: Rule{Type: TypeNumber}, passed: true},
		{name: "number int", value: 7, rule: Rule{Type: TypeNumber}, passed: true},
		{name: "number json.Number", value: json.Number("12"), rule: Rule{Type: TypeNumber}, passed: true},
		{name: "number wrong type", value: "12", rule: Rule{Type: TypeNumber}, passed: false},
		{name: "boolean ok", value: true, rule: Rule{Type: TypeBoolean}, passed: true},
		{name: "boolean wrong type", value: "true", rule: Rule{Type: TypeBoolean}, passed: false},
		{name: "untyped rule accepts anything", value: nil, rule: Rule{}, passed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateField(tt.value, "f", tt.rule)
			if got.Passed != tt.passed {
				t.Errorf("ValidateField(%v) passed = %v, want %v (reasons: %v)",
					tt.value, got.Passed, tt.passed, got.Reasons)
			}
		})
	}
}

func TestValidateFieldTypeMismatchShortCircuits(t *testing.T) {
	// A wrong-typed value gets exactly one issue; the type-specific
	// constraints are not piled on top.
	rule := Rule{Type: TypeString, MinLength: intp(5), Pattern: "^x+$"}
	got := ValidateField(123.0, "name", rule)

	if got.Passed {
		t.Fatal("expected failure for wrong type")
	}
	if len(got.Reasons) != 1 {
		t.Fatalf("expected a single reason, got %v", got.Reasons)
	}
	if !strings.Contains(got.Reasons[0], "wrong type") {
		t.Errorf("reason = %q, want a wrong-type message", got.Reasons[0])
	}
	if !strings.Contains(got.Reasons[0], "expected string got number") {
		t.Errorf("reason = %q, want expected/got type names", got.Reasons[0])
	}
}

func TestValidateFieldMinLength(t *testing.T) {
	rule := Rule{Type: TypeString, MinLength: intp(1)}

	tests := []struct {
		name   string
		value  string
		passed bool
	}{
		{name: "non-empty", value: "x", passed: true},
		{name: "empty string fails", value: "", passed: false},
		{name: "whitespace only counts as empty", value: "   ", passed: false},
		{name: "multibyte runes count as characters", value: "å", passed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateField(tt.value, "name", rule)
			if got.Passed != tt.passed {
				t.Errorf("ValidateField(%q) passed = %v, want %v (reasons: %v)",
					tt.value, got.Passed, tt.passed, got.Reasons)
			}
		})
	}

	got := ValidateField("", "name", rule)
	if len(got.Reasons) != 1 || !strings.Contains(got.Reasons[0], "at least 1 characters") {
		t.Errorf("reasons = %v, want a min-length message", got.Reasons)
	}
}

func TestValidateFieldPattern(t *testing.T) {
	rule := Rule{Type: TypeString, Pattern: `\d{4}-\d{4}`}

	if got := ValidateField("1234-5678", "accession", rule); !got.Passed {
		t.Errorf("full match should pass, got %v", got.Reasons)
	}
	// The pattern must cover the whole value, not a substring.
	if got := ValidateField("x1234-5678y", "accession", rule); got.Passed {
		t.Error("partial match should fail")
	}
	if got := ValidateField("abcd", "accession", rule); got.Passed {
		t.Error("non-match should fail")
	}

	// Alternations pick the longest branch that covers the value, not the
	// leftmost one.
	alt := Rule{Type: TypeString, Pattern: "a|ab"}
	if got := ValidateField("ab", "accession", alt); !got.Passed {
		t.Errorf("alternation covering the whole value should pass, got %v", got.Reasons)
	}
	if got := ValidateField("abc", "accession", alt); got.Passed {
		t.Error("value longer than any alternation branch should fail")
	}
}

func TestValidateFieldDateFormat(t *testing.T) {
	rule := Rule{Type: TypeString, Format: FormatDate}

	tests := []struct {
		value  string
		passed bool
	}{
		{"2026-08-31", true},
		{"2026-08-31T10:30:00", true},
		{"2026-08-31T10:30:00Z", true},
		{"2026-08-31T10:30:00+02:00", true},
		{"31/08/2026", false},
		{"not a date", false},
		{"2026-13-01", false},
	}

	for _, tt := range tests {
		got := ValidateField(tt.value, "created", rule)
		if got.Passed != tt.passed {
			t.Errorf("ValidateField(%q) passed = %v, want %v", tt.value, got.Passed, tt.passed)
		}
	}
}

func TestValidateFieldRequiredKeys(t *testing.T) {
	rule := Rule{Type: TypeObject, RequiredKeys: []string{"@id", "name"}}

	got := ValidateField(map[string]any{"@id": "x", "name": "y", "extra": 1}, "creator", rule)
	if !got.Passed {
		t.Errorf("all keys present should pass, got %v", got.Reasons)
	}

	got = ValidateField(map[string]any{"@id": "x"}, "creator", rule)
	if got.Passed {
		t.Fatal("missing key should fail")
	}
	if len(got.Reasons) != 1 || !strings.Contains(got.Reasons[0], `"name"`) {
		t.Errorf("reasons = %v, want one message naming the missing key", got.Reasons)
	}
}

func TestValidateFieldArrayMinLength(t *testing.T) {
	rule := Rule{Type: TypeArray, MinLength: intp(2)}

	if got := ValidateField([]any{"a", "b"}, "keywords", rule); !got.Passed {
		t.Errorf("two items should pass, got %v", got.Reasons)
	}
	if got := ValidateField([]any{"a"}, "keywords", rule); got.Passed {
		t.Error("one item should fail")
	}
	if got := ValidateField([]any{}, "keywords", rule); got.Passed {
		t.Error("empty array should fail")
	}
}

func TestValidateFieldCollectsAllStringViolations(t *testing.T) {
	rule := Rule{Type: TypeString, MinLength: intp(20), Pattern: `^\d+$`, Format: FormatDate}
	got := ValidateField("abc", "f", rule)

	if got.Passed {
		t.Fatal("expected failure")
	}
	if len(got.Reasons) != 3 {
		t.Errorf("expected one reason per violated constraint, got %v", got.Reasons)
	}
}
