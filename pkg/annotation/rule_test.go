package annotation

import (
	"strings"
	"testing"
)

func intp(n int) *int { return &n }

func TestRuleCheck(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr string
	}{
		{
			name: "zero rule is valid",
			rule: Rule{},
		},
		{
			name: "string with min length",
			rule: Rule{Type: TypeString, MinLength: intp(1)},
		},
		{
			name: "array with min length",
			rule: Rule{Type: TypeArray, MinLength: intp(2)},
		},
		{
			name: "object with required keys",
			rule: Rule{Type: TypeObject, RequiredKeys: []string{"@id"}},
		},
		{
			name: "string with date format",
			rule: Rule{Type: TypeString, Format: FormatDate},
		},
		{
			name: "string with pattern",
			rule: Rule{Type: TypeString, Pattern: `^[A-Z]{2}\d+$`},
		},
		{
			name:    "unknown type",
			rule:    Rule{Type: "integer"},
			wantErr: "unknown type",
		},
		{
			name:    "negative min length",
			rule:    Rule{Type: TypeString, MinLength: intp(-1)},
			wantErr: "must be non-negative",
		},
		{
			name:    "min length on number",
			rule:    Rule{Type: TypeNumber, MinLength: intp(1)},
			wantErr: "min_length requires type string or array",
		},
		{
			name:    "min length without type",
			rule:    Rule{MinLength: intp(1)},
			wantErr: "min_length requires type string or array",
		},
		{
			name:    "required keys on string",
			rule:    Rule{Type: TypeString, RequiredKeys: []string{"@id"}},
			wantErr: "required_keys requires type object",
		},
		{
			name:    "format on object",
			rule:    Rule{Type: TypeObject, Format: FormatDate},
			wantErr: "format requires type string",
		},
		{
			name:    "unknown format",
			rule:    Rule{Type: TypeString, Format: "email"},
			wantErr: "unknown format",
		},
		{
			name:    "pattern on array",
			rule:    Rule{Type: TypeArray, Pattern: ".*"},
			wantErr: "pattern requires type string",
		},
		{
			name:    "invalid pattern",
			rule:    Rule{Type: TypeString, Pattern: "(unclosed"},
			wantErr: "invalid pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Check("test_field")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Check() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Check() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Check() = %v, want error containing %q", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), "test_field") {
				t.Errorf("Check() error %v does not name the field", err)
			}
		})
	}
}
