package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"bioscope-hq/bioscope/pkg/annotation"
)

// RenderConfig writes a human-readable view of an effective validation
// configuration.
func RenderConfig(w io.Writer, cfg *annotation.Config) {
	fmt.Fprintf(w, "Annotation validation: %s\n", enabledWord(cfg.Enabled))

	if len(cfg.RequiredFields) == 0 {
		fmt.Fprintln(w, "No required fields configured.")
		return
	}

	fmt.Fprintln(w, "Required fields:")
	for _, field := range cfg.RequiredFields {
		line := "  " + field
		if rule, ok := cfg.FieldRules[field]; ok {
			line += "  (" + describeRule(rule) + ")"
		}
		if origin, ok := cfg.Provenance[field]; ok {
			line += "  [" + string(origin) + "]"
		}
		fmt.Fprintln(w, line)
	}

	// Rules for optional fields, if any.
	var optional []string
	for field := range cfg.FieldRules {
		if !cfg.IsRequired(field) {
			optional = append(optional, field)
		}
	}
	if len(optional) > 0 {
		sort.Strings(optional)
		fmt.Fprintln(w, "Optional field rules:")
		for _, field := range optional {
			fmt.Fprintf(w, "  %s  (%s)\n", field, describeRule(cfg.FieldRules[field]))
		}
	}
}

// RenderReports writes per-record compliance reports followed by a
// summary line.
func RenderReports(w io.Writer, reports map[string]annotation.Report) {
	paths := make([]string, 0, len(reports))
	for p := range reports {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		report := reports[p]
		if report.Compliant {
			fmt.Fprintf(w, "ok       %s\n", p)
			continue
		}
		fmt.Fprintf(w, "invalid  %s\n", p)
		for _, issue := range report.Issues {
			fmt.Fprintf(w, "         - %s\n", issue)
		}
	}

	s := annotation.Summarize(reports)
	fmt.Fprintf(w, "%d record(s) checked: %d compliant, %d non-compliant\n",
		s.Total, s.Compliant, s.NonCompliant)
}

func describeRule(rule annotation.Rule) string {
	parts := []string{}
	if rule.Type != "" {
		parts = append(parts, "type="+string(rule.Type))
	}
	if rule.MinLength != nil {
		parts = append(parts, fmt.Sprintf("min_length=%d", *rule.MinLength))
	}
	if len(rule.RequiredKeys) > 0 {
		parts = append(parts, "required_keys="+strings.Join(rule.RequiredKeys, ","))
	}
	if rule.Format != "" {
		parts = append(parts, "format="+rule.Format)
	}
	if rule.Pattern != "" {
		parts = append(parts, "pattern="+rule.Pattern)
	}
	if len(parts) == 0 {
		return "presence only"
	}
	return strings.Join(parts, ", ")
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
