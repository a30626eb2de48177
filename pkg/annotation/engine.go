package annotation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Record is a metadata record: an opaque mapping from field name to
// arbitrary decoded value. Records are owned by the caller and read-only
// to the engine.
type Record map[string]any

// Report is the result of evaluating one record against a configuration.
type Report struct {
	// Compliant is true iff every required field is present and every
	// present field with a rule passes that rule.
	Compliant bool `json:"compliant"`

	// Issues holds one message per violation, missing required fields
	// first, then rule violations in required-field order.
	Issues []string `json:"issues,omitempty"`
}

// Summary aggregates reports across a set of records.
type Summary struct {
	Total        int
	Compliant    int
	NonCompliant int
}

// Engine applies an effective validation configuration to metadata
// records. It holds no per-record state.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger falls back to slog.Default.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Evaluate checks a single record against the configuration.
func (e *Engine) Evaluate(record Record, cfg *Config) Report {
	if cfg == nil || !cfg.Enabled {
		return Report{Compliant: true}
	}

	var issues []string
	checked := make(map[string]bool, len(cfg.RequiredFields))

	// Missing required fields come first in the report.
	for _, field := range cfg.RequiredFields {
		if _, ok := record[field]; !ok {
			issues = append(issues, fmt.Sprintf("missing required field: %s", field))
			checked[field] = true
		}
	}

	// Rule violations for required fields, in declared order.
	for _, field := range cfg.RequiredFields {
		if checked[field] {
			continue
		}
		checked[field] = true
		if rule, ok := cfg.FieldRules[field]; ok {
			outcome := ValidateField(record[field], field, rule)
			issues = append(issues, outcome.Reasons...)
		}
	}

	// Rules may also cover optional fields; evaluate any that are present
	// in the record, in a stable order.
	rest := make([]string, 0, len(cfg.FieldRules))
	for field := range cfg.FieldRules {
		if !checked[field] {
			rest = append(rest, field)
		}
	}
	sort.Strings(rest)
	for _, field := range rest {
		value, ok := record[field]
		if !ok {
			continue
		}
		outcome := ValidateField(value, field, cfg.FieldRules[field])
		issues = append(issues, outcome.Reasons...)
	}

	return Report{Compliant: len(issues) == 0, Issues: issues}
}

// EvaluateMany checks a set of records keyed by identifier (typically a
// project-relative path). Records are independent and evaluated in
// parallel. A canceled context stops scheduling but already started
// evaluations run to completion.
func (e *Engine) EvaluateMany(ctx context.Context, records map[string]Record, cfg *Config) map[string]Report {
	reports := make(map[string]Report, len(records))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for id, record := range records {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(id string, record Record) {
			defer wg.Done()
			report := e.Evaluate(record, cfg)
			mu.Lock()
			reports[id] = report
			mu.Unlock()
		}(id, record)
	}
	wg.Wait()

	return reports
}

// Summarize counts compliant and non-compliant reports.
func Summarize(reports map[string]Report) Summary {
	s := Summary{Total: len(reports)}
	for _, r := range reports {
		if r.Compliant {
			s.Compliant++
		} else {
			s.NonCompliant++
		}
	}
	return s
}
