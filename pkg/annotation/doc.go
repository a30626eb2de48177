// Package annotation implements the metadata annotation-compliance engine.
//
// # Overview
//
// The annotation package decides whether a dataset's metadata record
// satisfies an effective validation configuration. It provides:
//
//   - Rule: the schema for a single field-validation rule
//   - ValidateField: pure evaluation of one field value against one rule
//   - Engine: applies a full configuration to one or many records and
//     produces compliance reports
//
// # Usage
//
//	engine := annotation.NewEngine(logger)
//	report := engine.Evaluate(record, cfg)
//	if !report.Compliant {
//	    for _, issue := range report.Issues {
//	        fmt.Println(issue)
//	    }
//	}
//
// # Thread Safety
//
// Engine is stateless with respect to a given Config; Evaluate and
// EvaluateMany may be called concurrently. EvaluateMany evaluates records
// in parallel internally.
package annotation
