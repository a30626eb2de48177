package annotation

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MetadataExt is the file extension of tracked metadata records.
const MetadataExt = ".jsonld"

// EvaluateFiles evaluates a set of project-relative metadata file paths
// against the configuration. Paths without the metadata extension are
// skipped. A missing or unreadable file classifies as non-compliant with
// an explanatory issue rather than failing the whole batch.
func (e *Engine) EvaluateFiles(ctx context.Context, root string, paths []string, cfg *Config) map[string]Report {
	records := make(map[string]Record)
	reports := make(map[string]Report)

	for _, p := range paths {
		if !strings.HasSuffix(p, MetadataExt) {
			continue
		}

		full := filepath.Join(root, p)
		if _, err := os.Stat(full); err != nil {
			reports[p] = Report{Compliant: false, Issues: []string{"metadata file not found"}}
			continue
		}

		record, err := LoadRecord(full)
		if err != nil {
			reports[p] = Report{Compliant: false, Issues: []string{"error reading metadata: " + err.Error()}}
			continue
		}
		records[p] = record
	}

	for p, report := range e.EvaluateMany(ctx, records, cfg) {
		reports[p] = report
	}
	return reports
}

// TrackedRecords lists all tracked metadata files in the project's
// datasets directory, as paths relative to the project root, sorted.
func TrackedRecords(root string) ([]string, error) {
	datasetsDir := filepath.Join(root, ".bioscope", "datasets")
	if _, err := os.Stat(datasetsDir); os.IsNotExist(err) {
		return nil, nil
	}

	matches, err := filepath.Glob(filepath.Join(datasetsDir, "*"+MetadataExt))
	if err != nil {
		return nil, err
	}

	tracked := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(root, m)
		if err != nil {
			continue
		}
		tracked = append(tracked, rel)
	}
	sort.Strings(tracked)
	return tracked, nil
}
