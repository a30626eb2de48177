package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"bioscope-hq/bioscope/pkg/annotation"
	"bioscope-hq/bioscope/pkg/history"
	"bioscope-hq/bioscope/pkg/policy/resolver"
	"bioscope-hq/bioscope/pkg/project"
)

func TestRecordRunsSurvivesFailedAppend(t *testing.T) {
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// The empty path is rejected by the store; the runs around it must
	// still be recorded.
	reports := map[string]annotation.Report{
		"a.json": {Compliant: true},
		"":       {Compliant: false, Issues: []string{"missing required field"}},
		"z.json": {Compliant: true},
	}
	result := &resolver.Result{Source: resolver.SourceLocal}

	ctx := context.Background()
	recordRuns(ctx, root, reports, result, logger)

	store, err := history.NewSQLiteStore(project.HistoryDBPath(root))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d recorded runs, want 2", len(runs))
	}

	got := map[string]bool{}
	for _, run := range runs {
		got[run.RecordPath] = true
	}
	if !got["a.json"] || !got["z.json"] {
		t.Errorf("recorded paths = %v, want a.json and z.json", got)
	}
}
