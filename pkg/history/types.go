package history

import (
	"context"
	"time"
)

// CheckRun is one recorded compliance evaluation of one metadata record.
type CheckRun struct {
	// ID uniquely identifies the run.
	ID string

	// RecordPath is the project-relative path of the evaluated record.
	RecordPath string

	// Compliant is the evaluation outcome.
	Compliant bool

	// Issues lists the violations found, empty when compliant.
	Issues []string

	// PolicySource notes which configuration layer decided the outcome:
	// "local", "remote", or "remote-stale".
	PolicySource string

	// CheckedAt is when the evaluation ran.
	CheckedAt time.Time
}

// Store persists check runs.
type Store interface {
	// Append records a run. The run's ID and CheckedAt are filled in
	// when zero.
	Append(ctx context.Context, run *CheckRun) error

	// Recent returns the most recent runs, newest first, at most limit.
	Recent(ctx context.Context, limit int) ([]*CheckRun, error)

	// Purge deletes runs checked before the cutoff and returns how many
	// were removed.
	Purge(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
