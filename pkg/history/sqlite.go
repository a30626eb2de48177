package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.RWMutex
	closeOnce sync.Once

	appendStmt *sql.Stmt
	recentStmt *sql.Stmt
	purgeStmt  *sql.Stmt
}

// NewSQLiteStore opens (or creates) the check-history database at the
// given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare history statements: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS check_runs (
		id TEXT NOT NULL PRIMARY KEY,
		record_path TEXT NOT NULL,
		compliant INTEGER NOT NULL,
		issues TEXT NOT NULL,
		policy_source TEXT NOT NULL,
		checked_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_checked_at ON check_runs(checked_at);
	CREATE INDEX IF NOT EXISTS idx_record_path ON check_runs(record_path);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.appendStmt, err = s.db.Prepare(`
		INSERT INTO check_runs (id, record_path, compliant, issues, policy_source, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare append statement: %w", err)
	}

	s.recentStmt, err = s.db.Prepare(`
		SELECT id, record_path, compliant, issues, policy_source, checked_at
		FROM check_runs
		ORDER BY checked_at DESC, id
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare recent statement: %w", err)
	}

	s.purgeStmt, err = s.db.Prepare(`
		DELETE FROM check_runs WHERE checked_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare purge statement: %w", err)
	}

	return nil
}

// Append records a run, filling in ID and CheckedAt when unset.
func (s *SQLiteStore) Append(ctx context.Context, run *CheckRun) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if run.RecordPath == "" {
		return fmt.Errorf("record path cannot be empty")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CheckedAt.IsZero() {
		run.CheckedAt = time.Now()
	}

	issuesJSON, err := json.Marshal(run.Issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}

	compliant := 0
	if run.Compliant {
		compliant = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.appendStmt.ExecContext(ctx,
		run.ID,
		run.RecordPath,
		compliant,
		string(issuesJSON),
		run.PolicySource,
		run.CheckedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to append check run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*CheckRun, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query check runs: %w", err)
	}
	defer rows.Close()

	var runs []*CheckRun
	for rows.Next() {
		var (
			run        CheckRun
			compliant  int
			issuesJSON string
			checkedAt  int64
		)
		if err := rows.Scan(&run.ID, &run.RecordPath, &compliant, &issuesJSON, &run.PolicySource, &checkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check run: %w", err)
		}
		run.Compliant = compliant != 0
		run.CheckedAt = time.Unix(checkedAt, 0)
		if err := json.Unmarshal([]byte(issuesJSON), &run.Issues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal issues for run %s: %w", run.ID, err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check runs: %w", err)
	}

	return runs, nil
}

// Purge deletes runs checked before the cutoff.
func (s *SQLiteStore) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.purgeStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge check runs: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}

// Close releases the database. Close is idempotent.
func (s *SQLiteStore) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.appendStmt, s.recentStmt, s.purgeStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		if s.db != nil {
			closeErr = s.db.Close()
		}
	})
	return closeErr
}
