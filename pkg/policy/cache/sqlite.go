package cache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence. It holds one
// row per distinct source URL and survives process restarts, so a fresh
// invocation of the tool can reuse policies fetched by a previous run.
//
// The store uses WAL mode for concurrent read performance.
type SQLiteStore struct {
	db        *sql.DB
	dbPath    string
	mu        sync.RWMutex
	closeOnce sync.Once

	getStmt      *sql.Stmt
	putStmt      *sql.Stmt
	clearStmt    *sql.Stmt
	clearAllStmt *sql.Stmt
	cleanupStmt  *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite cache store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a SQLite cache store with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{DBPath: dbPath})
}

// NewSQLiteStoreWithConfig creates a SQLite cache store with custom
// configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:     db,
		dbPath: cfg.DBPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare cache statements: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS policy_cache (
		source_url TEXT NOT NULL PRIMARY KEY,
		payload BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fetched_at ON policy_cache(fetched_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getStmt, err = s.db.Prepare(`
		SELECT source_url, payload, fetched_at
		FROM policy_cache
		WHERE source_url = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.putStmt, err = s.db.Prepare(`
		INSERT INTO policy_cache (source_url, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (source_url) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}

	s.clearStmt, err = s.db.Prepare(`
		DELETE FROM policy_cache WHERE source_url = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare clear statement: %w", err)
	}

	s.clearAllStmt, err = s.db.Prepare(`
		DELETE FROM policy_cache
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare clear-all statement: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`
		DELETE FROM policy_cache WHERE fetched_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cleanup statement: %w", err)
	}

	return nil
}

// Get returns the entry for a URL, or nil if none exists.
func (s *SQLiteStore) Get(ctx context.Context, url string) (*Entry, error) {
	if url == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		sourceURL string
		payload   []byte
		fetchedAt int64
	)
	err := s.getStmt.QueryRowContext(ctx, url).Scan(&sourceURL, &payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry for %q: %w", url, err)
	}

	return &Entry{
		SourceURL: sourceURL,
		FetchedAt: time.Unix(fetchedAt, 0),
		Payload:   payload,
	}, nil
}

// Put stores a payload for a URL, replacing any prior entry.
func (s *SQLiteStore) Put(ctx context.Context, url string, payload []byte) error {
	if url == "" {
		return fmt.Errorf("url cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.putStmt.ExecContext(ctx, url, payload, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to write cache entry for %q: %w", url, err)
	}
	return nil
}

// Clear removes the entry for a URL.
func (s *SQLiteStore) Clear(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("url cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.clearStmt.ExecContext(ctx, url); err != nil {
		return fmt.Errorf("failed to clear cache entry for %q: %w", url, err)
	}
	return nil
}

// ClearAll removes every entry.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.clearAllStmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Cleanup removes entries fetched before the cutoff.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.cleanupStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup cache: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}

// Close releases the database and prepared statements. Close is
// idempotent.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.getStmt, s.putStmt, s.clearStmt, s.clearAllStmt, s.cleanupStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}
