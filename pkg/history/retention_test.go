package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bioscope-hq/bioscope/pkg/policy/cache"
)

func TestNewSchedulerDefaults(t *testing.T) {
	s := NewScheduler(RetentionConfig{}, nil, nil, nil)

	if s.config.KeepRuns != 90*24*time.Hour {
		t.Errorf("KeepRuns = %v, want 90 days", s.config.KeepRuns)
	}
	if s.config.KeepCacheEntries != 30*24*time.Hour {
		t.Errorf("KeepCacheEntries = %v, want 30 days", s.config.KeepCacheEntries)
	}
}

func TestSchedulerStartWithoutSchedule(t *testing.T) {
	s := NewScheduler(RetentionConfig{}, nil, nil, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v, empty schedule must be a no-op", err)
	}
	if s.running {
		t.Error("scheduler should not be running without a schedule")
	}
}

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(RetentionConfig{Schedule: "not a cron expr"}, nil, nil, nil)

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "checks.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	s := NewScheduler(RetentionConfig{Schedule: "0 3 * * *"}, store, cache.NewMemoryStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.running {
		t.Error("scheduler should be running")
	}

	cancel()
	// Context cancellation stops the scheduler asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		running := s.running
		s.mu.Unlock()
		if !running {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("scheduler still running after context cancel")
}

func TestRunCleanup(t *testing.T) {
	ctx := context.Background()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "checks.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	old := &CheckRun{
		RecordPath:   "old.jsonld",
		PolicySource: "local",
		CheckedAt:    time.Now().Add(-100 * 24 * time.Hour),
	}
	recent := &CheckRun{RecordPath: "new.jsonld", PolicySource: "local"}
	for _, run := range []*CheckRun{old, recent} {
		if err := store.Append(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	cacheStore := cache.NewMemoryStore()
	if err := cacheStore.Put(ctx, "https://example.org/policy.yaml", []byte("x")); err != nil {
		t.Fatal(err)
	}

	s := NewScheduler(RetentionConfig{Schedule: "0 3 * * *"}, store, cacheStore, nil)
	s.runCleanup(ctx)

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RecordPath != "new.jsonld" {
		t.Errorf("remaining runs = %v, want only the recent one", runs)
	}

	// The fresh cache entry is inside the 30 day window and survives.
	if cacheStore.Size() != 1 {
		t.Errorf("cache size = %d, want 1", cacheStore.Size())
	}
}
