package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"bioscope-hq/bioscope/pkg/policy/cache"
)

// RetentionConfig controls scheduled cleanup of project state.
type RetentionConfig struct {
	// Schedule is a cron expression ("0 3 * * *" runs daily at 3 AM).
	// Empty disables scheduling.
	Schedule string

	// KeepRuns is how long check runs are retained. Default: 90 days.
	KeepRuns time.Duration

	// KeepCacheEntries is how long cached remote policies are retained
	// regardless of their freshness window. Default: 30 days.
	KeepCacheEntries time.Duration
}

// Scheduler periodically purges old check runs and long-dead cache
// entries. It is used by long-running embedders; the CLI runs a single
// purge inline instead.
type Scheduler struct {
	config RetentionConfig
	store  Store
	cache  cache.Store
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a retention scheduler. The cache store may be nil
// when only history retention is wanted.
func NewScheduler(config RetentionConfig, store Store, cacheStore cache.Store, logger *slog.Logger) *Scheduler {
	if config.KeepRuns <= 0 {
		config.KeepRuns = 90 * 24 * time.Hour
	}
	if config.KeepCacheEntries <= 0 {
		config.KeepCacheEntries = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		config: config,
		store:  store,
		cache:  cacheStore,
		cron:   cron.New(),
		logger: logger.With("component", "history.scheduler"),
	}
}

// Start begins scheduled cleanup. With no schedule configured it does
// nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("retention schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runCleanup(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", s.config.Schedule,
		"keep_runs", s.config.KeepRuns,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled cleanup.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}

// runCleanup executes one cleanup cycle.
func (s *Scheduler) runCleanup(ctx context.Context) {
	now := time.Now()

	if s.store != nil {
		deleted, err := s.store.Purge(ctx, now.Add(-s.config.KeepRuns))
		if err != nil {
			s.logger.Error("scheduled history purge failed", "error", err)
		} else if deleted > 0 {
			s.logger.Info("purged old check runs", "deleted", deleted)
		}
	}

	if s.cache != nil {
		deleted, err := s.cache.Cleanup(ctx, now.Add(-s.config.KeepCacheEntries))
		if err != nil {
			s.logger.Error("scheduled cache cleanup failed", "error", err)
		} else if deleted > 0 {
			s.logger.Info("removed expired policy cache entries", "deleted", deleted)
		}
	}
}
