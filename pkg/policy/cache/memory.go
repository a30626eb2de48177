package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore implements Store using in-process storage. All entries are
// lost when the process exits; it exists for tests and for callers that
// do not want a cache directory.
//
// MemoryStore is thread-safe using sync.RWMutex.
type MemoryStore struct {
	entries map[string]*Entry
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Get returns the entry for a URL, or nil if none exists.
func (m *MemoryStore) Get(ctx context.Context, url string) (*Entry, error) {
	if url == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[url]
	if !ok {
		return nil, nil
	}

	// Return a copy so callers cannot mutate cached state.
	cp := *entry
	cp.Payload = append([]byte(nil), entry.Payload...)
	return &cp, nil
}

// Put stores a payload for a URL, replacing any prior entry.
func (m *MemoryStore) Put(ctx context.Context, url string, payload []byte) error {
	if url == "" {
		return fmt.Errorf("url cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[url] = &Entry{
		SourceURL: url,
		FetchedAt: m.now(),
		Payload:   append([]byte(nil), payload...),
	}
	return nil
}

// Clear removes the entry for a URL.
func (m *MemoryStore) Clear(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("url cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, url)
	return nil
}

// ClearAll removes every entry.
func (m *MemoryStore) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*Entry)
	return nil
}

// Cleanup removes entries fetched before the cutoff.
func (m *MemoryStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for url, entry := range m.entries {
		if entry.FetchedAt.Before(olderThan) {
			delete(m.entries, url)
			deleted++
		}
	}
	return deleted, nil
}

// Close releases resources. For the memory store it is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

// Size returns the current number of cached entries, for monitoring and
// tests.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
