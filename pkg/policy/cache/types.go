package cache

import (
	"context"
	"time"
)

// Entry is one cached remote policy.
type Entry struct {
	// SourceURL is the URL the payload was fetched from.
	SourceURL string

	// FetchedAt is when the payload was retrieved.
	FetchedAt time.Time

	// Payload is the raw remote policy document, byte-identical to the
	// response body it was fetched from.
	Payload []byte
}

// FreshAt reports whether the entry is still fresh at the given instant
// for a reference with the given cache duration.
func (e *Entry) FreshAt(now time.Time, cacheDuration time.Duration) bool {
	return now.Sub(e.FetchedAt) < cacheDuration
}

// Store defines the interface for policy cache persistence.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the entry for a URL, or nil if none exists.
	// Get never performs network I/O.
	Get(ctx context.Context, url string) (*Entry, error)

	// Put stores a payload for a URL, replacing any prior entry and
	// stamping the fetch time.
	Put(ctx context.Context, url string, payload []byte) error

	// Clear removes the entry for a URL unconditionally. A cleared entry
	// is indistinguishable from one never fetched. No-op if absent.
	Clear(ctx context.Context, url string) error

	// ClearAll removes every entry.
	ClearAll(ctx context.Context) error

	// Cleanup removes entries fetched before the cutoff. Returns the
	// number of entries deleted.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
