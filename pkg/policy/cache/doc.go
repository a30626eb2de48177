// Package cache provides durable storage for fetched remote validation
// policies, keyed by source URL.
//
// # Overview
//
// The cache stores the raw payload of each remote policy document along
// with its fetch time. Freshness is decided by the caller (the remote
// policy fetcher) against the cache duration of the referencing remote
// configuration; the cache itself never expires entries proactively.
//
// Two backends are provided:
//
//   - Memory: fast in-process storage, lost on exit
//   - SQLite: file-based persistence under the project's cache directory
//
// # Thread Safety
//
// Both backends support concurrent reads and serialize writes per store,
// which gives at-most-one-writer-per-URL semantics for Put. A race
// between two fetches of the same URL is benign: last writer wins.
package cache
