// Package fetch retrieves remote validation policies over HTTPS, using
// the policy cache to avoid network calls when a cached copy is fresh.
//
// # Overview
//
// A Fetcher resolves a Reference (URL, cache duration, fallback flag)
// into a parsed remote policy document:
//
//  1. A fresh cache entry is returned without touching the network.
//  2. Otherwise the document is fetched with a bounded timeout, parsed,
//     and written back to the cache.
//  3. On any fetch or parse failure a stale cache entry, if one exists,
//     is returned with Result.Stale set; with no entry at all a typed
//     *FetchError is returned.
//
// # Failure Semantics
//
// Fetch failures are never fatal here. The config resolver decides, per
// the reference's fallback flag, whether a *FetchError aborts resolution
// or degrades to local-only configuration.
package fetch
