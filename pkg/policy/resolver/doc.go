// Package resolver produces the effective validation configuration for a
// project by layering the optional remote policy under the local one.
//
// # Merge Semantics
//
// Required fields merge by union: the remote set can only be extended by
// the local layer, never narrowed. Field rules merge by local overlay: a
// local rule fully replaces the remote rule for the same field (no
// per-property deep merge). The enabled flag is the local one when
// explicitly set, otherwise the remote's.
//
// # Failure Semantics
//
// A malformed local or remote document, or a rule with a contradictory
// constraint combination, is a *ConfigError naming the offending file or
// field. A remote fetch failure degrades to local-only configuration
// with a warning when the reference allows fallback, and is otherwise a
// hard failure of Resolve.
package resolver
