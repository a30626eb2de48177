// Package cli provides shared helpers for the bioscope command line:
// typed errors with exit-code mapping and plain-text rendering of
// configurations and compliance reports.
package cli
