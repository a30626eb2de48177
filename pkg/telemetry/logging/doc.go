// Package logging provides the structured logger used across bioscope.
//
// The logger wraps log/slog with level and format parsing so callers
// configure it from plain strings ("debug", "json") coming from flags or
// configuration. JSON output is the default; text output suits
// interactive use.
package logging
