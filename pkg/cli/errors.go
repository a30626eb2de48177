package cli

import (
	"errors"
	"fmt"

	"bioscope-hq/bioscope/pkg/policy/fetch"
	"bioscope-hq/bioscope/pkg/policy/resolver"
)

// Exit codes for the bioscope CLI.
const (
	// ExitOK means the command succeeded.
	ExitOK = 0
	// ExitError covers command failures: unresolved fetch errors,
	// malformed configuration, I/O problems.
	ExitError = 1
	// ExitNonCompliant is returned by check/status commands when
	// evaluation ran but found non-compliant records.
	ExitNonCompliant = 2
)

// ProjectError reports a command run outside a bioscope project, or a
// project in an unusable state.
type ProjectError struct {
	Message string
}

func (e *ProjectError) Error() string {
	return e.Message
}

// CommandError wraps a failure from a command execution with the command
// name.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// Describe renders an error for the operator, pointing at the fix when
// the error kind implies one.
func Describe(err error) string {
	var projErr *ProjectError
	if errors.As(err, &projErr) {
		return projErr.Message + " (run 'bioscope init' first)"
	}

	var fetchErr *fetch.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Error() + " (check the remote validation URL or enable fallback_to_local)"
	}

	var configErr *resolver.ConfigError
	if errors.As(err, &configErr) {
		return configErr.Error()
	}

	return err.Error()
}
