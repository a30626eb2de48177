package fetch

import "fmt"

// FetchError reports a failed remote policy retrieval. It carries enough
// context (URL, HTTP status when one was received) for an operator to
// act on.
type FetchError struct {
	// URL is the remote policy location that failed.
	URL string

	// StatusCode is the HTTP status received, or 0 when the request
	// never completed (network error, timeout).
	StatusCode int

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("failed to fetch remote policy from %s: %s", e.URL, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
