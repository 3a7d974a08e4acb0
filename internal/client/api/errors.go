package api

import (
	"errors"
	"fmt"
)

// Client error taxonomy. Network and auth failures get distinct sentinel
// errors because the engine reacts to them differently: network errors
// transition the engine offline and are retried on reconnect, auth errors
// trigger exactly one token refresh before being escalated.
var (
	// ErrNetwork indicates a transient connectivity problem (dial failure,
	// timeout, connection reset).
	ErrNetwork = errors.New("network unavailable")

	// ErrAuth indicates rejected or expired credentials.
	ErrAuth = errors.New("authentication failed")
)

// ServerError is a definitive non-2xx response that is neither a
// connectivity nor a credential problem.
type ServerError struct {
	Message    string
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}
