// Package clients provides the instrumented HTTP client used to reach
// downstream services such as carrier rate APIs.
package clients

import "errors"

// Transport level failures. Adapters translate them into domain errors.
var (
	// ErrCircuitOpen is returned without calling the service while the
	// circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last error once every attempt failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
