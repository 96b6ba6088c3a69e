// Package headers defines HTTP header constants used by the diagramastext SDK.
package headers

const (
	// RequestID correlates a request across client logs and server traces.
	// Clients can supply this header for idempotency on retries.
	RequestID = "X-Request-Id"

	// Authorization carries the bearer token for authenticated calls.
	Authorization = "Authorization"
)
