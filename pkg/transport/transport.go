// Package transport defines the wire-level collaborator the orchestrator
// drives: a Transport executes a single HTTP exchange and reports failures
// as typed errors the retry policy can classify.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is the decoded result of a transport exchange.
type Response struct {
	// Status is the HTTP status code of the response.
	Status int `json:"status"`

	// Header holds the response headers.
	Header http.Header `json:"header"`

	// Body is the raw response body.
	Body []byte `json:"body"`

	// FromCache marks responses served from the cache store rather than
	// the transport. Never set by a Transport implementation.
	FromCache bool `json:"from_cache"`
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Clone returns a shallow copy with its own header map. The body slice is
// shared; callers must treat it as read-only.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Header = r.Header.Clone()
	return &clone
}

// Error is the typed failure a Transport reports. A Status of 0 means no
// response was received (network-level failure); any other value is the
// HTTP status of a non-2xx response.
type Error struct {
	// Status is the HTTP status code, or 0 for a network failure.
	Status int

	// Message is a short human-readable description.
	Message string

	// Body is the error response body, if any was received.
	Body []byte

	// RetryCount is an annotation the orchestrator writes across retries
	// of the same logical call. Transports leave it zero.
	RetryCount int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("transport network error: %s: %v", e.Message, e.Err)
		}
		return fmt.Sprintf("transport network error: %s", e.Message)
	}
	return fmt.Sprintf("transport error (status %d): %s", e.Status, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether the failure happened before any HTTP response
// was received.
func (e *Error) IsNetwork() bool {
	return e.Status == 0
}

// Transport executes a single HTTP exchange. Implementations must honor ctx
// cancellation: the orchestrator cancels it to abort in-flight calls.
//
// A nil error with a *Response means the server answered with a success
// status. Failures are reported as *Error.
type Transport interface {
	Execute(ctx context.Context, method, url string, body []byte, header http.Header) (*Response, error)
}
