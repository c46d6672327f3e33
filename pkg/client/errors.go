package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the orchestrator.
var (
	// ErrAborted is returned to every waiter of a request cancelled via
	// Abort or an external cancellation signal. Distinct from failure so
	// callers can tell "cancelled by me" from "failed".
	ErrAborted = errors.New("request aborted")

	// ErrRetryExhausted wraps the LAST underlying transport error once all
	// retry attempts are used up; unwrap to branch on its status.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)

// RequestError annotates a transport failure with the logical request that
// produced it.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}
