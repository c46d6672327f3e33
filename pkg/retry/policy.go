// Package retry classifies transport failures as retryable or terminal and
// computes backoff delays. The policy is pure computation: the orchestrator
// is responsible for actually waiting before re-issuing a call.
package retry

import (
	"errors"
	"math"
	"time"

	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

// DefaultRetryStatusCodes are the HTTP statuses retried out of the box.
var DefaultRetryStatusCodes = []int{408, 429, 500, 502, 503, 504}

// Policy holds the retry configuration for a logical request.
type Policy struct {
	// MaxRetries bounds re-issues after the initial attempt; a request is
	// tried at most MaxRetries+1 times.
	MaxRetries int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// BackoffFactor multiplies the delay per attempt when Exponential is set.
	BackoffFactor float64

	// Exponential selects exponential backoff; otherwise the delay is the
	// constant BaseDelay.
	Exponential bool

	// RetryOnNetworkError enables retries for failures without an HTTP
	// status (status 0).
	RetryOnNetworkError bool

	// RetryStatusCodes is the set of HTTP statuses considered retryable.
	RetryStatusCodes []int
}

// DefaultPolicy returns the stock policy: 3 retries, 1s base delay, factor 2
// exponential backoff, network retries on, statuses 408/429/500/502/503/504.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:          3,
		BaseDelay:           1 * time.Second,
		BackoffFactor:       2.0,
		Exponential:         true,
		RetryOnNetworkError: true,
		RetryStatusCodes:    DefaultRetryStatusCodes,
	}
}

// Retryable classifies an error independent of the attempt count:
//
//   - network-level failures (no HTTP status) are retryable when
//     RetryOnNetworkError is enabled
//   - HTTP statuses in RetryStatusCodes are retryable
//   - everything else is terminal
func (p Policy) Retryable(err error) bool {
	var terr *transport.Error
	if !errors.As(err, &terr) {
		return false
	}
	if terr.IsNetwork() {
		return p.RetryOnNetworkError
	}
	for _, status := range p.RetryStatusCodes {
		if terr.Status == status {
			return true
		}
	}
	return false
}

// ShouldRetry reports whether the failed attempt should be re-issued.
// attempt counts completed tries beyond the first (0 after the initial
// attempt); retrying stops once attempt >= MaxRetries.
func (p Policy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.MaxRetries {
		return false
	}
	return p.Retryable(err)
}

// NextDelay computes the advisory delay before retry number attempt
// (1-based). With exponential backoff the delay is
// BaseDelay * BackoffFactor^(attempt-1); otherwise it is BaseDelay.
func (p Policy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if !p.Exponential {
		return p.BaseDelay
	}

	// Clamp the exponent so pathological attempt counts cannot overflow.
	exponent := attempt - 1
	if exponent > 30 {
		exponent = 30
	}

	delay := time.Duration(float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(exponent)))
	if delay < 0 {
		return p.BaseDelay
	}
	return delay
}
