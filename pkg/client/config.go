package client

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/goragodwiriya/nowjs-api-client/pkg/cache"
	"github.com/goragodwiriya/nowjs-api-client/pkg/persist"
	"github.com/goragodwiriya/nowjs-api-client/pkg/retry"
	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

// ExpiryConfig holds per-method cache TTLs. Only GET responses are ever
// cached (writes invalidate, they never populate); the remaining fields are
// accepted for configuration compatibility but are inert.
type ExpiryConfig struct {
	Get    time.Duration
	Post   time.Duration
	Put    time.Duration
	Delete time.Duration
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Enabled turns caching on.
	Enabled bool

	// MaxSize bounds the entry count; oldest-inserted entries are evicted
	// first (FIFO).
	MaxSize int

	// Expiry holds the per-method TTLs.
	Expiry ExpiryConfig

	// KeyFunc fully overrides the default fingerprint algorithm.
	KeyFunc cache.KeyFunc

	// ResponsePredicate, when set, must approve a response before it is
	// cached.
	ResponsePredicate func(*transport.Response) bool
}

// ConnectionConfig configures retry behavior.
type ConnectionConfig struct {
	// RetryOnNetworkError enables retries for failures without an HTTP
	// status.
	RetryOnNetworkError bool

	// MaxNetworkRetries bounds re-issues after the initial attempt.
	MaxNetworkRetries int

	// BackoffFactor multiplies the delay per attempt when
	// ExponentialBackoff is set.
	BackoffFactor float64

	// RetryStatusCodes is the set of HTTP statuses considered retryable.
	RetryStatusCodes []int

	// ExponentialBackoff selects exponential backoff over a constant delay.
	ExponentialBackoff bool

	// RetryBaseDelay is the delay before the first retry.
	RetryBaseDelay time.Duration
}

// Config holds the orchestrator configuration.
type Config struct {
	// Cache configures the response cache.
	Cache CacheConfig

	// Connection configures retries.
	Connection ConnectionConfig

	// Deduplicate coalesces concurrent identical GET requests into one
	// transport call.
	Deduplicate bool

	// Transport performs the wire calls. Defaults to the net/http
	// transport.
	Transport transport.Transport

	// Storage, when set, persists best-effort cache snapshots.
	Storage persist.Store

	// Logger, when set, replaces the default component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Enabled: true,
			MaxSize: cache.DefaultMaxSize,
			Expiry: ExpiryConfig{
				Get: 60 * time.Second,
			},
		},
		Connection: ConnectionConfig{
			RetryOnNetworkError: true,
			MaxNetworkRetries:   3,
			BackoffFactor:       2.0,
			RetryStatusCodes:    retry.DefaultRetryStatusCodes,
			ExponentialBackoff:  true,
			RetryBaseDelay:      1 * time.Second,
		},
		Deduplicate: true,
	}
}

// withDefaults fills unset fields so a partially specified Config behaves
// like DefaultConfig for the omitted parts.
func (c Config) withDefaults() Config {
	if c.Cache.MaxSize <= 0 {
		c.Cache.MaxSize = cache.DefaultMaxSize
	}
	if c.Connection.BackoffFactor == 0 {
		c.Connection.BackoffFactor = 2.0
	}
	if c.Connection.RetryBaseDelay <= 0 {
		c.Connection.RetryBaseDelay = 1 * time.Second
	}
	if c.Connection.RetryStatusCodes == nil {
		c.Connection.RetryStatusCodes = retry.DefaultRetryStatusCodes
	}
	if c.Transport == nil {
		c.Transport = transport.NewHTTPTransport(transport.DefaultTimeout)
	}
	return c
}

// validate rejects configurations the orchestrator cannot run with.
func (c Config) validate() error {
	if c.Connection.MaxNetworkRetries < 0 {
		return fmt.Errorf("max_network_retries must be >= 0 (got %d)", c.Connection.MaxNetworkRetries)
	}
	if c.Connection.BackoffFactor < 1 {
		return fmt.Errorf("backoff_factor must be >= 1 (got %g)", c.Connection.BackoffFactor)
	}
	return nil
}

// retryPolicy builds the retry policy from the connection configuration.
func (c Config) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:          c.Connection.MaxNetworkRetries,
		BaseDelay:           c.Connection.RetryBaseDelay,
		BackoffFactor:       c.Connection.BackoffFactor,
		Exponential:         c.Connection.ExponentialBackoff,
		RetryOnNetworkError: c.Connection.RetryOnNetworkError,
		RetryStatusCodes:    c.Connection.RetryStatusCodes,
	}
}

// RequestOptions are per-call options.
type RequestOptions struct {
	// NoCache bypasses the cache for this call (both lookup and store).
	NoCache bool

	// TTL overrides the method-default cache expiry. Negative values
	// force "do not cache".
	TTL time.Duration

	// Header holds extra request headers.
	Header http.Header

	// Signal is an external cancellation signal. Closing it aborts the
	// underlying request for ALL joined waiters, exactly like Abort.
	Signal <-chan struct{}
}

// resolveTTL picks the effective cache TTL for a GET response.
func (c Config) resolveTTL(opts *RequestOptions) time.Duration {
	if opts != nil && opts.TTL != 0 {
		return opts.TTL
	}
	return c.Cache.Expiry.Get
}
