// Package client provides the request orchestrator: it turns resource
// fetches into cached, deduplicated, retryable, cancellable operations on
// top of a pluggable transport.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goragodwiriya/nowjs-api-client/pkg/cache"
	"github.com/goragodwiriya/nowjs-api-client/pkg/logging"
	"github.com/goragodwiriya/nowjs-api-client/pkg/persist"
	"github.com/goragodwiriya/nowjs-api-client/pkg/retry"
	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

// persistTimeout bounds best-effort snapshot save/load calls.
const persistTimeout = 5 * time.Second

// Client is the request orchestrator. It owns the cache store, the
// in-flight table and the cancellation registry as instance fields, so
// independent clients never share state.
type Client struct {
	transport transport.Transport
	cache     *cache.Store
	keyFunc   cache.KeyFunc
	policy    retry.Policy
	flights   *flightTable
	registry  *cancelRegistry
	storage   persist.Store
	config    Config
	logger    zerolog.Logger
}

// New creates an orchestrator from cfg. Unset fields fall back to
// DefaultConfig values. When a snapshot storage collaborator is configured,
// the cache is primed from the last persisted snapshot; corrupt snapshots
// are discarded silently.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := logging.NewLogger("orchestrator")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	keyFunc := cfg.Cache.KeyFunc
	if keyFunc == nil {
		keyFunc = cache.BuildKey
	}

	c := &Client{
		transport: cfg.Transport,
		cache:     cache.NewStore(cfg.Cache.MaxSize),
		keyFunc:   keyFunc,
		policy:    cfg.retryPolicy(),
		flights:   newFlightTable(),
		registry:  newCancelRegistry(),
		storage:   cfg.Storage,
		config:    cfg,
		logger:    logger,
	}

	if c.storage != nil {
		c.restoreSnapshot()
	}

	return c, nil
}

// Get resolves a read through the cache, dedup and transport pipeline.
// Cache hits carry a FromCache marker. Concurrent calls with an identical
// fingerprint coalesce into a single transport invocation.
func (c *Client) Get(ctx context.Context, url string, params any, opts *RequestOptions) (*transport.Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(http.MethodGet).Observe(time.Since(start).Seconds())
	}()

	key := c.keyFunc(http.MethodGet, url, params)
	useCache := c.config.Cache.Enabled && !opts.NoCache

	if useCache {
		if entry, ok := c.cache.Get(key); ok {
			c.logger.Debug().
				Str("fingerprint", key).
				Bool("cache_hit", true).
				Msg("Serving response from cache")
			requestsTotal.WithLabelValues(http.MethodGet, "cache_hit").Inc()

			resp := entry.Payload.Clone()
			resp.FromCache = true
			return resp, nil
		}
	}

	fullURL := resolveURL(url, params)

	if !c.config.Deduplicate {
		// No coalescing: the flight context derives from the sole
		// caller, abort still works through the registry.
		flightCtx, cancel := c.registry.register(ctx, key)
		c.forwardSignal(opts.Signal, key, flightCtx.Done())

		resp, err := c.execute(flightCtx, http.MethodGet, fullURL, nil, opts.Header)
		c.registry.clear(key)
		cancel()

		if err == nil && useCache {
			c.storeResponse(key, resp, opts)
		}
		requestsTotal.WithLabelValues(http.MethodGet, outcomeOf(err)).Inc()
		return resp, err
	}

	f, owner := c.flights.joinOrStart(key)
	if !owner {
		c.logger.Debug().
			Str("fingerprint", key).
			Bool("joined", true).
			Msg("Joined in-flight request")
		dedupJoinsTotal.Inc()

		// A joiner's external signal aborts the shared flight just like
		// the owner's would.
		c.forwardSignal(opts.Signal, key, f.done)

		resp, err := f.wait(ctx)
		requestsTotal.WithLabelValues(http.MethodGet, outcomeOf(err)).Inc()
		return resp, err
	}

	// Owner path. The flight context derives from context.Background():
	// the flight is shared and must outlive any single joiner, including
	// the owner. Only Abort or an external signal cancels it.
	flightCtx, cancel := c.registry.register(context.Background(), key)
	c.forwardSignal(opts.Signal, key, flightCtx.Done())

	go func() {
		resp, err := c.execute(flightCtx, http.MethodGet, fullURL, nil, opts.Header)
		if err == nil && useCache {
			c.storeResponse(key, resp, opts)
		}
		c.registry.clear(key)
		cancel()
		c.flights.settle(key, f, resp, err)
	}()

	resp, err := f.wait(ctx)
	requestsTotal.WithLabelValues(http.MethodGet, outcomeOf(err)).Inc()
	return resp, err
}

// Post executes a POST and invalidates cached reads of the same URL.
func (c *Client) Post(ctx context.Context, url string, data any, opts *RequestOptions) (*transport.Response, error) {
	return c.mutate(ctx, http.MethodPost, url, data, opts)
}

// Put executes a PUT and invalidates cached reads of the same URL.
func (c *Client) Put(ctx context.Context, url string, data any, opts *RequestOptions) (*transport.Response, error) {
	return c.mutate(ctx, http.MethodPut, url, data, opts)
}

// Delete executes a DELETE and invalidates cached reads of the same URL.
func (c *Client) Delete(ctx context.Context, url string, opts *RequestOptions) (*transport.Response, error) {
	return c.mutate(ctx, http.MethodDelete, url, nil, opts)
}

// mutate runs a mutating call: no cache check, no dedup, retry policy
// still applies. On success every cache entry whose fingerprint references
// the URL is dropped (write-through invalidation, not update).
func (c *Client) mutate(ctx context.Context, method, url string, data any, opts *RequestOptions) (*transport.Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	body, err := encodeBody(data)
	if err != nil {
		return nil, &RequestError{Method: method, URL: url, Err: err}
	}

	key := c.keyFunc(method, url, nil)
	flightCtx, cancel := c.registry.register(ctx, key)
	c.forwardSignal(opts.Signal, key, flightCtx.Done())

	resp, err := c.execute(flightCtx, method, url, body, opts.Header)
	c.registry.clear(key)
	cancel()

	requestsTotal.WithLabelValues(method, outcomeOf(err)).Inc()
	if err != nil {
		return nil, err
	}

	if count := c.cache.InvalidateMatching(url); count > 0 {
		c.logger.Debug().
			Str("method", method).
			Str("url", url).
			Int("invalidated", count).
			Msg("Write-through invalidation")
		c.persistSnapshot()
	}

	return resp, nil
}

// execute runs one logical request through the transport under the retry
// policy, waiting out the advisory backoff delay between attempts.
// Exhausting retries surfaces the LAST underlying error wrapped with
// ErrRetryExhausted so callers can still branch on its status.
func (c *Client) execute(ctx context.Context, method, url string, body []byte, header http.Header) (*transport.Response, error) {
	attempt := 0
	var lastErr error

	for {
		resp, err := c.transport.Execute(ctx, method, url, body, header)
		if err == nil {
			if attempt > 0 {
				c.logger.Info().
					Str("method", method).
					Str("url", url).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return resp, nil
		}

		if ctx.Err() != nil {
			c.logger.Debug().
				Str("method", method).
				Str("url", url).
				Bool("aborted", true).
				Msg("Request aborted")
			return nil, fmt.Errorf("%w: %s %s", ErrAborted, method, url)
		}

		lastErr = err

		// Annotate the retry count on the typed error so collaborators
		// can read it across retries of the same logical call.
		var terr *transport.Error
		if errors.As(err, &terr) {
			terr.RetryCount = attempt
		}

		if !c.policy.ShouldRetry(err, attempt) {
			if c.policy.MaxRetries > 0 && attempt >= c.policy.MaxRetries && c.policy.Retryable(err) {
				retryExhaustedTotal.Inc()
				c.logger.Warn().
					Str("method", method).
					Str("url", url).
					Int("attempts", attempt+1).
					Msg("Retry attempts exhausted")
				return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempt+1, lastErr)
			}
			return nil, lastErr
		}

		attempt++
		delay := c.policy.NextDelay(attempt)
		retriesTotal.Inc()
		c.logger.Debug().
			Str("method", method).
			Str("url", url).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("Retrying request after backoff")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s %s", ErrAborted, method, url)
		case <-time.After(delay):
		}
	}
}

// Invalidate drops the cached read for (url, params). Returns true if an
// entry was present.
func (c *Client) Invalidate(url string, params any) bool {
	key := c.keyFunc(http.MethodGet, url, params)
	ok := c.cache.Invalidate(key)
	if ok {
		c.persistSnapshot()
	}
	return ok
}

// InvalidateByURL drops every cached entry whose fingerprint contains the
// URL substring and returns the number removed.
func (c *Client) InvalidateByURL(urlSubstring string) int {
	count := c.cache.InvalidateMatching(urlSubstring)
	c.persistSnapshot()
	return count
}

// ClearCache drops all cached entries.
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.persistSnapshot()
}

// Abort cancels the in-flight request matching (url, params). Every joined
// waiter receives ErrAborted and the fingerprint is removed from both the
// cancellation registry and the dedup table. Returns false when nothing
// matching is in flight.
func (c *Client) Abort(url string, params any) bool {
	key := c.keyFunc(http.MethodGet, url, params)
	ok := c.registry.cancel(key)
	if ok {
		abortsTotal.Inc()
		c.logger.Debug().
			Str("fingerprint", key).
			Bool("aborted", true).
			Msg("In-flight request aborted")
	}
	return ok
}

// Cache returns the underlying cache store (for testing).
func (c *Client) Cache() *cache.Store {
	return c.cache
}

// storeResponse caches a successful GET response when the effective TTL is
// positive and the response predicate, if any, approves it.
func (c *Client) storeResponse(key string, resp *transport.Response, opts *RequestOptions) {
	if pred := c.config.Cache.ResponsePredicate; pred != nil && !pred(resp) {
		return
	}

	ttl := c.config.resolveTTL(opts)
	if ttl <= 0 {
		return
	}

	c.cache.Set(key, resp, ttl)
	c.logger.Debug().
		Str("fingerprint", key).
		Dur("ttl", ttl).
		Msg("Cached response")
	c.persistSnapshot()
}

// forwardSignal propagates an external cancellation signal into the
// registry (signals flow from the caller in, never back out). The watcher exits when
// the flight settles.
func (c *Client) forwardSignal(signal <-chan struct{}, key string, done <-chan struct{}) {
	if signal == nil {
		return
	}
	go func() {
		select {
		case <-signal:
			if c.registry.cancel(key) {
				abortsTotal.Inc()
			}
		case <-done:
		}
	}()
}

// persistSnapshot saves the cache snapshot through the storage
// collaborator. Best-effort: failures are logged, never surfaced.
func (c *Client) persistSnapshot() {
	if c.storage == nil {
		return
	}

	blob, err := cache.EncodeSnapshot(c.cache.Snapshot())
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to encode cache snapshot")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := c.storage.Save(ctx, blob); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to persist cache snapshot")
	}
}

// restoreSnapshot primes the cache from the last persisted snapshot.
// Corrupt snapshots are discarded locally and never surfaced.
func (c *Client) restoreSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	blob, err := c.storage.Load(ctx)
	if err != nil {
		if !errors.Is(err, persist.ErrNoSnapshot) {
			c.logger.Warn().Err(err).Msg("Failed to load cache snapshot")
		}
		return
	}

	snapshot, err := cache.DecodeSnapshot(blob)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Discarding corrupt cache snapshot")
		return
	}

	c.cache.Restore(snapshot)
	c.logger.Info().
		Int("entries", c.cache.Len()).
		Msg("Cache restored from snapshot")
}

// resolveURL appends the normalized query parameters to the URL.
func resolveURL(rawURL string, params any) string {
	query := cache.EncodeParams(params)
	if query == "" {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + query
}

// encodeBody serializes a request body. Byte slices and strings pass
// through unchanged; everything else is JSON-encoded.
func encodeBody(data any) ([]byte, error) {
	switch d := data.(type) {
	case nil:
		return nil, nil
	case []byte:
		return d, nil
	case string:
		return []byte(d), nil
	default:
		body, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return body, nil
	}
}

// outcomeOf classifies a settled request for metrics.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrAborted):
		return "aborted"
	default:
		return "error"
	}
}
