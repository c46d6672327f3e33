package client

import (
	"context"
	"time"

	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

// PollCallback receives the result of each polling round. resp is nil when
// the round failed; a round failure never stops the loop.
type PollCallback func(resp *PollResult)

// PollResult is the outcome of a single polling round.
type PollResult struct {
	Response *transport.Response
	Err      error
	Round    int
}

// PollOptions tunes a polling loop.
type PollOptions struct {
	// MaxPolls stops the loop after this many rounds. Zero means unbounded.
	MaxPolls int

	// StopCondition, when set, is evaluated on every successful round and
	// stops the loop when it returns true.
	StopCondition func(resp *transport.Response) bool

	// Request carries per-round request options. NoCache is forced on:
	// polling exists to observe fresh state.
	Request *RequestOptions
}

// minPollInterval is the floor for the polling tick. time.NewTicker panics
// on non-positive durations, so anything at or below zero is clamped here.
const minPollInterval = time.Millisecond

// Poll repeatedly issues a GET for (url, params) every interval, invoking
// callback with each round's result. The first round fires immediately.
// A non-positive interval is clamped to minPollInterval. The returned stop
// function ends the loop; cancelling ctx does the same. Rounds always
// bypass the cache.
func (c *Client) Poll(ctx context.Context, url string, params any, interval time.Duration, callback PollCallback, opts *PollOptions) (stop func()) {
	if opts == nil {
		opts = &PollOptions{}
	}
	if interval < minPollInterval {
		interval = minPollInterval
	}

	loopCtx, cancel := context.WithCancel(ctx)

	reqOpts := RequestOptions{}
	if opts.Request != nil {
		reqOpts = *opts.Request
	}
	reqOpts.NoCache = true

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		round := 0
		for {
			round++
			pollRoundsTotal.Inc()

			resp, err := c.Get(loopCtx, url, params, &reqOpts)
			if loopCtx.Err() != nil {
				return
			}
			callback(&PollResult{Response: resp, Err: err, Round: round})

			if err == nil && opts.StopCondition != nil && opts.StopCondition(resp) {
				cancel()
				return
			}
			if opts.MaxPolls > 0 && round >= opts.MaxPolls {
				cancel()
				return
			}

			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return cancel
}
