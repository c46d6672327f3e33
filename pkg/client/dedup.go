package client

import (
	"context"
	"sync"

	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

// flight is one in-flight logical request, shared by reference among every
// caller that joined it. Result fields are written exactly once, before
// done is closed.
type flight struct {
	done chan struct{}
	resp *transport.Response
	err  error
}

// wait blocks until the flight settles or the waiter's own context expires.
// A waiter walking away does NOT cancel the flight; other joiners (or none)
// keep it alive until it settles or is explicitly aborted.
func (f *flight) wait(ctx context.Context) (*transport.Response, error) {
	select {
	case <-f.done:
		if f.err != nil {
			return nil, f.err
		}
		// Each waiter gets its own header copy; the body is shared
		// read-only.
		return f.resp.Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// flightTable coalesces concurrent identical requests. Only reads go
// through the table; mutating calls are never deduplicated.
type flightTable struct {
	mu      sync.Mutex
	flights map[string]*flight
}

func newFlightTable() *flightTable {
	return &flightTable{
		flights: make(map[string]*flight),
	}
}

// joinOrStart returns the flight for the fingerprint. owner is true when
// this caller created it and must execute the request and settle it.
func (t *flightTable) joinOrStart(key string) (f *flight, owner bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.flights[key]; ok {
		return existing, false
	}

	f = &flight{done: make(chan struct{})}
	t.flights[key] = f
	return f, true
}

// settle publishes the result to all waiters and removes the table entry.
// Publication and removal happen atomically under the table lock: a caller
// either joins the flight before removal (and then observes the settled
// result through done) or finds no entry and starts a fresh request.
func (t *flightTable) settle(key string, f *flight, resp *transport.Response, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f.resp = resp
	f.err = err
	close(f.done)
	delete(t.flights, key)
}

// contains reports whether a flight is registered for the fingerprint.
func (t *flightTable) contains(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.flights[key]
	return ok
}
