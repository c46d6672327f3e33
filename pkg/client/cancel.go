package client

import (
	"context"
	"sync"
)

// cancelRegistry maps fingerprints to the cancel handles of in-flight
// requests. The handle cancels the flight's own context, which is derived
// from context.Background() for deduplicated reads: a flight must outlive
// any single joiner and is only cancelled by an explicit Abort or an
// external signal forwarded in, never by a joiner detaching.
type cancelRegistry struct {
	mu      sync.Mutex
	handles map[string]context.CancelFunc
}

func newCancelRegistry() *cancelRegistry {
	return &cancelRegistry{
		handles: make(map[string]context.CancelFunc),
	}
}

// register derives a cancellable context for the fingerprint from parent
// and stores its handle. A handle already present for the fingerprint is
// replaced (last writer wins, mirroring a controller map keyed by request).
func (r *cancelRegistry) register(parent context.Context, key string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	r.mu.Lock()
	r.handles[key] = cancel
	r.mu.Unlock()

	return ctx, cancel
}

// cancel aborts the in-flight request for the fingerprint and removes its
// handle. Returns false (no-op) when nothing is in flight.
func (r *cancelRegistry) cancel(key string) bool {
	r.mu.Lock()
	handle, ok := r.handles[key]
	if ok {
		delete(r.handles, key)
	}
	r.mu.Unlock()

	if ok {
		handle()
	}
	return ok
}

// clear removes the handle without cancelling; called when a request
// settles on its own.
func (r *cancelRegistry) clear(key string) {
	r.mu.Lock()
	delete(r.handles, key)
	r.mu.Unlock()
}

// contains reports whether a handle is registered for the fingerprint.
func (r *cancelRegistry) contains(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[key]
	return ok
}
