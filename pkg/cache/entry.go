// Package cache provides the TTL-bounded response cache with FIFO overflow
// eviction, deterministic fingerprint generation and snapshot persistence.
package cache

import (
	"time"

	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

// Entry is a cached response. Entries are never mutated in place; a new
// write for the same fingerprint replaces the entry wholesale.
type Entry struct {
	// Payload is the cached response.
	Payload *transport.Response `json:"payload"`

	// StoredAt is when the entry was written.
	StoredAt time.Time `json:"stored_at"`

	// ExpiresAt is when the entry becomes stale.
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true once the entry has reached its expiry time. An
// entry is a miss at now >= ExpiresAt.
func (e *Entry) IsExpired() bool {
	return !time.Now().Before(e.ExpiresAt)
}

// TTL returns the time until expiration, or 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
