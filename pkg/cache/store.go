package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

// DefaultMaxSize bounds the store when no explicit size is configured.
const DefaultMaxSize = 100

// Store is a TTL-bounded fingerprint-to-entry map with size-bounded eviction.
//
// Eviction is FIFO: when the entry count exceeds maxSize, the
// oldest-INSERTED entries are removed first. This is a deliberate
// simplification over LRU; access recency is ignored. Re-writing an
// existing fingerprint replaces the entry and counts as a fresh insertion
// (it moves to the back of the eviction order).
//
// Expired entries are purged lazily on Get and in bulk via EvictExpired.
// All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []string // insertion order, oldest first
	maxSize int
}

// NewStore creates a store bounded to maxSize entries. A maxSize <= 0 falls
// back to DefaultMaxSize.
func NewStore(maxSize int) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Store{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
	}
}

// Get returns the entry for the fingerprint, or false if missing or
// expired. Expired entries are purged on access.
func (s *Store) Get(key string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		cacheMisses.Inc()
		return nil, false
	}
	if entry.IsExpired() {
		s.remove(key)
		cacheEvictions.WithLabelValues("expired").Inc()
		cacheMisses.Inc()
		return nil, false
	}

	cacheHits.Inc()
	return entry, true
}

// Set stores payload under the fingerprint with expiry now + ttl. A ttl <= 0
// means "do not cache": Set becomes a no-op. An existing entry is replaced,
// never mutated, and moves to the back of the eviction order.
func (s *Store) Set(key string, payload *transport.Response, ttl time.Duration) {
	if ttl <= 0 || payload == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		s.removeFromOrder(key)
	}

	now := time.Now()
	s.entries[key] = &Entry{
		Payload:   payload,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	s.order = append(s.order, key)

	for len(s.entries) > s.maxSize {
		oldest := s.order[0]
		s.remove(oldest)
		cacheEvictions.WithLabelValues("overflow").Inc()
	}

	cacheEntries.Set(float64(len(s.entries)))
}

// Invalidate removes the entry for the fingerprint. Returns true if an
// entry was present.
func (s *Store) Invalidate(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	s.remove(key)
	cacheEvictions.WithLabelValues("invalidated").Inc()
	return true
}

// InvalidateMatching removes every entry whose fingerprint contains the
// pattern as a substring and returns the number removed. Used after
// mutating calls to drop now-stale reads of the same resource.
func (s *Store) InvalidateMatching(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, key := range append([]string(nil), s.order...) {
		if strings.Contains(key, pattern) {
			s.remove(key)
			cacheEvictions.WithLabelValues("invalidated").Inc()
			count++
		}
	}
	return count
}

// EvictExpired removes all entries past expiry and returns the number
// removed.
func (s *Store) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, key := range append([]string(nil), s.order...) {
		if entry, ok := s.entries[key]; ok && entry.IsExpired() {
			s.remove(key)
			cacheEvictions.WithLabelValues("expired").Inc()
			count++
		}
	}
	return count
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
	s.order = nil
	cacheEntries.Set(0)
}

// Len returns the current entry count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns the live entries as an ordered list of (key, entry)
// pairs, oldest-inserted first, for best-effort persistence.
func (s *Store) Snapshot() []SnapshotEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]SnapshotEntry, 0, len(s.entries))
	for _, key := range s.order {
		entry, ok := s.entries[key]
		if !ok || entry.IsExpired() {
			continue
		}
		snapshot = append(snapshot, SnapshotEntry{Key: key, Entry: *entry})
	}
	return snapshot
}

// Restore replaces the store contents from a persisted snapshot, preserving
// insertion order. Entries restored in an expired state are dropped
// immediately.
func (s *Store) Restore(snapshot []SnapshotEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry, len(snapshot))
	s.order = nil

	for _, item := range snapshot {
		entry := item.Entry
		if entry.IsExpired() {
			continue
		}
		if _, ok := s.entries[item.Key]; ok {
			s.removeFromOrder(item.Key)
		}
		s.entries[item.Key] = &entry
		s.order = append(s.order, item.Key)
	}

	for len(s.entries) > s.maxSize {
		s.remove(s.order[0])
	}

	cacheEntries.Set(float64(len(s.entries)))
}

// remove deletes the entry and its order slot. Caller holds s.mu.
func (s *Store) remove(key string) {
	delete(s.entries, key)
	s.removeFromOrder(key)
	cacheEntries.Set(float64(len(s.entries)))
}

// removeFromOrder drops key from the insertion-order slice. Caller holds s.mu.
func (s *Store) removeFromOrder(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
