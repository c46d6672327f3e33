// Package cache implements the response cache of the request orchestrator:
//
//   - Deterministic fingerprint generation (method:url:sorted-params)
//   - TTL-bounded entries with lazy expiry on read plus explicit sweeps
//   - Size-bounded FIFO eviction (oldest-inserted first, NOT LRU;
//     a documented simplification, see Store)
//   - Substring invalidation for write-through invalidation after mutations
//   - Best-effort snapshot persistence via an external storage collaborator
//   - Prometheus metrics for hits, misses and evictions
//
// # Basic Usage
//
//	store := cache.NewStore(100)
//
//	key := cache.BuildKey("GET", "/api/items", map[string]any{"page": 1})
//
//	if entry, ok := store.Get(key); ok {
//		// cache hit
//		_ = entry.Payload
//	}
//
//	store.Set(key, resp, 60*time.Second)
//
// # Snapshot Persistence
//
//	blob, err := cache.EncodeSnapshot(store.Snapshot())
//	// ... persist blob via a storage collaborator ...
//
//	snapshot, err := cache.DecodeSnapshot(blob)
//	if err != nil {
//		// corrupt snapshots are discarded, never surfaced
//		snapshot = nil
//	}
//	store.Restore(snapshot)
//
// Entries restored in an expired state are dropped immediately.
package cache
