// Package persist provides the optional storage collaborator for cache
// snapshots. Persistence is best-effort: the orchestrator saves and loads
// snapshot blobs around cache writes and never surfaces storage failures
// to callers.
package persist

import (
	"context"
	"errors"
)

// ErrNoSnapshot indicates no snapshot has been stored yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store persists an opaque snapshot blob.
type Store interface {
	// Save stores the snapshot blob, replacing any previous one.
	Save(ctx context.Context, blob []byte) error

	// Load returns the stored snapshot blob, or ErrNoSnapshot.
	Load(ctx context.Context) ([]byte, error)
}
