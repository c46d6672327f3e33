package cache

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorruptSnapshot indicates a persisted snapshot blob could not be
// decoded. Callers recover by discarding the snapshot; the error is never
// surfaced past the orchestrator.
var ErrCorruptSnapshot = errors.New("corrupt cache snapshot")

// SnapshotEntry is one (fingerprint, entry) pair of a persisted snapshot.
type SnapshotEntry struct {
	Key   string `json:"key"`
	Entry Entry  `json:"entry"`
}

// EncodeSnapshot serializes an ordered snapshot to a JSON text blob.
func EncodeSnapshot(snapshot []SnapshotEntry) ([]byte, error) {
	blob, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return blob, nil
}

// DecodeSnapshot parses a persisted snapshot blob. Malformed blobs return
// ErrCorruptSnapshot.
func DecodeSnapshot(blob []byte) ([]SnapshotEntry, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var snapshot []SnapshotEntry
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return snapshot, nil
}
