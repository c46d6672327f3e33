package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/goragodwiriya/nowjs-api-client/pkg/transport"
)

func TestSnapshotRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	snapshot := []SnapshotEntry{
		{
			Key: "GET:/api/items:page=1",
			Entry: Entry{
				Payload:   &transport.Response{Status: 200, Body: []byte(`[{"id":1}]`)},
				StoredAt:  now,
				ExpiresAt: now.Add(time.Hour),
			},
		},
	}

	blob, err := EncodeSnapshot(snapshot)
	if err != nil {
		t.Fatalf("EncodeSnapshot failed: %v", err)
	}

	decoded, err := DecodeSnapshot(blob)
	if err != nil {
		t.Fatalf("DecodeSnapshot failed: %v", err)
	}

	if len(decoded) != 1 {
		t.Fatalf("decoded length = %d, want 1", len(decoded))
	}
	if decoded[0].Key != snapshot[0].Key {
		t.Errorf("key = %s, want %s", decoded[0].Key, snapshot[0].Key)
	}
	if string(decoded[0].Entry.Payload.Body) != `[{"id":1}]` {
		t.Errorf("payload = %s, want original body", decoded[0].Entry.Payload.Body)
	}
	if !decoded[0].Entry.ExpiresAt.Equal(snapshot[0].Entry.ExpiresAt) {
		t.Errorf("expiresAt = %v, want %v", decoded[0].Entry.ExpiresAt, snapshot[0].Entry.ExpiresAt)
	}
}

func TestDecodeSnapshot_Corrupt(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{not json`))
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Errorf("err = %v, want ErrCorruptSnapshot", err)
	}
}

func TestDecodeSnapshot_Empty(t *testing.T) {
	snapshot, err := DecodeSnapshot(nil)
	if err != nil {
		t.Errorf("DecodeSnapshot(nil) error = %v, want nil", err)
	}
	if snapshot != nil {
		t.Errorf("snapshot = %v, want nil", snapshot)
	}
}
