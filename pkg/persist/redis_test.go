package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// setupTestRedis creates a test Redis client. Unit tests use a local Redis
// if available; the container-backed path is covered in tests/integration.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedisStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisStore should panic with nil redis client")
		}
	}()
	NewRedisStore(nil, "", zerolog.Nop())
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "", zerolog.Nop())
	ctx := context.Background()

	blob := []byte(`[{"key":"GET:/api/items:","entry":{}}]`)
	if err := store.Save(ctx, blob); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != string(blob) {
		t.Errorf("loaded = %s, want %s", loaded, blob)
	}
}

func TestRedisStore_Save_Replaces(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "", zerolog.Nop())
	ctx := context.Background()

	if err := store.Save(ctx, []byte("first")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, []byte("second")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != "second" {
		t.Errorf("loaded = %s, want second", loaded)
	}
}

func TestRedisStore_Load_NoSnapshot(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, "missing-key", zerolog.Nop())

	_, err := store.Load(context.Background())
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("err = %v, want ErrNoSnapshot", err)
	}
}
