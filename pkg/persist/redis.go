package persist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultSnapshotKey is the redis key snapshots are stored under.
const DefaultSnapshotKey = "apiclient:cache:snapshot"

// RedisStore persists cache snapshots as a single redis value.
type RedisStore struct {
	redis  *redis.Client
	key    string
	logger zerolog.Logger
}

// NewRedisStore creates a redis-backed snapshot store. An empty key falls
// back to DefaultSnapshotKey.
func NewRedisStore(client *redis.Client, key string, logger zerolog.Logger) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &RedisStore{
		redis:  client,
		key:    key,
		logger: logger,
	}
}

// Save stores the snapshot blob, replacing any previous one. Snapshots
// carry their own per-entry expiry, so the blob itself does not expire.
func (s *RedisStore) Save(ctx context.Context, blob []byte) error {
	if err := s.redis.Set(ctx, s.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}

	s.logger.Debug().
		Str("key", s.key).
		Int("bytes", len(blob)).
		Msg("Cache snapshot saved")

	return nil
}

// Load returns the stored snapshot blob, or ErrNoSnapshot when none exists.
func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	blob, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}

	s.logger.Debug().
		Str("key", s.key).
		Int("bytes", len(blob)).
		Msg("Cache snapshot loaded")

	return blob, nil
}
