package imageload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ByteStore caches raw fetched image bytes keyed by source reference.
type ByteStore interface {
	Get(ctx context.Context, ref string) ([]byte, bool, error)
	Set(ctx context.Context, ref string, data []byte) error
}

// RedisStore keeps fetched images in Redis so export workers share them.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to addr. ttl <= 0 keeps entries for a day.
func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: "imgcache:",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	return s.prefix + hex.EncodeToString(sum[:])
}

// Get implements ByteStore.
func (s *RedisStore) Get(ctx context.Context, ref string) ([]byte, bool, error) {
	data, err := s.rdb.Get(ctx, s.key(ref)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set implements ByteStore.
func (s *RedisStore) Set(ctx context.Context, ref string, data []byte) error {
	return s.rdb.Set(ctx, s.key(ref), data, s.ttl).Err()
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
