package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yoockh/visadesk/internal/models"
)

const (
	lookupKeyPrefix  = "visa:lookup:"
	DefaultLookupTTL = 10 * time.Minute
)

type RedisLookupCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLookupCache(rdb *redis.Client, ttl time.Duration) *RedisLookupCache {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &RedisLookupCache{rdb: rdb, ttl: ttl}
}

// LookupKey hashes the tuple so passport numbers never appear in key names.
func LookupKey(f models.HolderFields) string {
	sum := sha256.Sum256([]byte(f.Nationality + "\x00" + f.FullName + "\x00" + f.PassportNumber + "\x00" + f.DateOfBirth))
	return lookupKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *RedisLookupCache) Get(ctx context.Context, f models.HolderFields) (*models.HolderWithKeys, bool, error) {
	key := LookupKey(f)
	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var h models.HolderWithKeys
	if err := json.Unmarshal([]byte(s), &h); err != nil {
		// data corrupt: treat as miss by deleting
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false, nil
	}
	return &h, true, nil
}

func (c *RedisLookupCache) Set(ctx context.Context, f models.HolderFields, h *models.HolderWithKeys) error {
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, LookupKey(f), b, c.ttl).Err()
}
