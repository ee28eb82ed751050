package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"csgo-market-data/internal/models"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects and pings; callers fall back to no cache on error.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	log.Printf("✅ Redis 连接成功: %s", addr)
	return rdb, nil
}

// CachingKlineStore caches full kline dumps in Redis. A nil client disables
// caching; Timestamps always reads through.
type CachingKlineStore struct {
	inner     KlineStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

func NewCachingKlineStore(rdb *redis.Client, ttl time.Duration, inner KlineStore) *CachingKlineStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachingKlineStore{inner: inner, rdb: rdb, ttl: ttl, namespace: "kline"}
}

func (c *CachingKlineStore) Dump(ctx context.Context, marketHashName string) ([]models.KlineRecord, error) {
	if c.rdb == nil {
		return c.inner.Dump(ctx, marketHashName)
	}

	key := c.cacheKey(marketHashName)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []models.KlineRecord
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.Dump(ctx, marketHashName)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

func (c *CachingKlineStore) Timestamps(ctx context.Context, marketHashName string) ([]int64, error) {
	return c.inner.Timestamps(ctx, marketHashName)
}

// Invalidate drops the cached dumps of the given items. Best effort.
func (c *CachingKlineStore) Invalidate(ctx context.Context, marketHashNames ...string) {
	if c.rdb == nil || len(marketHashNames) == 0 {
		return
	}
	keys := make([]string, 0, len(marketHashNames))
	for _, name := range marketHashNames {
		keys = append(keys, c.cacheKey(name))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️  清除K线缓存失败: %v", err)
	}
}

func (c *CachingKlineStore) cacheKey(marketHashName string) string {
	return c.namespace + ":" + safe(marketHashName)
}

func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
