package repository

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace-analytics/domain"
)

// RedisCache is an alternative CacheRepository backend for deployments
// running more than one instance. Freshness is enforced by redis key
// expiry instead of a stored timestamp; eviction is left to the redis
// maxmemory policy, so the in-process capacity bound does not apply.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the given address.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

// Get returns the cached payload if the key is still live.
func (r *RedisCache) Get(ctx context.Context, storeID string, months int, level domain.Level) (*domain.AnalyticsPayload, bool) {
	raw, err := r.client.Get(ctx, cacheKey(storeID, months, level)).Bytes()
	if err != nil {
		return nil, false
	}
	var payload domain.AnalyticsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("Warning: dropping undecodable cache entry: %v", err)
		return nil, false
	}
	return &payload, true
}

// Set stores the payload with the cache TTL as key expiry.
func (r *RedisCache) Set(ctx context.Context, storeID string, months int, level domain.Level, payload *domain.AnalyticsPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cacheKey(storeID, months, level), raw, r.ttl).Err()
}

// Clear scans the analytics namespace for keys prefixed with storeID
// and deletes them; an empty storeID matches every analytics key, and
// never anything outside the namespace.
func (r *RedisCache) Clear(ctx context.Context, storeID string) error {
	iter := r.client.Scan(ctx, 0, cacheKeyPrefix+storeID+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
