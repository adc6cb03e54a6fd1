package repository

import (
	"context"
	"fmt"

	"marketplace-analytics/domain"
)

// CacheRepository caches assembled analytics payloads keyed by store,
// lookback window and tier.
type CacheRepository interface {
	Get(ctx context.Context, storeID string, months int, level domain.Level) (*domain.AnalyticsPayload, bool)
	Set(ctx context.Context, storeID string, months int, level domain.Level, payload *domain.AnalyticsPayload) error
	// Clear removes every entry whose key starts with storeID; an empty
	// storeID clears the whole cache.
	Clear(ctx context.Context, storeID string) error
}

// cacheKeyPrefix namespaces analytics payloads, so clearing never
// touches keys owned by other services sharing the backend.
const cacheKeyPrefix = "analytics:"

// cacheKey builds the composite cache key. Clear relies on the store ID
// directly following the namespace.
func cacheKey(storeID string, months int, level domain.Level) string {
	return fmt.Sprintf("%s%s_%d_%s", cacheKeyPrefix, storeID, months, level)
}
