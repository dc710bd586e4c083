package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/zerowastechef/server/internal/ports/inbound"
	"github.com/zerowastechef/server/internal/ports/outbound"
)

const (
	listKeyPrefix = "recipes:list:"
	// KeysSet tracks every cached listing key
	KeysSet = "recipes:keys"
)

// ListCache caches public recipe listings per category. Failures are
// logged and reported as misses.
type ListCache struct {
	cache  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewListCache creates a listing cache
func NewListCache(cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *ListCache {
	return &ListCache{
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("recipe-cache"),
	}
}

// ListKey returns the cache key of a category listing
func ListKey(category string) string {
	return listKeyPrefix + category
}

// Get returns the cached listing, or false
func (c *ListCache) Get(ctx context.Context, category string) ([]inbound.RecipeDTO, bool) {
	data, err := c.cache.Get(ctx, ListKey(category))
	if err != nil {
		if !errors.Is(err, outbound.ErrCacheMiss) {
			c.logger.Warn("Failed to read recipe listing", zap.String("category", category), zap.Error(err))
		}
		return nil, false
	}

	var recipes []inbound.RecipeDTO
	if err := json.Unmarshal(data, &recipes); err != nil {
		c.logger.Warn("Discarding corrupt recipe listing", zap.String("category", category), zap.Error(err))
		return nil, false
	}
	return recipes, true
}

// Store caches a listing and tracks its key
func (c *ListCache) Store(ctx context.Context, category string, recipes []inbound.RecipeDTO) {
	data, err := json.Marshal(recipes)
	if err != nil {
		c.logger.Warn("Failed to encode recipe listing", zap.Error(err))
		return
	}

	key := ListKey(category)
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache recipe listing", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.cache.SAdd(ctx, KeysSet, key); err != nil {
		c.logger.Warn("Failed to track recipe listing", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every tracked listing
func (c *ListCache) Invalidate(ctx context.Context) {
	keys, err := c.cache.SMembers(ctx, KeysSet)
	if err != nil {
		c.logger.Warn("Failed to read tracked recipe listings", zap.Error(err))
		return
	}

	if err := c.cache.Delete(ctx, append(keys, KeysSet)...); err != nil {
		c.logger.Warn("Failed to invalidate recipe listings", zap.Error(err))
	}
}
