// Package cache provides caching decorators for provider interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"recipe_backend/internal/feature/recipes/domain/entity"
	"recipe_backend/internal/feature/recipes/usecase"
)

// CachingRecipeProvider decorates a RecipeProvider with Redis caching.
// Failed lookups are never cached, so a transient outage does not stick.
type CachingRecipeProvider struct {
	inner     usecase.RecipeProvider
	rdb       *redis.Client
	ttl       time.Duration // 0 means "until the next 08:00 JST"
	namespace string
}

// Compile-time check to ensure CachingRecipeProvider implements RecipeProvider.
var _ usecase.RecipeProvider = (*CachingRecipeProvider)(nil)

// NewCachingRecipeProvider decorates a RecipeProvider with Redis caching.
// If ttl is 0 or negative, entries expire at the next 08:00 JST when the
// provider refreshes its rankings. If namespace is empty, it uses "recipes".
func NewCachingRecipeProvider(rdb *redis.Client, ttl time.Duration, inner usecase.RecipeProvider, namespace string) *CachingRecipeProvider {
	if ttl < 0 {
		ttl = 0
	}
	if namespace == "" {
		namespace = "recipes"
	}
	return &CachingRecipeProvider{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ListSmallCategories returns the small category list, from cache when possible.
func (c *CachingRecipeProvider) ListSmallCategories(ctx context.Context) ([]entity.Category, error) {
	if c.rdb == nil {
		return c.inner.ListSmallCategories(ctx)
	}

	key := c.namespace + ":categories:small"
	var out []entity.Category
	if c.load(ctx, key, &out) {
		return out, nil
	}

	out, err := c.inner.ListSmallCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

// GetCategoryRanking returns a category ranking, from cache when possible.
func (c *CachingRecipeProvider) GetCategoryRanking(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
	if c.rdb == nil {
		return c.inner.GetCategoryRanking(ctx, categoryID)
	}

	key := fmt.Sprintf("%s:ranking:%s", c.namespace, safe(categoryID))
	var out []entity.Recipe
	if c.load(ctx, key, &out) {
		return out, nil
	}

	out, err := c.inner.GetCategoryRanking(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

// Purge deletes every cached entry in the namespace and returns the number of keys removed.
func (c *CachingRecipeProvider) Purge(ctx context.Context) (int, error) {
	if c.rdb == nil {
		return 0, nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

// load reads a cached JSON value into dest. Corrupted entries are deleted.
func (c *CachingRecipeProvider) load(ctx context.Context, key string, dest any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		slog.Warn("deleting corrupted cache entry", "key", key, "error", err)
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// store writes value to the cache (best effort).
func (c *CachingRecipeProvider) store(ctx context.Context, key string, value any) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.expiry()).Err(); err != nil {
		slog.Warn("failed to write cache entry", "key", key, "error", err)
	}
}

func (c *CachingRecipeProvider) expiry() time.Duration {
	if c.ttl > 0 {
		return c.ttl
	}
	return TimeUntilNext8AM()
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingRecipeProvider) deleteByPattern(ctx context.Context, pattern string) (int, error) {
	var cursor uint64
	deleted := 0
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return deleted, nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
