// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"recipe_backend/internal/feature/recipes/adapters"
	"recipe_backend/internal/feature/recipes/adapters/rakuten"
	"recipe_backend/internal/feature/recipes/adapters/thumbnail"
	"recipe_backend/internal/feature/recipes/usecase"
	"recipe_backend/internal/platform/cache"
	infrahttp "recipe_backend/internal/platform/http"
)

// thumbnailTimeout は画像1枚の取得に許す時間です。
const thumbnailTimeout = 10 * time.Second

// NewRakutenClient creates a Rakuten Recipe API client with its own HTTP client.
func NewRakutenClient() *rakuten.Client {
	cfg := rakuten.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return rakuten.NewClient(cfg, httpClient)
}

// NewRecipeCache wraps the Rakuten client with the Redis cache.
// Entries live until the next 08:00 JST.
func NewRecipeCache(rdb *redis.Client) *cache.CachingRecipeProvider {
	return cache.NewCachingRecipeProvider(rdb, 0, NewRakutenClient(), "recipes")
}

// NewRecipeProvider returns the cached provider when Redis is available,
// otherwise the bare Rakuten client.
func NewRecipeProvider(rdb *redis.Client) usecase.RecipeProvider {
	if rdb == nil {
		return NewRakutenClient()
	}
	return NewRecipeCache(rdb)
}

// NewSearchHistoryRepository returns nil when no database is configured,
// which disables search history.
func NewSearchHistoryRepository(db *gorm.DB) usecase.SearchHistoryRepository {
	if db == nil {
		return nil
	}
	return adapters.NewSearchHistoryGorm(db)
}

// NewRecipeUsecase wires the full label → recipe pipeline.
func NewRecipeUsecase(rdb *redis.Client, db *gorm.DB) *usecase.RecipeUsecase {
	normalizer := thumbnail.NewNormalizer(infrahttp.NewHTTPClient(thumbnailTimeout))
	return usecase.NewRecipeUsecase(NewRecipeProvider(rdb), normalizer, NewSearchHistoryRepository(db))
}
