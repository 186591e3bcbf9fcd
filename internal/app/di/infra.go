package di

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"recipe_backend/internal/feature/recipes/adapters"
	infradb "recipe_backend/internal/platform/db"
	infraredis "recipe_backend/internal/platform/redis"
)

// NewRedis connects to Redis when REDIS_HOST is set.
// It returns nil when Redis is not configured or unreachable, and callers
// then run without cache.
func NewRedis(ctx context.Context) *redis.Client {
	cfg := infraredis.LoadConfig()
	if !cfg.Enabled() {
		slog.Info("REDIS_HOST is not set. Running without cache.")
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		return nil
	}
	return rdb
}

// NewDB opens the search history database (Postgres, or SQLite as a fallback).
// It returns nil without error when no database is configured.
func NewDB() (*gorm.DB, error) {
	db, err := infradb.Open(infradb.LoadConfigFromEnv(), &adapters.SearchHistoryModel{})
	if errors.Is(err, infradb.ErrNotConfigured) {
		slog.Info("database is not configured. Search history is disabled.")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}
