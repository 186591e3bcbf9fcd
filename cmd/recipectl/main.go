package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"recipe_backend/internal/app/di"
	"recipe_backend/internal/cli"
)

func main() {
	// .envがあれば読み込む
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCommand(newRuntime())
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRuntime は各サブコマンドの依存を必要になった時点で構築します。
func newRuntime() *cli.Runtime {
	return &cli.Runtime{
		Recipes: func(ctx context.Context) (cli.Recipes, func(), error) {
			return openRecipes(ctx, di.NewRedis, di.NewDB)
		},
		Detector: func(ctx context.Context) (cli.Detector, io.Closer, error) {
			return di.NewDetectionUsecase(ctx)
		},
		Cache: func(ctx context.Context) (cli.Purger, func(), error) {
			rdb := di.NewRedis(ctx)
			if rdb == nil {
				return nil, nil, errors.New("redis is not available; set REDIS_HOST")
			}
			slog.Info("purging recipe cache")
			return di.NewRecipeCache(rdb), func() { _ = rdb.Close() }, nil
		},
	}
}

// openRecipes はRedisとDBを開いてレシピユースケースを構築します。
// DBの初期化に失敗した場合は、先に開いたRedis接続を閉じてから返します。
func openRecipes(
	ctx context.Context,
	newRedis func(context.Context) *redis.Client,
	newDB func() (*gorm.DB, error),
) (cli.Recipes, func(), error) {
	rdb := newRedis(ctx)
	db, err := newDB()
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, nil, err
	}
	done := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if db != nil {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	}
	return di.NewRecipeUsecase(rdb, db), done, nil
}
