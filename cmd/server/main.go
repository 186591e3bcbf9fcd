package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"recipe_backend/internal/app/di"
	"recipe_backend/internal/app/router"
	detectionhandler "recipe_backend/internal/feature/detection/transport/handler"
	recipeshandler "recipe_backend/internal/feature/recipes/transport/handler"
	"recipe_backend/internal/platform/http/handler"
	jwtmw "recipe_backend/internal/platform/jwt"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	ctx := context.Background()

	// Redis（無ければキャッシュなし）
	rdb := di.NewRedis(ctx)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// DB（無ければ検索履歴なし）
	db, err := di.NewDB()
	if err != nil {
		log.Fatal(err)
	}

	// Usecase
	recipesUC := di.NewRecipeUsecase(rdb, db)
	detectionUC, closer, err := di.NewDetectionUsecase(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			slog.Error("failed to close detector", "error", err)
		}
	}()

	// ヘルスチェック対象
	checks := map[string]handler.CheckFunc{}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if db != nil {
		checks["db"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	// CORS（CORS_ALLOW_ORIGINSが設定されている場合のみ）
	var middlewares []gin.HandlerFunc
	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = strings.Split(origins, ",")
		cfg.AddAllowHeaders("Authorization")
		middlewares = append(middlewares, cors.New(cfg))
	}

	// ルータ生成
	r := router.NewRouter(
		handler.NewHealth(checks),
		recipeshandler.NewRecipesHandler(recipesUC),
		detectionhandler.NewDetectionHandler(detectionUC),
		middlewares...,
	)

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		slog.Warn("JWT_SECRET is not set. /v1/history will reject every request.")
	}

	addr := ":" + getEnv("PORT", "8080")
	slog.Info("starting server", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
