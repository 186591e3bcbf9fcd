package router

import (
	"github.com/gin-gonic/gin"

	detectionhandler "recipe_backend/internal/feature/detection/transport/handler"
	recipeshandler "recipe_backend/internal/feature/recipes/transport/handler"
	"recipe_backend/internal/platform/http/handler"
	jwtmw "recipe_backend/internal/platform/jwt"
)

// NewRouter はAPIのルーティングを構成します。middlewaresはルート全体に適用されます（CORSなど）。
func NewRouter(health *handler.Health, recipes *recipeshandler.RecipesHandler,
	detection *detectionhandler.DetectionHandler, middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middlewares...)

	// 導通確認用
	r.GET("/healthz", health.Handle)
	r.HEAD("/healthz", health.Handle)
	r.OPTIONS("/healthz", health.Handle)

	// 認証不要
	v1 := r.Group("/v1")
	{
		v1.GET("/labels", recipes.ListLabels)
		v1.POST("/detect", detection.Detect)
		v1.GET("/categories", recipes.GetCategories)
		v1.GET("/rankings/:categoryId", recipes.GetRanking)
		v1.GET("/recipes", recipes.GetRecipes)
	}

	// 運用者のみ（operatorロールのJWTが必要）
	ops := v1.Group("/")
	ops.Use(jwtmw.OperatorRequired())
	{
		ops.GET("/history", recipes.GetHistory)
	}

	return r
}
