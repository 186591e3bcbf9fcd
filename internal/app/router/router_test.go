package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	detectionentity "recipe_backend/internal/feature/detection/domain/entity"
	detectionhandler "recipe_backend/internal/feature/detection/transport/handler"
	"recipe_backend/internal/feature/recipes/domain/entity"
	recipeshandler "recipe_backend/internal/feature/recipes/transport/handler"
	"recipe_backend/internal/platform/http/handler"
	jwtmw "recipe_backend/internal/platform/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubRecipes struct{}

func (stubRecipes) ResolveCategories(ctx context.Context, term string) (entity.CategoryLookup, error) {
	return entity.CategoryLookup{Term: term, Status: entity.LookupEmpty}, nil
}

func (stubRecipes) FetchRanking(ctx context.Context, categoryID string) (entity.RankingLookup, error) {
	return entity.RankingLookup{CategoryID: categoryID, Status: entity.LookupEmpty}, nil
}

func (stubRecipes) SearchRecipes(ctx context.Context, label string, width int) (*entity.SearchResult, error) {
	return &entity.SearchResult{Label: label, Term: label, Status: entity.LookupEmpty}, nil
}

func (stubRecipes) ListHistory(ctx context.Context, limit int) ([]entity.SearchRecord, error) {
	return []entity.SearchRecord{}, nil
}

type stubDetection struct{}

func (stubDetection) DetectIngredients(ctx context.Context, imageData []byte) (*detectionentity.DetectionResult, error) {
	return &detectionentity.DetectionResult{}, nil
}

func newTestRouter() *gin.Engine {
	return NewRouter(
		handler.NewHealth(nil),
		recipeshandler.NewRecipesHandler(stubRecipes{}),
		detectionhandler.NewDetectionHandler(stubDetection{}),
	)
}

func TestRouter_PublicRoutes(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	paths := []string{
		"/healthz",
		"/v1/labels",
		"/v1/categories?term=%E5%A4%A7%E6%A0%B9",
		"/v1/rankings/12-449-1520",
		"/v1/recipes?label=daikon",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}
}

func TestRouter_HistoryRequiresOperatorToken(t *testing.T) {
	const secret = "router-secret"
	t.Setenv(jwtmw.EnvKeyJWTSecret, secret)

	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/history", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwtmw.NewGenerator(secret, time.Minute).GenerateToken("ops")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
