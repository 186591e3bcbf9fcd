// Package handler はrecipesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"recipe_backend/internal/api"
	"recipe_backend/internal/feature/recipes/domain/entity"
	"recipe_backend/internal/feature/recipes/domain/ingredient"
	"recipe_backend/internal/feature/recipes/usecase"
)

// RecipesUsecase はレシピ検索のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type RecipesUsecase interface {
	ResolveCategories(ctx context.Context, term string) (entity.CategoryLookup, error)
	FetchRanking(ctx context.Context, categoryID string) (entity.RankingLookup, error)
	SearchRecipes(ctx context.Context, label string, width int) (*entity.SearchResult, error)
	ListHistory(ctx context.Context, limit int) ([]entity.SearchRecord, error)
}

// RecipesHandler はレシピ検索のHTTPリクエストを処理します。
type RecipesHandler struct {
	uc RecipesUsecase
}

// NewRecipesHandler は指定されたusecaseでRecipesHandlerの新しいインスタンスを生成します。
func NewRecipesHandler(uc RecipesUsecase) *RecipesHandler {
	return &RecipesHandler{uc: uc}
}

// ListLabels は検出器が扱うラベルと翻訳後のカテゴリ名を返します。
//
// エンドポイント: GET /v1/labels
func (h *RecipesHandler) ListLabels(c *gin.Context) {
	labels := ingredient.Labels()
	out := make([]api.LabelResponse, 0, len(labels))
	for _, l := range labels {
		term := ingredient.Translate(l)
		res := api.LabelResponse{Label: l, Term: term}
		if id, ok := ingredient.ReferenceCategoryID(term); ok {
			res.CategoryId = &id
		}
		out = append(out, res)
	}
	c.JSON(http.StatusOK, out)
}

// GetCategories は検索語と完全一致するカテゴリを返します。
//
// エンドポイント: GET /v1/categories?term=大根
func (h *RecipesHandler) GetCategories(c *gin.Context) {
	var params api.GetCategoriesParams
	if err := runtime.BindQueryParameter("form", true, true, "term", c.Request.URL.Query(), &params.Term); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	lookup, err := h.uc.ResolveCategories(c.Request.Context(), params.Term)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.CategoryLookupResponse{
		Term:       lookup.Term,
		Status:     api.LookupStatus(lookup.Status),
		Categories: toCategoryResponses(lookup.Categories),
	})
}

// GetRanking はカテゴリのレシピランキングを返します。サムネイルは付与しません。
//
// エンドポイント: GET /v1/rankings/:categoryId
func (h *RecipesHandler) GetRanking(c *gin.Context) {
	lookup, err := h.uc.FetchRanking(c.Request.Context(), c.Param("categoryId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRankingResponse(lookup))
}

// GetRecipes は検出ラベルから一致した全カテゴリのランキングをサムネイル付きで返します。
//
// エンドポイント: GET /v1/recipes?label=daikon&width=150
func (h *RecipesHandler) GetRecipes(c *gin.Context) {
	var params api.GetRecipesParams
	q := c.Request.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "label", q, &params.Label); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "width", q, &params.Width); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	width := 0 // usecase側でデフォルト幅を適用
	if params.Width != nil {
		if *params.Width < 1 || *params.Width > usecase.MaxThumbnailWidth {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "width must be between 1 and 1024"})
			return
		}
		width = *params.Width
	}

	result, err := h.uc.SearchRecipes(c.Request.Context(), params.Label, width)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := api.SearchResponse{
		Label:      result.Label,
		Term:       result.Term,
		Status:     api.LookupStatus(result.Status),
		Categories: make([]api.CategoryRankingResponse, 0, len(result.Categories)),
	}
	for _, cr := range result.Categories {
		cat := toCategoryResponse(cr.Category)
		if cr.CategoryID != "" {
			id := cr.CategoryID
			cat.CategoryId = &id
		}
		out.Categories = append(out.Categories, api.CategoryRankingResponse{
			Category: cat,
			Ranking:  toRankingResponse(cr.Ranking),
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetHistory は直近の検索履歴を返します。JWT認証が必要です。
//
// エンドポイント: GET /v1/history?limit=20
func (h *RecipesHandler) GetHistory(c *gin.Context) {
	var params api.GetHistoryParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.Request.URL.Query(), &params.Limit); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	records, err := h.uc.ListHistory(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]api.SearchRecordResponse, 0, len(records))
	for _, r := range records {
		ids := r.CategoryIDs
		if ids == nil {
			ids = []string{}
		}
		out = append(out, api.SearchRecordResponse{
			Id:          int(r.ID),
			Label:       r.Label,
			Term:        r.Term,
			Status:      api.LookupStatus(r.Status),
			CategoryIds: ids,
			RecipeCount: r.RecipeCount,
			SearchedAt:  r.SearchedAt.UTC(),
		})
	}
	c.JSON(http.StatusOK, out)
}

// writeError はusecaseのエラーをHTTPステータスに変換します。
func (h *RecipesHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptyLabel),
		errors.Is(err, usecase.ErrEmptyTerm),
		errors.Is(err, usecase.ErrInvalidCategoryID):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrHistoryDisabled):
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("レシピ検索に失敗", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}

func toCategoryResponse(cat entity.Category) api.CategoryResponse {
	return api.CategoryResponse{CategoryName: cat.CategoryName, CategoryUrl: cat.CategoryURL}
}

// toCategoryResponses はカテゴリIDを解析できたものにだけcategoryIdを付けます。
func toCategoryResponses(categories []entity.Category) []api.CategoryResponse {
	out := make([]api.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		res := toCategoryResponse(cat)
		if id, err := cat.ID(); err == nil {
			res.CategoryId = &id
		}
		out = append(out, res)
	}
	return out
}

func toRankingResponse(l entity.RankingLookup) api.RankingLookupResponse {
	out := api.RankingLookupResponse{
		CategoryId: l.CategoryID,
		Status:     api.LookupStatus(l.Status),
		Recipes:    make([]api.RecipeResponse, 0, len(l.Recipes)),
	}
	for _, r := range l.Recipes {
		material := r.RecipeMaterial
		if material == nil {
			material = []string{}
		}
		res := api.RecipeResponse{
			Rank:             r.Rank,
			RecipeTitle:      r.RecipeTitle,
			RecipeUrl:        r.RecipeURL,
			FoodImageUrl:     r.FoodImageURL,
			RecipeMaterial:   material,
			RecipeIndication: r.RecipeIndication,
		}
		if r.Thumbnail != "" {
			thumb := r.Thumbnail
			res.Thumbnail = &thumb
		}
		if r.ThumbnailFailed {
			failed := true
			res.ThumbnailError = &failed
		}
		out.Recipes = append(out.Recipes, res)
	}
	return out
}
