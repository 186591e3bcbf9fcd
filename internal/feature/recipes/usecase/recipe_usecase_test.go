package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe_backend/internal/feature/recipes/domain"
	"recipe_backend/internal/feature/recipes/domain/entity"
	"recipe_backend/internal/feature/recipes/usecase"
)

// mockRecipeProvider はRecipeProviderインターフェースのモック実装です。
type mockRecipeProvider struct {
	ListSmallCategoriesFunc  func(ctx context.Context) ([]entity.Category, error)
	GetCategoryRankingFunc   func(ctx context.Context, categoryID string) ([]entity.Recipe, error)
	GetCategoryRankingCalls  []string
	ListSmallCategoriesCalls int
}

func (m *mockRecipeProvider) ListSmallCategories(ctx context.Context) ([]entity.Category, error) {
	m.ListSmallCategoriesCalls++
	if m.ListSmallCategoriesFunc != nil {
		return m.ListSmallCategoriesFunc(ctx)
	}
	return nil, errors.New("ListSmallCategoriesFunc is not implemented")
}

func (m *mockRecipeProvider) GetCategoryRanking(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
	m.GetCategoryRankingCalls = append(m.GetCategoryRankingCalls, categoryID)
	if m.GetCategoryRankingFunc != nil {
		return m.GetCategoryRankingFunc(ctx, categoryID)
	}
	return nil, errors.New("GetCategoryRankingFunc is not implemented")
}

// mockImageNormalizer はImageNormalizerインターフェースのモック実装です。
type mockImageNormalizer struct {
	NormalizeFunc func(ctx context.Context, imageURL string, width int) (string, error)
	Widths        []int
}

func (m *mockImageNormalizer) Normalize(ctx context.Context, imageURL string, width int) (string, error) {
	m.Widths = append(m.Widths, width)
	return m.NormalizeFunc(ctx, imageURL, width)
}

// mockHistory はSearchHistoryRepositoryインターフェースのモック実装です。
type mockHistory struct {
	Created        []entity.SearchRecord
	CreateErr      error
	ListRecentFunc func(ctx context.Context, limit int) ([]entity.SearchRecord, error)
}

func (m *mockHistory) Create(ctx context.Context, rec *entity.SearchRecord) error {
	m.Created = append(m.Created, *rec)
	return m.CreateErr
}

func (m *mockHistory) ListRecent(ctx context.Context, limit int) ([]entity.SearchRecord, error) {
	return m.ListRecentFunc(ctx, limit)
}

var smallCategories = []entity.Category{
	{CategoryName: "大根", CategoryURL: "https://recipe.rakuten.co.jp/category/12-449-1520/"},
	{CategoryName: "大根おろし", CategoryURL: "https://recipe.rakuten.co.jp/category/12-449-2000/"},
	{CategoryName: "キャベツ", CategoryURL: "https://recipe.rakuten.co.jp/category/12-98-1/"},
	{CategoryName: "トマト全般", CategoryURL: "https://recipe.rakuten.co.jp/category/12-454-1525/"},
	{CategoryName: "トマト全般", CategoryURL: "https://recipe.rakuten.co.jp/category/30-307-1525/"},
}

func listCategories(ctx context.Context) ([]entity.Category, error) {
	return smallCategories, nil
}

func threeRecipes() []entity.Recipe {
	return []entity.Recipe{
		{RecipeTitle: "A", FoodImageURL: "https://img.example.com/a.jpg", RecipeURL: "https://recipe.example.com/a", RecipeMaterial: []string{"大根", "醤油"}, RecipeIndication: "約10分"},
		{RecipeTitle: "B", FoodImageURL: "https://img.example.com/b.jpg", RecipeURL: "https://recipe.example.com/b"},
		{RecipeTitle: "C", FoodImageURL: "https://img.example.com/c.jpg", RecipeURL: "https://recipe.example.com/c"},
	}
}

func TestRecipeUsecase_ResolveCategories(t *testing.T) {
	ctx := context.Background()
	errUpstream := &domain.RemoteServiceError{Op: "CategoryList", StatusCode: 503}

	testCases := []struct {
		name           string
		term           string
		listFunc       func(ctx context.Context) ([]entity.Category, error)
		expectedStatus entity.LookupStatus
		expectedURLs   []string
		expectedErr    error
	}{
		{
			name:           "success: single exact match",
			term:           "大根",
			listFunc:       listCategories,
			expectedStatus: entity.LookupFound,
			expectedURLs:   []string{"https://recipe.rakuten.co.jp/category/12-449-1520/"},
		},
		{
			name:           "success: all categories sharing the name are returned",
			term:           "トマト全般",
			listFunc:       listCategories,
			expectedStatus: entity.LookupFound,
			expectedURLs: []string{
				"https://recipe.rakuten.co.jp/category/12-454-1525/",
				"https://recipe.rakuten.co.jp/category/30-307-1525/",
			},
		},
		{
			name:           "empty: partial match is not a match",
			term:           "大",
			listFunc:       listCategories,
			expectedStatus: entity.LookupEmpty,
		},
		{
			name:           "empty: untranslated label",
			term:           "daikon",
			listFunc:       listCategories,
			expectedStatus: entity.LookupEmpty,
		},
		{
			name:           "empty: case sensitive",
			term:           "きゃべつ",
			listFunc:       listCategories,
			expectedStatus: entity.LookupEmpty,
		},
		{
			name: "unavailable: provider error is not returned as error",
			term: "大根",
			listFunc: func(ctx context.Context) ([]entity.Category, error) {
				return nil, errUpstream
			},
			expectedStatus: entity.LookupUnavailable,
		},
		{
			name:        "error: empty term",
			term:        "",
			expectedErr: usecase.ErrEmptyTerm,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &mockRecipeProvider{ListSmallCategoriesFunc: tc.listFunc}
			uc := usecase.NewRecipeUsecase(provider, nil, nil)

			lookup, err := uc.ResolveCategories(ctx, tc.term)

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				assert.Zero(t, provider.ListSmallCategoriesCalls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, lookup.Status)
			assert.Equal(t, tc.term, lookup.Term)

			var urls []string
			for _, c := range lookup.Categories {
				assert.Equal(t, tc.term, c.CategoryName)
				urls = append(urls, c.CategoryURL)
			}
			assert.Equal(t, tc.expectedURLs, urls)

			if tc.expectedStatus == entity.LookupUnavailable {
				assert.ErrorIs(t, lookup.Cause, domain.ErrRemoteService)
			} else {
				assert.NoError(t, lookup.Cause)
			}
		})
	}
}

func TestRecipeUsecase_FetchRanking_RanksFollowProviderOrder(t *testing.T) {
	ctx := context.Background()
	provider := &mockRecipeProvider{
		GetCategoryRankingFunc: func(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
			return threeRecipes(), nil
		},
	}
	uc := usecase.NewRecipeUsecase(provider, nil, nil)

	lookup, err := uc.FetchRanking(ctx, "12-449-1520")
	require.NoError(t, err)
	require.Equal(t, entity.LookupFound, lookup.Status)
	require.Len(t, lookup.Recipes, 3)

	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, i+1, lookup.Recipes[i].Rank)
		assert.Equal(t, want, lookup.Recipes[i].RecipeTitle)
	}
	assert.Equal(t, []string{"大根", "醤油"}, lookup.Recipes[0].RecipeMaterial)
	assert.Equal(t, []string{"12-449-1520"}, provider.GetCategoryRankingCalls)
}

func TestRecipeUsecase_FetchRanking_RankIsBijection(t *testing.T) {
	ctx := context.Background()

	for _, n := range []int{1, 2, 4, 20} {
		recipes := make([]entity.Recipe, n)
		for i := range recipes {
			recipes[i].RecipeTitle = string(rune('a' + i))
		}
		provider := &mockRecipeProvider{
			GetCategoryRankingFunc: func(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
				return recipes, nil
			},
		}
		uc := usecase.NewRecipeUsecase(provider, nil, nil)

		lookup, err := uc.FetchRanking(ctx, "12-98-1")
		require.NoError(t, err)
		require.Len(t, lookup.Recipes, n)
		for i, r := range lookup.Recipes {
			assert.Equal(t, i+1, r.Rank)
			assert.Equal(t, recipes[i].RecipeTitle, r.RecipeTitle)
		}
		// 入力スライスは変更しない
		assert.Zero(t, recipes[0].Rank)
	}
}

func TestRecipeUsecase_FetchRanking_Statuses(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name           string
		categoryID     string
		rankingFunc    func(ctx context.Context, categoryID string) ([]entity.Recipe, error)
		expectedStatus entity.LookupStatus
		expectedErr    error
	}{
		{
			name:       "empty: provider returned no recipes",
			categoryID: "12-98-1",
			rankingFunc: func(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
				return []entity.Recipe{}, nil
			},
			expectedStatus: entity.LookupEmpty,
		},
		{
			name:       "unavailable: http error",
			categoryID: "12-98-1",
			rankingFunc: func(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
				return nil, &domain.RemoteServiceError{Op: "CategoryRanking", StatusCode: 404}
			},
			expectedStatus: entity.LookupUnavailable,
		},
		{
			name:       "unavailable: context canceled",
			categoryID: "12-98-1",
			rankingFunc: func(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
				return nil, context.Canceled
			},
			expectedStatus: entity.LookupUnavailable,
		},
		{
			name:        "error: empty category id",
			categoryID:  "",
			expectedErr: usecase.ErrInvalidCategoryID,
		},
		{
			name:        "error: malformed category id",
			categoryID:  "12-98-1&applicationId=evil",
			expectedErr: usecase.ErrInvalidCategoryID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &mockRecipeProvider{GetCategoryRankingFunc: tc.rankingFunc}
			uc := usecase.NewRecipeUsecase(provider, nil, nil)

			lookup, err := uc.FetchRanking(ctx, tc.categoryID)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				assert.Empty(t, provider.GetCategoryRankingCalls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, lookup.Status)
			assert.Equal(t, tc.categoryID, lookup.CategoryID)
			assert.Empty(t, lookup.Recipes)
		})
	}
}

// 大根のシナリオ: 完全一致1件、ランキング[A,B,C] → 1=A, 2=B, 3=C
func TestRecipeUsecase_SearchRecipes_DaikonScenario(t *testing.T) {
	ctx := context.Background()
	provider := &mockRecipeProvider{
		ListSmallCategoriesFunc: listCategories,
		GetCategoryRankingFunc: func(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
			return threeRecipes(), nil
		},
	}
	normalizer := &mockImageNormalizer{
		NormalizeFunc: func(ctx context.Context, imageURL string, width int) (string, error) {
			return "data:image/jpeg;base64," + imageURL, nil
		},
	}
	history := &mockHistory{}
	uc := usecase.NewRecipeUsecase(provider, normalizer, history)

	result, err := uc.SearchRecipes(ctx, "daikon", 150)
	require.NoError(t, err)

	assert.Equal(t, "daikon", result.Label)
	assert.Equal(t, "大根", result.Term)
	assert.Equal(t, entity.LookupFound, result.Status)
	require.Len(t, result.Categories, 1)

	cr := result.Categories[0]
	assert.Equal(t, "12-449-1520", cr.CategoryID)
	assert.Equal(t, "大根", cr.Category.CategoryName)
	require.Len(t, cr.Ranking.Recipes, 3)
	for i, want := range []string{"A", "B", "C"} {
		r := cr.Ranking.Recipes[i]
		assert.Equal(t, i+1, r.Rank)
		assert.Equal(t, want, r.RecipeTitle)
		assert.Equal(t, "data:image/jpeg;base64,"+r.FoodImageURL, r.Thumbnail)
		assert.False(t, r.ThumbnailFailed)
	}
	assert.Equal(t, []int{150, 150, 150}, normalizer.Widths)
	assert.Equal(t, []string{"12-449-1520"}, provider.GetCategoryRankingCalls)

	require.Len(t, history.Created, 1)
	assert.Equal(t, entity.SearchRecord{
		Label:       "daikon",
		Term:        "大根",
		Status:      entity.LookupFound,
		CategoryIDs: []string{"12-449-1520"},
		RecipeCount: 3,
	}, history.Created[0])
}

func TestRecipeUsecase_SearchRecipes_ThumbnailFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	provider := &mockRecipeProvider{
		ListSmallCategoriesFunc: listCategories,
		GetCategoryRankingFunc: func(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
			return threeRecipes(), nil
		},
	}
	normalizer := &mockImageNormalizer{
		NormalizeFunc: func(ctx context.Context, imageURL string, width int) (string, error) {
			if imageURL == "https://img.example.com/b.jpg" {
				return "", &domain.ImageDecodeError{URL: imageURL, Err: errors.New("not an image")}
			}
			return "data:image/jpeg;base64,ok", nil
		},
	}
	uc := usecase.NewRecipeUsecase(provider, normalizer, nil)

	result, err := uc.SearchRecipes(ctx, "daikon", 0)
	require.NoError(t, err)
	recipes := result.Categories[0].Ranking.Recipes
	require.Len(t, recipes, 3)

	assert.Equal(t, "data:image/jpeg;base64,ok", recipes[0].Thumbnail)
	assert.True(t, recipes[1].ThumbnailFailed)
	assert.Empty(t, recipes[1].Thumbnail)
	assert.Equal(t, "https://img.example.com/b.jpg", recipes[1].FoodImageURL)
	assert.Equal(t, "data:image/jpeg;base64,ok", recipes[2].Thumbnail)

	// 幅0はデフォルト幅に置き換えられる
	assert.Equal(t, []int{usecase.DefaultThumbnailWidth, usecase.DefaultThumbnailWidth, usecase.DefaultThumbnailWidth}, normalizer.Widths)
}

func TestRecipeUsecase_SearchRecipes_MultipleCategories(t *testing.T) {
	ctx := context.Background()
	provider := &mockRecipeProvider{
		ListSmallCategoriesFunc: listCategories,
		GetCategoryRankingFunc: func(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
			if categoryID == "30-307-1525" {
				return nil, &domain.RemoteServiceError{Op: "CategoryRanking", StatusCode: 500}
			}
			return threeRecipes()[:1], nil
		},
	}
	history := &mockHistory{}
	uc := usecase.NewRecipeUsecase(provider, nil, history)

	result, err := uc.SearchRecipes(ctx, "tomato", 150)
	require.NoError(t, err)

	assert.Equal(t, "トマト全般", result.Term)
	assert.Equal(t, entity.LookupFound, result.Status)
	require.Len(t, result.Categories, 2)
	assert.Equal(t, entity.LookupFound, result.Categories[0].Ranking.Status)
	assert.Equal(t, entity.LookupUnavailable, result.Categories[1].Ranking.Status)
	assert.Equal(t, []string{"12-454-1525", "30-307-1525"}, provider.GetCategoryRankingCalls)

	require.Len(t, history.Created, 1)
	assert.Equal(t, 1, history.Created[0].RecipeCount)
	assert.Equal(t, []string{"12-454-1525", "30-307-1525"}, history.Created[0].CategoryIDs)
}

func TestRecipeUsecase_SearchRecipes_NoMatches(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name           string
		label          string
		listFunc       func(ctx context.Context) ([]entity.Category, error)
		rankingFunc    func(ctx context.Context, categoryID string) ([]entity.Recipe, error)
		expectedStatus entity.LookupStatus
	}{
		{
			name:           "empty: label without translation",
			label:          "banana",
			listFunc:       listCategories,
			expectedStatus: entity.LookupEmpty,
		},
		{
			name:  "unavailable: category listing failed",
			label: "daikon",
			listFunc: func(ctx context.Context) ([]entity.Category, error) {
				return nil, &domain.RemoteServiceError{Op: "CategoryList", Err: context.DeadlineExceeded}
			},
			expectedStatus: entity.LookupUnavailable,
		},
		{
			name:     "unavailable: ranking failed",
			label:    "daikon",
			listFunc: listCategories,
			rankingFunc: func(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
				return nil, &domain.RemoteServiceError{Op: "CategoryRanking", StatusCode: 502}
			},
			expectedStatus: entity.LookupUnavailable,
		},
		{
			name:     "empty: ranking had no recipes",
			label:    "daikon",
			listFunc: listCategories,
			rankingFunc: func(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
				return nil, nil
			},
			expectedStatus: entity.LookupEmpty,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &mockRecipeProvider{ListSmallCategoriesFunc: tc.listFunc, GetCategoryRankingFunc: tc.rankingFunc}
			history := &mockHistory{}
			uc := usecase.NewRecipeUsecase(provider, nil, history)

			result, err := uc.SearchRecipes(ctx, tc.label, 150)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, result.Status)
			assert.Zero(t, result.RecipeCount())
			require.Len(t, history.Created, 1)
			assert.Equal(t, tc.expectedStatus, history.Created[0].Status)
		})
	}
}

func TestRecipeUsecase_SearchRecipes_HistoryFailureIgnored(t *testing.T) {
	ctx := context.Background()
	provider := &mockRecipeProvider{ListSmallCategoriesFunc: listCategories}
	history := &mockHistory{CreateErr: errors.New("db down")}
	uc := usecase.NewRecipeUsecase(provider, nil, history)

	result, err := uc.SearchRecipes(ctx, "banana", 150)
	require.NoError(t, err)
	assert.Equal(t, entity.LookupEmpty, result.Status)
}

func TestRecipeUsecase_SearchRecipes_EmptyLabel(t *testing.T) {
	uc := usecase.NewRecipeUsecase(&mockRecipeProvider{}, nil, nil)

	_, err := uc.SearchRecipes(context.Background(), "", 150)
	assert.ErrorIs(t, err, usecase.ErrEmptyLabel)
}

func TestRecipeUsecase_ListHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("error: history disabled", func(t *testing.T) {
		uc := usecase.NewRecipeUsecase(&mockRecipeProvider{}, nil, nil)
		_, err := uc.ListHistory(ctx, 10)
		assert.ErrorIs(t, err, usecase.ErrHistoryDisabled)
	})

	testCases := []struct {
		name          string
		limit         int
		expectedLimit int
	}{
		{name: "explicit limit", limit: 5, expectedLimit: 5},
		{name: "zero uses default", limit: 0, expectedLimit: usecase.DefaultHistoryLimit},
		{name: "over max uses default", limit: usecase.MaxHistoryLimit + 1, expectedLimit: usecase.DefaultHistoryLimit},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got int
			history := &mockHistory{
				ListRecentFunc: func(ctx context.Context, limit int) ([]entity.SearchRecord, error) {
					got = limit
					return []entity.SearchRecord{{Label: "daikon"}}, nil
				},
			}
			uc := usecase.NewRecipeUsecase(&mockRecipeProvider{}, nil, history)

			recs, err := uc.ListHistory(ctx, tc.limit)
			require.NoError(t, err)
			assert.Len(t, recs, 1)
			assert.Equal(t, tc.expectedLimit, got)
		})
	}
}
