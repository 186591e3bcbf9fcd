// Package usecase はrecipesフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"recipe_backend/internal/feature/recipes/domain/entity"
	"recipe_backend/internal/feature/recipes/domain/ingredient"
)

const (
	// DefaultThumbnailWidth はサムネイルのデフォルト幅（px）です。
	DefaultThumbnailWidth = 150
	// MaxThumbnailWidth はサムネイル幅の上限（px）です。
	MaxThumbnailWidth = 1024
	// DefaultHistoryLimit は検索履歴のデフォルト取得件数です。
	DefaultHistoryLimit = 20
	// MaxHistoryLimit は検索履歴の最大取得件数です。
	MaxHistoryLimit = 200
)

var (
	// ErrEmptyLabel は検索ラベルが空の場合に返されます。
	ErrEmptyLabel = errors.New("label is required")
	// ErrEmptyTerm はカテゴリ検索語が空の場合に返されます。
	ErrEmptyTerm = errors.New("term is required")
	// ErrInvalidCategoryID はカテゴリIDの形式が不正な場合に返されます。
	ErrInvalidCategoryID = errors.New("invalid category id")
	// ErrHistoryDisabled は検索履歴の保存先が構成されていない場合に返されます。
	ErrHistoryDisabled = errors.New("search history is not configured")
)

// validCategoryID はカテゴリIDの形式です（例: "12-449-1520"）。
var validCategoryID = regexp.MustCompile(`^[0-9]+(-[0-9]+)*$`)

// RecipeProvider はレシピAPIへのアクセスを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type RecipeProvider interface {
	// ListSmallCategories は小カテゴリの一覧をプロバイダの返却順で返します。
	ListSmallCategories(ctx context.Context) ([]entity.Category, error)
	// GetCategoryRanking はカテゴリのランキングをプロバイダの返却順で返します（Rankは未設定）。
	GetCategoryRanking(ctx context.Context, categoryID string) ([]entity.Recipe, error)
}

// ImageNormalizer はレシピ画像を固定幅のdata URIに変換します。
type ImageNormalizer interface {
	Normalize(ctx context.Context, imageURL string, width int) (string, error)
}

// SearchHistoryRepository は検索履歴の永続化を抽象化します。
type SearchHistoryRepository interface {
	Create(ctx context.Context, rec *entity.SearchRecord) error
	ListRecent(ctx context.Context, limit int) ([]entity.SearchRecord, error)
}

// RecipeUsecase はラベルからレシピランキングを引くパイプラインを提供します。
type RecipeUsecase struct {
	provider   RecipeProvider
	normalizer ImageNormalizer
	history    SearchHistoryRepository // nilの場合は履歴を保存しない
}

// NewRecipeUsecase はRecipeUsecaseの新しいインスタンスを生成します。
// historyにnilを渡すと検索履歴は無効になります。
func NewRecipeUsecase(p RecipeProvider, n ImageNormalizer, h SearchHistoryRepository) *RecipeUsecase {
	return &RecipeUsecase{provider: p, normalizer: n, history: h}
}

// ResolveCategories はカテゴリ名がtermと完全一致するカテゴリを返します。
// 大文字小文字の正規化や部分一致は行いません。
// プロバイダの失敗はエラーではなく LookupUnavailable として返します。
func (u *RecipeUsecase) ResolveCategories(ctx context.Context, term string) (entity.CategoryLookup, error) {
	if term == "" {
		return entity.CategoryLookup{}, ErrEmptyTerm
	}

	all, err := u.provider.ListSmallCategories(ctx)
	if err != nil {
		slog.Warn("カテゴリ一覧の取得に失敗", "term", term, "error", err)
		return entity.CategoryLookup{Term: term, Status: entity.LookupUnavailable, Cause: err}, nil
	}

	var matched []entity.Category
	for _, c := range all {
		if c.CategoryName == term {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return entity.CategoryLookup{Term: term, Status: entity.LookupEmpty}, nil
	}
	return entity.CategoryLookup{Term: term, Status: entity.LookupFound, Categories: matched}, nil
}

// FetchRanking はカテゴリのレシピランキングを取得し、返却順に1から順位を付けます。
// プロバイダの失敗はエラーではなく LookupUnavailable として返します。
func (u *RecipeUsecase) FetchRanking(ctx context.Context, categoryID string) (entity.RankingLookup, error) {
	if !validCategoryID.MatchString(categoryID) {
		return entity.RankingLookup{}, fmt.Errorf("%w: %q", ErrInvalidCategoryID, categoryID)
	}

	recipes, err := u.provider.GetCategoryRanking(ctx, categoryID)
	if err != nil {
		slog.Warn("ランキングの取得に失敗", "category_id", categoryID, "error", err)
		return entity.RankingLookup{CategoryID: categoryID, Status: entity.LookupUnavailable, Cause: err}, nil
	}
	if len(recipes) == 0 {
		return entity.RankingLookup{CategoryID: categoryID, Status: entity.LookupEmpty}, nil
	}
	return entity.RankingLookup{CategoryID: categoryID, Status: entity.LookupFound, Recipes: rank(recipes)}, nil
}

// SearchRecipes は検出ラベルを翻訳し、一致した全カテゴリのランキングを
// サムネイル付きで返します。サムネイルの失敗はそのレシピだけに留めます。
func (u *RecipeUsecase) SearchRecipes(ctx context.Context, label string, width int) (*entity.SearchResult, error) {
	if label == "" {
		return nil, ErrEmptyLabel
	}
	if width <= 0 || width > MaxThumbnailWidth {
		width = DefaultThumbnailWidth
	}

	term := ingredient.Translate(label)
	result := &entity.SearchResult{Label: label, Term: term}

	lookup, err := u.ResolveCategories(ctx, term)
	if err != nil {
		return nil, err
	}
	if lookup.Status != entity.LookupFound {
		result.Status = lookup.Status
		u.record(ctx, result)
		return result, nil
	}

	for _, c := range lookup.Categories {
		cr := entity.CategoryRanking{Category: c}
		id, err := c.ID()
		if err != nil {
			slog.Warn("カテゴリIDの解析に失敗", "category", c.CategoryName, "error", err)
			cr.Ranking = entity.RankingLookup{Status: entity.LookupUnavailable, Cause: err}
			result.Categories = append(result.Categories, cr)
			continue
		}
		cr.CategoryID = id

		ranking, err := u.FetchRanking(ctx, id)
		if err != nil {
			cr.Ranking = entity.RankingLookup{CategoryID: id, Status: entity.LookupUnavailable, Cause: err}
			result.Categories = append(result.Categories, cr)
			continue
		}
		u.attachThumbnails(ctx, ranking.Recipes, width)
		cr.Ranking = ranking
		result.Categories = append(result.Categories, cr)
	}

	result.Status = overallStatus(result.Categories)
	u.record(ctx, result)
	return result, nil
}

// ListHistory は直近の検索履歴を新しい順に返します。
func (u *RecipeUsecase) ListHistory(ctx context.Context, limit int) ([]entity.SearchRecord, error) {
	if u.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = DefaultHistoryLimit
	}
	return u.history.ListRecent(ctx, limit)
}

// attachThumbnails は各レシピの画像を正規化します。失敗したレシピは元のURLのまま残します。
func (u *RecipeUsecase) attachThumbnails(ctx context.Context, recipes []entity.Recipe, width int) {
	if u.normalizer == nil {
		return
	}
	for i := range recipes {
		uri, err := u.normalizer.Normalize(ctx, recipes[i].FoodImageURL, width)
		if err != nil {
			slog.Warn("サムネイルの生成に失敗", "rank", recipes[i].Rank, "url", recipes[i].FoodImageURL, "error", err)
			recipes[i].ThumbnailFailed = true
			continue
		}
		recipes[i].Thumbnail = uri
	}
}

// record は検索結果を履歴に保存します。保存の失敗は検索結果に影響させません。
func (u *RecipeUsecase) record(ctx context.Context, r *entity.SearchResult) {
	if u.history == nil {
		return
	}
	ids := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		if c.CategoryID != "" {
			ids = append(ids, c.CategoryID)
		}
	}
	rec := &entity.SearchRecord{
		Label:       r.Label,
		Term:        r.Term,
		Status:      r.Status,
		CategoryIDs: ids,
		RecipeCount: r.RecipeCount(),
	}
	if err := u.history.Create(ctx, rec); err != nil {
		slog.Warn("検索履歴の保存に失敗", "label", r.Label, "error", err)
	}
}

// rank はプロバイダの返却順に1始まりの順位を付けます。並べ替えは行いません。
func rank(recipes []entity.Recipe) []entity.Recipe {
	out := make([]entity.Recipe, len(recipes))
	for i, r := range recipes {
		r.Rank = i + 1
		out[i] = r
	}
	return out
}

// overallStatus はカテゴリごとの結果から検索全体の状態を決めます。
// 1件でも見つかればfound、失敗が含まれていればunavailable、それ以外はemptyです。
func overallStatus(categories []entity.CategoryRanking) entity.LookupStatus {
	status := entity.LookupEmpty
	for _, c := range categories {
		switch c.Ranking.Status {
		case entity.LookupFound:
			return entity.LookupFound
		case entity.LookupUnavailable:
			status = entity.LookupUnavailable
		}
	}
	return status
}
