package rakuten

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"recipe_backend/internal/feature/recipes/adapters/rakuten/dto"
	"recipe_backend/internal/feature/recipes/domain"
	"recipe_backend/internal/feature/recipes/domain/entity"
	"recipe_backend/internal/feature/recipes/usecase"
	"recipe_backend/internal/shared/ratelimiter"
)

const (
	opCategoryList    = "CategoryList"
	opCategoryRanking = "CategoryRanking"

	// maxErrorBody はエラーレスポンス本文を保持する最大バイト数です。
	maxErrorBody = 512
)

// Client は楽天レシピAPIからカテゴリとランキングを取得するRecipeProvider実装です。
type Client struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *ratelimiter.RateLimiter // nilの場合は制限しない
}

// ClientがRecipeProviderを実装していることをコンパイル時に検証します。
var _ usecase.RecipeProvider = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	st := gobreaker.Settings{
		Name:    "rakuten-recipe",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	c := &Client{cfg: cfg, client: client, breaker: gobreaker.NewCircuitBreaker(st)}
	if cfg.RateLimit > 0 {
		c.limiter = ratelimiter.NewRateLimiter(cfg.RateLimit, time.Second)
	}
	return c
}

// ListSmallCategories はCategoryList APIから小カテゴリの一覧を取得します。
func (c *Client) ListSmallCategories(ctx context.Context) ([]entity.Category, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("categoryType", "small")
	q.Set("applicationId", c.cfg.ApplicationID)

	var body dto.CategoryListResponse
	if err := c.getJSON(ctx, opCategoryList, q, &body); err != nil {
		return nil, err
	}

	out := make([]entity.Category, 0, len(body.Result.Small))
	for _, s := range body.Result.Small {
		out = append(out, entity.Category{
			CategoryName: s.CategoryName,
			CategoryURL:  s.CategoryURL,
		})
	}
	return out, nil
}

// GetCategoryRanking はCategoryRanking APIからランキングを取得します。
// 返却順はAPIの順序のままで、Rankは設定しません。
func (c *Client) GetCategoryRanking(ctx context.Context, categoryID string) ([]entity.Recipe, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("categoryId", categoryID)
	q.Set("applicationId", c.cfg.ApplicationID)

	var body dto.CategoryRankingResponse
	if err := c.getJSON(ctx, opCategoryRanking, q, &body); err != nil {
		return nil, err
	}

	out := make([]entity.Recipe, 0, len(body.Result))
	for _, r := range body.Result {
		out = append(out, entity.Recipe{
			FoodImageURL:     r.FoodImageURL,
			RecipeTitle:      r.RecipeTitle,
			RecipeURL:        r.RecipeURL,
			RecipeMaterial:   r.RecipeMaterial,
			RecipeIndication: r.RecipeIndication,
		})
	}
	return out, nil
}

// getJSON はGETリクエストを送りJSONをdestにデコードします。
// リトライ可能なエラー（通信エラー・429・5xx）はMaxAttemptsまで再試行します。
func (c *Client) getJSON(ctx context.Context, op string, q url.Values, dest any) error {
	u := fmt.Sprintf("%s/%s/%s?%s", strings.TrimRight(c.cfg.BaseURL, "/"), op, APIVersion, q.Encode())

	var err error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := c.cfg.RetryBackoff << (attempt - 2)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return &domain.RemoteServiceError{Op: op, Err: ctx.Err()}
			case <-t.C:
			}
			slog.Info("retrying recipe api request", "op", op, "attempt", attempt, "error", err)
		}

		_, err = c.breaker.Execute(func() (any, error) {
			return nil, c.do(ctx, op, u, dest)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &domain.RemoteServiceError{Op: op, Err: err}
		}
		var rse *domain.RemoteServiceError
		if !errors.As(err, &rse) || !rse.Retryable() || ctx.Err() != nil {
			return err
		}
	}
	return err
}

// do は1回分のリクエストを実行します。
func (c *Client) do(ctx context.Context, op, u string, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &domain.RemoteServiceError{Op: op, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &domain.RemoteServiceError{Op: op, Err: err}
	}

	res, err := c.client.Do(req)
	if err != nil {
		return &domain.RemoteServiceError{Op: op, Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		rse := &domain.RemoteServiceError{Op: op, StatusCode: res.StatusCode}
		if len(snippet) > 0 {
			rse.Err = errors.New(strings.TrimSpace(string(snippet)))
		}
		return rse
	}

	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return &domain.RemoteServiceError{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// countsAsSuccess はブレーカーの失敗として数えないエラーを判定します。
// 4xxなどのアプリケーションエラーと呼び出し元のキャンセルはAPIの障害ではありません。
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var rse *domain.RemoteServiceError
	if errors.As(err, &rse) {
		return !rse.Retryable()
	}
	return false
}
