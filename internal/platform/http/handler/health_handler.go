// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/api"
)

// checkTimeout は依存先1件あたりの確認時間の上限です。
const checkTimeout = 2 * time.Second

// CheckFunc は依存先（Redis、DBなど）の疎通を確認します。
type CheckFunc func(ctx context.Context) error

// Health は /healthz エンドポイントを処理します。
// 登録された依存先がすべて正常なら200、1つでも失敗すれば503を返します。
type Health struct {
	checks map[string]CheckFunc
}

// NewHealth は依存先のチェックを持つHealthを生成します。checksはnilでも構いません。
func NewHealth(checks map[string]CheckFunc) *Health {
	return &Health{checks: checks}
}

// Handle はHTTPメソッドに応じてヘルス状態を返します。キャッシュは常に無効です。
func (h *Health) Handle(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	res, healthy := h.run(c.Request.Context())
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(code)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(code, res)
	}
}

// run は全チェックを実行し、レスポンスと全体の正常性を返します。
func (h *Health) run(ctx context.Context) (api.HealthResponse, bool) {
	res := api.HealthResponse{Status: "ok"}
	if len(h.checks) == 0 {
		return res, true
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := h.checks[name](cctx)
		cancel()
		if err != nil {
			slog.Warn("health check failed", "dependency", name, "error", err)
			results[name] = "error"
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	res.Checks = &results
	if !healthy {
		res.Status = "degraded"
	}
	return res, healthy
}
