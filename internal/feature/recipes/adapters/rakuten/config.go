// Package rakuten は楽天レシピAPIのクライアントを提供します。
package rakuten

import (
	"os"
	"time"
)

const (
	// DefaultBaseURL は楽天レシピAPIのベースURLです。
	DefaultBaseURL = "https://app.rakuten.co.jp/services/api/Recipe"
	// APIVersion はカテゴリ一覧・ランキングAPIのバージョンです。
	APIVersion = "20170426"
)

// Config は楽天レシピAPIクライアントの設定を保持します。
type Config struct {
	ApplicationID   string        // アプリID（applicationId）
	BaseURL         string        // APIのベースURL
	Timeout         time.Duration // 1リクエストあたりのタイムアウト
	MaxAttempts     int           // リトライ可能なエラーに対する最大試行回数
	RetryBackoff    time.Duration // 再試行までの基本待機時間（試行ごとに倍加）
	BreakerFailures uint32        // サーキットブレーカーを開く連続失敗回数
	BreakerTimeout  time.Duration // ブレーカーが開いてから半開になるまでの時間
	RateLimit       int           // 1秒あたりの最大リクエスト数（0で無制限）
}

// LoadConfig は環境変数から楽天レシピAPIの設定を読み込みます。
func LoadConfig() Config {
	baseURL := os.Getenv("RAKUTEN_RECIPE_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Config{
		ApplicationID:   os.Getenv("RAKUTEN_APPLICATION_ID"),
		BaseURL:         baseURL,
		Timeout:         5 * time.Second,
		MaxAttempts:     2,
		RetryBackoff:    500 * time.Millisecond,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
		RateLimit:       1,
	}
}
