// Package artifact はアップロード画像と検出結果の保存先（S3またはローカルディレクトリ）を提供します。
package artifact

import "os"

// DefaultLocalDir はS3を使わない場合の保存先です。
const DefaultLocalDir = "tmp"

// Config は保存先の設定を保持します。Bucketが空ならローカルに保存します。
type Config struct {
	Bucket   string
	Region   string
	Prefix   string
	Endpoint string // MinIOなどS3互換ストレージ用（任意）
	LocalDir string
}

// LoadConfig は環境変数から保存先の設定を読み込みます。
func LoadConfig() Config {
	dir := os.Getenv("ARTIFACT_DIR")
	if dir == "" {
		dir = DefaultLocalDir
	}
	return Config{
		Bucket:   os.Getenv("S3_BUCKET_NAME"),
		Region:   os.Getenv("AWS_REGION"),
		Prefix:   os.Getenv("S3_KEY_PREFIX"),
		Endpoint: os.Getenv("S3_ENDPOINT"),
		LocalDir: dir,
	}
}

// UseS3 はS3に保存するかを返します。
func (c Config) UseS3() bool {
	return c.Bucket != ""
}
