// Package thumbnail はレシピ画像を固定幅のdata URIへ変換するImageNormalizer実装を提供します。
package thumbnail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"math"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"recipe_backend/internal/feature/recipes/domain"
	"recipe_backend/internal/feature/recipes/usecase"
)

const (
	// MaxImageBytes はダウンロードする画像の最大サイズ（10MB）です。
	MaxImageBytes = 10 * 1024 * 1024
	// MaxPixels はデコードを許可する元画像の最大画素数（40MP）です。
	MaxPixels = 40_000_000
	// MaxTargetHeight は縮小後の高さの上限です。極端に縦長な画像でも出力が膨らまないようにします。
	MaxTargetHeight = 4096
	// JPEGQuality は再エンコード時のJPEG品質です。
	JPEGQuality = 85

	dataURIPrefix = "data:image/jpeg;base64,"
)

// Normalizer は画像をダウンロードし、縦横比を保ったまま指定幅に縮小してJPEGで返します。
type Normalizer struct {
	client *http.Client
}

// NormalizerがImageNormalizerを実装していることをコンパイル時に検証します。
var _ usecase.ImageNormalizer = (*Normalizer)(nil)

// NewNormalizer は指定されたHTTPクライアントでNormalizerの新しいインスタンスを生成します。
func NewNormalizer(client *http.Client) *Normalizer {
	return &Normalizer{client: client}
}

// Normalize はimageURLの画像をwidth幅に変換し、data URIとして返します。
// 取得またはデコードに失敗した場合は *domain.ImageDecodeError を返します。
func (n *Normalizer) Normalize(ctx context.Context, imageURL string, width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("width must be positive, got %d", width)
	}

	raw, err := n.fetch(ctx, imageURL)
	if err != nil {
		return "", &domain.ImageDecodeError{URL: imageURL, Err: err}
	}

	if err := CheckDimensions(raw); err != nil {
		return "", &domain.ImageDecodeError{URL: imageURL, Err: err}
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", &domain.ImageDecodeError{URL: imageURL, Err: err}
	}

	encoded, err := Resize(src, width)
	if err != nil {
		return "", &domain.ImageDecodeError{URL: imageURL, Err: err}
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(encoded), nil
}

// fetch は画像のバイト列を取得します。
func (n *Normalizer) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", res.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	}
	return raw, nil
}

// CheckDimensions はヘッダーだけを読み、画素数が MaxPixels を超える画像を拒否します。
// image.Decode はヘッダーの宣言サイズ分のバッファを確保するため、先に確認します。
func CheckDimensions(raw []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("image dimensions %dx%d exceed %d pixels", cfg.Width, cfg.Height, MaxPixels)
	}
	return nil
}

// TargetSize は縦横比を保った縮小後のサイズを返します。
// 高さは round(元の高さ × width / 元の幅) で、1px以上 MaxTargetHeight 以下に収めます。
func TargetSize(srcW, srcH, width int) (int, int) {
	h := math.Round(float64(srcH) * float64(width) / float64(srcW))
	switch {
	case h < 1:
		h = 1
	case h > MaxTargetHeight:
		h = MaxTargetHeight
	}
	return width, int(h)
}

// Resize はsrcを幅widthにリサンプリングし、JPEGにエンコードします。
func Resize(src image.Image, width int) ([]byte, error) {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New("image has zero size")
	}
	w, h := TargetSize(b.Dx(), b.Dy(), width)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
