// Package usecase はdetectionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"

	"recipe_backend/internal/feature/detection/domain"
	"recipe_backend/internal/feature/detection/domain/entity"
)

// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
const MaxImageSize = 10 * 1024 * 1024

// ObjectDetector は画像から食材を検出するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ObjectDetector interface {
	// Detect は画像バイト列から食材を検出します。
	// 失敗時は domain.ErrModelLoad または domain.ErrInference をラップしたエラーを返します。
	Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error)
}

// ImageArchiver はアップロード画像と検出結果を保存するインターフェースです。
type ImageArchiver interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// detectionUsecase は食材検出のビジネスロジックを提供します。
type detectionUsecase struct {
	detector ObjectDetector
	archiver ImageArchiver // nilの場合は保存しない
	now      func() time.Time
}

// NewDetectionUsecase はdetectionUsecaseの新しいインスタンスを生成します。
func NewDetectionUsecase(d ObjectDetector, a ImageArchiver) *detectionUsecase {
	return &detectionUsecase{detector: d, archiver: a, now: time.Now}
}

// DetectIngredients は画像から食材を検出し、重複を除いたラベルを返します。
// 画像の保存は失敗しても検出結果には影響しません。
func (u *detectionUsecase) DetectIngredients(ctx context.Context, imageData []byte) (*entity.DetectionResult, error) {
	if len(imageData) == 0 {
		return nil, domain.ErrEmptyImage
	}
	if len(imageData) > MaxImageSize {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrImageTooLarge, MaxImageSize)
	}

	detections, err := u.detector.Detect(ctx, imageData)
	if err != nil {
		if errors.Is(err, domain.ErrModelLoad) || errors.Is(err, domain.ErrInference) || errors.Is(err, domain.ErrUndecodableImage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	result := &entity.DetectionResult{
		Labels:     DistinctLabels(detections),
		Detections: detections,
	}
	result.ArtifactKey = u.archive(ctx, imageData, result)
	return result, nil
}

// DistinctLabels は検出結果のラベルを重複なしの昇順で返します。
func DistinctLabels(detections []entity.Detection) []string {
	seen := make(map[string]struct{}, len(detections))
	out := make([]string, 0, len(detections))
	for _, d := range detections {
		if d.Label == "" {
			continue
		}
		if _, ok := seen[d.Label]; ok {
			continue
		}
		seen[d.Label] = struct{}{}
		out = append(out, d.Label)
	}
	sort.Strings(out)
	return out
}

// archive は画像と検出結果を保存し、画像のキーを返します。失敗時は空文字を返します。
func (u *detectionUsecase) archive(ctx context.Context, imageData []byte, result *entity.DetectionResult) string {
	if u.archiver == nil {
		return ""
	}

	contentType := http.DetectContentType(imageData)
	base := path.Join("detections", u.now().UTC().Format("2006/01/02"), uuid.NewString())
	key := base + extensionFor(contentType)

	if err := u.archiver.Put(ctx, key, contentType, imageData); err != nil {
		slog.Warn("検出画像の保存に失敗", "key", key, "error", err)
		return ""
	}

	meta, err := json.Marshal(struct {
		Labels     []string           `json:"labels"`
		Detections []entity.Detection `json:"detections"`
	}{result.Labels, result.Detections})
	if err != nil {
		slog.Warn("検出結果のエンコードに失敗", "key", key, "error", err)
		return key
	}
	if err := u.archiver.Put(ctx, base+".json", "application/json", meta); err != nil {
		slog.Warn("検出結果の保存に失敗", "key", base+".json", "error", err)
	}
	return key
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
