// Package vision はGoogle Cloud Vision APIを使用した食材検出クライアントを提供します。
package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"

	"recipe_backend/internal/feature/detection/domain"
	"recipe_backend/internal/feature/detection/domain/entity"
	"recipe_backend/internal/feature/detection/usecase"
)

// maxResults は1機能あたりに要求する最大件数です。
const maxResults = 20

// visionNames はVision APIが返す英語名を検出ラベルに対応付けます（小文字で比較）。
var visionNames = map[string]string{
	"daikon":       "daikon",
	"radish":       "daikon",
	"spinach":      "hourensou",
	"potato":       "jagaimo",
	"turnip":       "kabu",
	"cauliflower":  "karifurawaa",
	"cabbage":      "kyabetsu",
	"cucumber":     "kyuuri",
	"eggplant":     "nasu",
	"carrot":       "ninjin",
	"garlic":       "ninniku",
	"bell pepper":  "papurika",
	"green pepper": "piiman",
	"lettuce":      "retasu",
	"sweet potato": "satsumaimo",
	"ginger":       "shouga",
	"onion":        "tamanegi",
	"tomato":       "tomato",
	"corn":         "toumorokoshi",
	"sweet corn":   "toumorokoshi",
}

// annotator はImageAnnotatorClientのうち検出器が使うメソッドです。
type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
}

// VisionDetector はGoogle Cloud Vision APIのオブジェクト検出とラベル検出で食材を見つけます。
type VisionDetector struct {
	client annotator
	closer func() error
}

// VisionDetectorがObjectDetectorを実装していることをコンパイル時に検証します。
var _ usecase.ObjectDetector = (*VisionDetector)(nil)

// NewVisionDetector はADCを使用してVisionDetectorの新しいインスタンスを生成します。
func NewVisionDetector(ctx context.Context) (*VisionDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create vision client: %w", domain.ErrModelLoad, err)
	}
	return &VisionDetector{client: client, closer: client.Close}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionDetector) Close() error {
	if v.closer == nil {
		return nil
	}
	return v.closer()
}

// Detect は画像バイト列から食材を検出します。
// 位置付きのオブジェクト検出を優先し、ラベル検出は位置なしで補います。
func (v *VisionDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_OBJECT_LOCALIZATION, MaxResults: maxResults},
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: maxResults},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: vision API request failed: %w", domain.ErrInference, err)
	}

	if len(resp.Responses) == 0 {
		return nil, nil
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("%w: vision API error: %s", domain.ErrInference, r.Error.Message)
	}

	var out []entity.Detection
	for _, obj := range r.LocalizedObjectAnnotations {
		label, ok := toLabel(obj.Name)
		if !ok {
			continue
		}
		out = append(out, entity.Detection{
			Label:      label,
			Confidence: obj.Score,
			Box:        toBox(obj.BoundingPoly),
		})
	}
	for _, l := range r.LabelAnnotations {
		label, ok := toLabel(l.Description)
		if !ok {
			continue
		}
		out = append(out, entity.Detection{Label: label, Confidence: l.Score})
	}

	slog.Debug("vision detection finished",
		"objects", len(r.LocalizedObjectAnnotations), "labels", len(r.LabelAnnotations), "matched", len(out))
	return out, nil
}

func toLabel(name string) (string, bool) {
	label, ok := visionNames[strings.ToLower(strings.TrimSpace(name))]
	return label, ok
}

// toBox は正規化済みの頂点から外接矩形を求めます。
func toBox(poly *visionpb.BoundingPoly) *entity.Box {
	if poly == nil || len(poly.NormalizedVertices) == 0 {
		return nil
	}
	v0 := poly.NormalizedVertices[0]
	b := &entity.Box{XMin: v0.X, YMin: v0.Y, XMax: v0.X, YMax: v0.Y}
	for _, v := range poly.NormalizedVertices[1:] {
		b.XMin = min(b.XMin, v.X)
		b.YMin = min(b.YMin, v.Y)
		b.XMax = max(b.XMax, v.X)
		b.YMax = max(b.YMax, v.Y)
	}
	return b
}
