// Package gemini はGoogle Gemini APIのマルチモーダル入力で食材を検出するクライアントを提供します。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"recipe_backend/internal/feature/detection/domain"
	"recipe_backend/internal/feature/detection/domain/entity"
	"recipe_backend/internal/feature/detection/usecase"
	"recipe_backend/internal/feature/recipes/domain/ingredient"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	promptTemplate = "画像に写っている食材を、次のラベルの中からだけ選んで答えてください: %s。" +
		"該当するものがなければ空の配列を返してください。"
)

// contentGenerator はgenai.Modelsのうち検出器が使うメソッドです。
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiDetector はGeminiに画像を渡し、既知のラベル集合に限定して食材を答えさせます。
type GeminiDetector struct {
	models contentGenerator
	model  string
}

// GeminiDetectorがObjectDetectorを実装していることをコンパイル時に検証します。
var _ usecase.ObjectDetector = (*GeminiDetector)(nil)

// NewGeminiDetector はADCを使用してGeminiDetectorの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION
// または GEMINI_API_KEY が必要です。
func NewGeminiDetector(ctx context.Context, model string) (*GeminiDetector, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %w", domain.ErrModelLoad, err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiDetector{models: client.Models, model: model}, nil
}

// answer はモデルに要求するJSONの形です。
type answer struct {
	Ingredients []struct {
		Label      string  `json:"label"`
		Confidence float32 `json:"confidence"`
	} `json:"ingredients"`
}

// Detect は画像バイト列から食材を検出します。位置情報は返しません。
func (g *GeminiDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	labels := ingredient.Labels()
	parts := []*genai.Part{
		genai.NewPartFromBytes(imageData, http.DetectContentType(imageData)),
		genai.NewPartFromText(fmt.Sprintf(promptTemplate, strings.Join(labels, ", "))),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, responseConfig(labels))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini API request failed: %w", domain.ErrInference, err)
	}
	return parseAnswer(resp.Text())
}

// responseConfig はラベルを列挙型に制限したJSONスキーマを返します。
func responseConfig(labels []string) *genai.GenerateContentConfig {
	temperature := float32(0)
	return &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:     genai.TypeObject,
			Required: []string{"ingredients"},
			Properties: map[string]*genai.Schema{
				"ingredients": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type:     genai.TypeObject,
						Required: []string{"label", "confidence"},
						Properties: map[string]*genai.Schema{
							"label":      {Type: genai.TypeString, Enum: labels},
							"confidence": {Type: genai.TypeNumber},
						},
					},
				},
			},
		},
	}
}

// parseAnswer はモデルの応答を検出結果に変換します。未知のラベルは捨てます。
func parseAnswer(text string) ([]entity.Detection, error) {
	var a answer
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("%w: decode gemini answer: %w", domain.ErrInference, err)
	}

	out := make([]entity.Detection, 0, len(a.Ingredients))
	for _, ing := range a.Ingredients {
		if !ingredient.IsKnown(ing.Label) {
			continue
		}
		conf := min(max(ing.Confidence, 0), 1)
		out = append(out, entity.Detection{Label: ing.Label, Confidence: conf})
	}
	return out, nil
}
