// Package handler はdetectionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/api"
	"recipe_backend/internal/feature/detection/domain"
	"recipe_backend/internal/feature/detection/domain/entity"
	"recipe_backend/internal/feature/detection/usecase"
)

// DetectionUsecase は食材検出のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type DetectionUsecase interface {
	DetectIngredients(ctx context.Context, imageData []byte) (*entity.DetectionResult, error)
}

// DetectionHandler は食材検出のHTTPリクエストを処理します。
type DetectionHandler struct {
	uc DetectionUsecase
}

// NewDetectionHandler はDetectionHandlerの新しいインスタンスを生成します。
func NewDetectionHandler(uc DetectionUsecase) *DetectionHandler {
	return &DetectionHandler{uc: uc}
}

// Detect は画像をアップロードして食材を検出します。
//
// エンドポイント: POST /v1/detect
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル、最大10MB）
func (h *DetectionHandler) Detect(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "画像ファイルが必要です"})
		return
	}
	if file.Size > usecase.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "画像サイズは10MBまでです"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	imageData, err := io.ReadAll(io.LimitReader(f, usecase.MaxImageSize+1))
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}

	result, err := h.uc.DetectIngredients(c.Request.Context(), imageData)
	if err != nil {
		status, msg := detectionErrorStatus(err)
		slog.Error("食材検出に失敗", "error", err, "status", status)
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}

	out := api.DetectResponse{
		Labels:     result.Labels,
		Detections: make([]api.DetectionResponse, 0, len(result.Detections)),
	}
	for _, d := range result.Detections {
		res := api.DetectionResponse{Label: d.Label, Confidence: d.Confidence}
		if d.Box != nil {
			res.Box = &api.BoundingBox{XMin: d.Box.XMin, YMin: d.Box.YMin, XMax: d.Box.XMax, YMax: d.Box.YMax}
		}
		out.Detections = append(out.Detections, res)
	}
	if result.ArtifactKey != "" {
		key := result.ArtifactKey
		out.ArtifactKey = &key
	}
	c.JSON(http.StatusOK, out)
}

// detectionErrorStatus は検出エラーをHTTPステータスと利用者向けメッセージに変換します。
func detectionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyImage), errors.Is(err, domain.ErrUndecodableImage):
		return http.StatusBadRequest, "画像を読み込めませんでした"
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "画像サイズは10MBまでです"
	case errors.Is(err, domain.ErrModelLoad):
		return http.StatusServiceUnavailable, "検出モデルを利用できません"
	default:
		return http.StatusBadGateway, "食材の検出に失敗しました"
	}
}
