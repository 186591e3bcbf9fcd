package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"recipe_backend/internal/feature/detection/adapters/artifact"
	"recipe_backend/internal/feature/detection/adapters/gemini"
	"recipe_backend/internal/feature/detection/adapters/onnx"
	"recipe_backend/internal/feature/detection/adapters/vision"
	"recipe_backend/internal/feature/detection/usecase"
	"recipe_backend/internal/feature/detection/transport/handler"
)

// 検出バックエンド（DETECTOR_BACKEND）
const (
	BackendONNX   = "onnx"
	BackendVision = "vision"
	BackendGemini = "gemini"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewDetector builds the detector selected by DETECTOR_BACKEND (onnx by default).
// The returned Closer releases the backend's resources.
func NewDetector(ctx context.Context) (usecase.ObjectDetector, io.Closer, error) {
	backend := strings.ToLower(os.Getenv("DETECTOR_BACKEND"))
	switch backend {
	case "", BackendONNX:
		d := onnx.NewDetector(onnx.LoadConfig())
		return d, d, nil
	case BackendVision:
		d, err := vision.NewVisionDetector(ctx)
		if err != nil {
			return nil, nil, err
		}
		return d, d, nil
	case BackendGemini:
		d, err := gemini.NewGeminiDetector(ctx, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			return nil, nil, err
		}
		return d, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown DETECTOR_BACKEND %q", backend)
	}
}

// NewArchiver returns the S3 store when S3_BUCKET_NAME is set, otherwise a local directory store.
func NewArchiver(ctx context.Context) (usecase.ImageArchiver, error) {
	cfg := artifact.LoadConfig()
	if !cfg.UseS3() {
		slog.Info("archiving uploads locally", "dir", cfg.LocalDir)
		return artifact.NewLocalStore(cfg.LocalDir), nil
	}
	s, err := artifact.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("archiving uploads to S3", "bucket", cfg.Bucket, "prefix", cfg.Prefix)
	return s, nil
}

// NewDetectionUsecase wires the detector and archiver. Archiver failures
// only disable archiving.
func NewDetectionUsecase(ctx context.Context) (handler.DetectionUsecase, io.Closer, error) {
	detector, closer, err := NewDetector(ctx)
	if err != nil {
		return nil, nil, err
	}
	archiver, err := NewArchiver(ctx)
	if err != nil {
		slog.Warn("artifact store unavailable. Uploads will not be archived.", "error", err)
		archiver = nil
	}
	return usecase.NewDetectionUsecase(detector, archiver), closer, nil
}
