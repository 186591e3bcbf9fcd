package onnx

import (
	"os"
	"strconv"
)

const (
	// DefaultInputSize は推論時の入力解像度です（正方形）。
	DefaultInputSize = 320
	// DefaultConfThreshold は検出として採用する最小の信頼度です。
	DefaultConfThreshold = 0.25
	// DefaultIoUThreshold はNMSで重複とみなすIoUです。
	DefaultIoUThreshold = 0.45
)

// Config はONNX検出器の設定を保持します。
type Config struct {
	LibraryPath       string  // libonnxruntime の共有ライブラリ
	BaseModelPath     string  // 汎用の学習済みモデル
	OverrideModelPath string  // 食材用に追加学習したモデル（設定されていれば優先）
	NamesPath         string  // クラス名ファイル（1行1クラス、任意）
	InputSize         int     // 入力解像度
	ConfThreshold     float32 // 信頼度の閾値
	IoUThreshold      float32 // NMSのIoU閾値
	IntraOpThreads    int
}

// LoadConfig は環境変数からONNX検出器の設定を読み込みます。
func LoadConfig() Config {
	return Config{
		LibraryPath:       getEnv("ONNX_LIBRARY_PATH", "/usr/lib/libonnxruntime.so"),
		BaseModelPath:     getEnv("YOLO_BASE_MODEL", "models/yolov8n.onnx"),
		OverrideModelPath: os.Getenv("YOLO_OVERRIDE_MODEL"),
		NamesPath:         os.Getenv("YOLO_NAMES_FILE"),
		InputSize:         getEnvInt("YOLO_INPUT_SIZE", DefaultInputSize),
		ConfThreshold:     getEnvFloat32("YOLO_CONF_THRESHOLD", DefaultConfThreshold),
		IoUThreshold:      getEnvFloat32("YOLO_IOU_THRESHOLD", DefaultIoUThreshold),
		IntraOpThreads:    getEnvInt("ONNX_INTRA_OP_THREADS", 2),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func getEnvFloat32(key string, def float32) float32 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 32); err == nil && v > 0 && v < 1 {
		return float32(v)
	}
	return def
}
