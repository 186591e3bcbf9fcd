// Package entity はdetectionフィーチャーのドメインモデルを定義します。
package entity

// Box は画像サイズで正規化した矩形です（0.0 ~ 1.0）。
type Box struct {
	XMin float32
	YMin float32
	XMax float32
	YMax float32
}

// Detection は画像から検出された1つの食材を表します。
type Detection struct {
	Label      string  // 検出モデルのクラス名（例: "daikon"）
	Confidence float32 // 信頼度スコア（0.0 ~ 1.0）
	Box        *Box    // 位置を返さない検出器ではnil
}

// DetectionResult は1枚の画像に対する検出結果です。
type DetectionResult struct {
	Labels      []string // 重複を除いた昇順のラベル
	Detections  []Detection
	ArtifactKey string // 保存できなかった場合は空
}
