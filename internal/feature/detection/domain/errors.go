// Package domain はdetectionフィーチャーのドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrModelLoad はモデルファイルが存在しない、または読み込めない場合に返されます。
	ErrModelLoad = errors.New("detection model could not be loaded")
	// ErrInference は推論を実行できなかった場合に返されます。
	ErrInference = errors.New("detection inference failed")
	// ErrEmptyImage は画像データが空の場合に返されます。
	ErrEmptyImage = errors.New("image data is empty")
	// ErrUndecodableImage はアップロードされた画像をデコードできない場合に返されます。
	ErrUndecodableImage = errors.New("image could not be decoded")
	// ErrImageTooLarge は画像が上限サイズを超えた場合に返されます。
	ErrImageTooLarge = errors.New("image size exceeds maximum")
)
