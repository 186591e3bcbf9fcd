// Package onnx はONNX Runtimeで YOLOv8 を実行するローカルの食材検出器を提供します。
package onnx

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	_ "golang.org/x/image/webp"

	"recipe_backend/internal/feature/detection/domain"
	"recipe_backend/internal/feature/detection/domain/entity"
	"recipe_backend/internal/feature/detection/usecase"
)

const (
	// namesMetadataKey はエクスポートされたモデルがクラス名を持つカスタムメタデータのキーです。
	namesMetadataKey = "names"
	// MaxPixels はデコードを許可する入力画像の最大画素数（40MP）です。
	MaxPixels = 40_000_000
)

// ortEnv はプロセス全体で1度だけ行うONNX Runtimeの初期化状態です。
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// model は読み込み済みの推論セッションです。
type model struct {
	session    *ort.DynamicAdvancedSession
	path       string
	names      []string
	inputName  string
	outputName string
	anchors    int
}

// Detector はYOLOv8のONNXモデルで食材を検出します。
// モデルは最初の検出時に読み込み、失敗した場合は次の呼び出しで再試行します。
type Detector struct {
	cfg Config

	mu    sync.Mutex
	model *model
}

// DetectorがObjectDetectorを実装していることをコンパイル時に検証します。
var _ usecase.ObjectDetector = (*Detector)(nil)

// NewDetector はDetectorの新しいインスタンスを生成します。
func NewDetector(cfg Config) *Detector {
	if cfg.InputSize <= 0 {
		cfg.InputSize = DefaultInputSize
	}
	if cfg.ConfThreshold <= 0 {
		cfg.ConfThreshold = DefaultConfThreshold
	}
	if cfg.IoUThreshold <= 0 {
		cfg.IoUThreshold = DefaultIoUThreshold
	}
	return &Detector{cfg: cfg}
}

// Close は推論セッションを解放します。
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.model == nil {
		return nil
	}
	err := d.model.session.Destroy()
	d.model = nil
	return err
}

// Detect は画像から食材を検出します。
func (d *Detector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	img, err := decodeImage(imageData)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	m, err := d.load()
	if err != nil {
		return nil, err
	}

	input, lb := toTensor(img, d.cfg.InputSize)
	out, err := m.run(input, d.cfg.InputSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	dets := decodeOutput(out, m.anchors, m.names, lb, d.cfg.ConfThreshold, d.cfg.IoUThreshold)
	slog.Debug("onnx detection finished", "model", m.path, "detections", len(dets))
	return dets, nil
}

// decodeImage は宣言サイズが MaxPixels 以下であることをヘッダーで確認してからデコードします。
func decodeImage(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUndecodableImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: dimensions %dx%d exceed %d pixels", domain.ErrUndecodableImage, cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUndecodableImage, err)
	}
	return img, nil
}

// load はモデルを読み込みます。呼び出し側でmuを保持している必要があります。
func (d *Detector) load() (*model, error) {
	if d.model != nil {
		return d.model, nil
	}

	path, err := resolveModelPath(d.cfg.BaseModelPath, d.cfg.OverrideModelPath)
	if err != nil {
		return nil, err
	}
	if err := initORT(d.cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: initialize onnxruntime: %w", domain.ErrModelLoad, err)
	}

	m, err := openModel(path, d.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrModelLoad, path, err)
	}
	slog.Info("onnx model loaded", "path", path, "classes", len(m.names), "anchors", m.anchors)
	d.model = m
	return m, nil
}

// resolveModelPath は使用するモデルファイルを決めます。
// 追加学習モデルが設定されていればそれを優先し、存在しなければエラーにします。
func resolveModelPath(base, override string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("%w: override model: %w", domain.ErrModelLoad, err)
		}
		return override, nil
	}
	if base == "" {
		return "", fmt.Errorf("%w: no model path configured", domain.ErrModelLoad)
	}
	if _, err := os.Stat(base); err != nil {
		return "", fmt.Errorf("%w: base model: %w", domain.ErrModelLoad, err)
	}
	return base, nil
}

// openModel はモデルの入出力とクラス名を調べ、推論セッションを作成します。
func openModel(path string, cfg Config) (*model, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("read model info: %w", err)
	}
	if len(inputs) != 1 || len(outputs) == 0 {
		return nil, fmt.Errorf("expected 1 input and at least 1 output, got %d/%d", len(inputs), len(outputs))
	}

	names, err := loadNames(path, cfg.NamesPath)
	if err != nil {
		return nil, err
	}

	anchors := expectedAnchors(cfg.InputSize)
	if dims := outputs[0].Dimensions; len(dims) == 3 {
		if dims[1] > 0 && int(dims[1]) != 4+len(names) {
			return nil, fmt.Errorf("output has %d channels but %d classes are named", dims[1], len(names))
		}
		if dims[2] > 0 {
			anchors = int(dims[2])
		}
	} else {
		return nil, fmt.Errorf("expected 3D output tensor, got %v", dims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer opts.Destroy()
	if cfg.IntraOpThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("set intra op threads: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(path, []string{inputs[0].Name}, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &model{
		session:    session,
		path:       path,
		names:      names,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		anchors:    anchors,
	}, nil
}

// loadNames はクラス名を取得します。名前ファイルが指定されていればそれを優先します。
func loadNames(modelPath, namesPath string) ([]string, error) {
	if namesPath != "" {
		return readNamesFile(namesPath)
	}

	meta, err := ort.GetModelMetadata(modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model metadata: %w", err)
	}
	defer meta.Destroy()

	raw, ok, err := meta.LookupCustomMetadataMap(namesMetadataKey)
	if err != nil {
		return nil, fmt.Errorf("lookup %q metadata: %w", namesMetadataKey, err)
	}
	if !ok {
		return nil, fmt.Errorf("model has no %q metadata; set YOLO_NAMES_FILE", namesMetadataKey)
	}
	return parseNamesMetadata(raw)
}

// expectedAnchors はストライド8/16/32のグリッド数の合計です（320なら2100）。
func expectedAnchors(size int) int {
	n := 0
	for _, stride := range []int{8, 16, 32} {
		g := size / stride
		n += g * g
	}
	return n
}

// run は1枚分の推論を実行し、出力をコピーして返します。
func (m *model) run(input []float32, size int) ([]float32, error) {
	in, err := ort.NewTensor(ort.NewShape(1, 3, int64(size), int64(size)), input)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(4+len(m.names)), int64(m.anchors)))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := m.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	src := out.GetData()
	result := make([]float32, len(src))
	copy(result, src)
	return result, nil
}
