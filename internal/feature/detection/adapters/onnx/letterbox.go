package onnx

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// padGray はレターボックスの余白色です。
var padGray = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// letterbox は縦横比を保ったまま画像を size×size に収めた際の変換です。
type letterbox struct {
	scale      float64
	padX, padY float64
	srcW, srcH int
}

// newLetterbox は元画像サイズから変換パラメータを求めます。
func newLetterbox(srcW, srcH, size int) letterbox {
	scale := math.Min(float64(size)/float64(srcW), float64(size)/float64(srcH))
	newW := math.Round(float64(srcW) * scale)
	newH := math.Round(float64(srcH) * scale)
	return letterbox{
		scale: scale,
		padX:  (float64(size) - newW) / 2,
		padY:  (float64(size) - newH) / 2,
		srcW:  srcW,
		srcH:  srcH,
	}
}

// toTensor は画像をレターボックス処理し、CHW順・0〜1に正規化したRGBを返します。
func toTensor(src image.Image, size int) ([]float32, letterbox) {
	b := src.Bounds()
	lb := newLetterbox(b.Dx(), b.Dy(), size)

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: padGray}, image.Point{}, draw.Src)

	x0 := int(math.Round(lb.padX - 0.1))
	y0 := int(math.Round(lb.padY - 0.1))
	w := int(math.Round(float64(b.Dx()) * lb.scale))
	h := int(math.Round(float64(b.Dy()) * lb.scale))
	draw.BiLinear.Scale(canvas, image.Rect(x0, y0, x0+w, y0+h), src, b, draw.Src, nil)

	plane := size * size
	data := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		row := canvas.Pix[y*canvas.Stride:]
		for x := 0; x < size; x++ {
			p := row[x*4:]
			i := y*size + x
			data[i] = float32(p[0]) / 255
			data[plane+i] = float32(p[1]) / 255
			data[2*plane+i] = float32(p[2]) / 255
		}
	}
	return data, lb
}

// unmap は入力座標系の矩形（中心x, 中心y, 幅, 高さ）を元画像で正規化した座標に戻します。
func (lb letterbox) unmap(cx, cy, w, h float32) (x1, y1, x2, y2 float32) {
	conv := func(v float32, pad float64, limit int) float32 {
		orig := (float64(v) - pad) / lb.scale
		orig = math.Max(0, math.Min(orig, float64(limit)))
		return float32(orig / float64(limit))
	}
	x1 = conv(cx-w/2, lb.padX, lb.srcW)
	y1 = conv(cy-h/2, lb.padY, lb.srcH)
	x2 = conv(cx+w/2, lb.padX, lb.srcW)
	y2 = conv(cy+h/2, lb.padY, lb.srcH)
	return x1, y1, x2, y2
}
