package onnx

import (
	"sort"

	"recipe_backend/internal/feature/detection/domain/entity"
)

// candidate は閾値を超えたアンカー1つ分の予測です。
type candidate struct {
	class int
	score float32
	box   entity.Box
}

// decodeOutput はYOLOv8の出力 [1, 4+nc, N] を検出結果に変換します。
// 各アンカーはクラスごとの最大スコアで1クラスに割り当て、クラス単位でNMSを行います。
func decodeOutput(out []float32, anchors int, names []string, lb letterbox, conf, iou float32) []entity.Detection {
	nc := len(names)
	if anchors <= 0 || len(out) < (4+nc)*anchors {
		return nil
	}
	at := func(ch, i int) float32 { return out[ch*anchors+i] }

	var cands []candidate
	for i := 0; i < anchors; i++ {
		best, bestScore := -1, conf
		for c := 0; c < nc; c++ {
			if s := at(4+c, i); s >= bestScore {
				best, bestScore = c, s
			}
		}
		if best < 0 {
			continue
		}
		x1, y1, x2, y2 := lb.unmap(at(0, i), at(1, i), at(2, i), at(3, i))
		if x2 <= x1 || y2 <= y1 {
			continue
		}
		cands = append(cands, candidate{
			class: best,
			score: bestScore,
			box:   entity.Box{XMin: x1, YMin: y1, XMax: x2, YMax: y2},
		})
	}

	kept := nms(cands, iou)
	dets := make([]entity.Detection, 0, len(kept))
	for _, k := range kept {
		box := k.box
		dets = append(dets, entity.Detection{Label: names[k.class], Confidence: k.score, Box: &box})
	}
	return dets
}

// nms はクラスごとに貪欲法で重複する矩形を除きます。結果は信頼度の降順です。
func nms(cands []candidate, threshold float32) []candidate {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	kept := make([]candidate, 0, len(cands))
	for _, c := range cands {
		overlap := false
		for _, k := range kept {
			if k.class == c.class && iouOf(k.box, c.box) > threshold {
				overlap = true
				break
			}
		}
		if !overlap {
			kept = append(kept, c)
		}
	}
	return kept
}

func iouOf(a, b entity.Box) float32 {
	ix1, iy1 := max(a.XMin, b.XMin), max(a.YMin, b.YMin)
	ix2, iy2 := min(a.XMax, b.XMax), min(a.YMax, b.YMax)
	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}
	inter := (ix2 - ix1) * (iy2 - iy1)
	union := (a.XMax-a.XMin)*(a.YMax-a.YMin) + (b.XMax-b.XMin)*(b.YMax-b.YMin) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
