package onnx

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// namesEntry はエクスポート時に埋め込まれる names メタデータの1要素です。
// 例: {0: 'daikon', 1: 'hourensou'}
var namesEntry = regexp.MustCompile(`(\d+):\s*['"]([^'"]*)['"]`)

// parseNamesMetadata は names メタデータをインデックス順のクラス名に変換します。
func parseNamesMetadata(s string) ([]string, error) {
	matches := namesEntry.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no class names in metadata %q", s)
	}

	byIndex := make(map[int]string, len(matches))
	maxIdx := -1
	for _, m := range matches {
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("class index %q: %w", m[1], err)
		}
		byIndex[idx] = m[2]
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if maxIdx+1 != len(byIndex) {
		return nil, fmt.Errorf("class indices are not contiguous (max %d, count %d)", maxIdx, len(byIndex))
	}

	names := make([]string, maxIdx+1)
	for i, n := range byIndex {
		names[i] = n
	}
	return names, nil
}

// readNamesFile は1行1クラスのファイルを読み込みます。空行は無視します。
func readNamesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: no class names", path)
	}
	return names, nil
}
