// Package ingredient は検出ラベルとレシピカテゴリの静的対応表を提供します。
//
// 対応表はプロセス起動時に固定され、実行時に変更されることはありません。
// 外部からは読み取り専用の関数経由でのみ参照できます。
package ingredient

import "sort"

// labelToTerm は検出モデルのクラス名（ローマ字）から日本語のカテゴリ名への対応表です。
var labelToTerm = map[string]string{
	"daikon":       "大根",
	"hourensou":    "ほうれん草",
	"jagaimo":      "じゃがいも",
	"kabu":         "かぶ",
	"karifurawaa":  "カリフラワー",
	"kyabetsu":     "キャベツ",
	"kyuuri":       "きゅうり",
	"nasu":         "なす全般",
	"ninjin":       "にんじん",
	"ninniku":      "ガーリック・にんにく",
	"papurika":     "パプリカ",
	"piiman":       "ピーマン",
	"retasu":       "レタス",
	"satsumaimo":   "さつまいも",
	"shouga":       "生姜（新生姜）",
	"tamanegi":     "玉ねぎ",
	"tomato":       "トマト全般",
	"toumorokoshi": "とうもろこし",
}

// termToCategoryID は日本語のカテゴリ名から楽天レシピのカテゴリIDへの参照表です。
// 実際の解決はカテゴリ一覧APIで行い、この表はドキュメントとテスト用です。
var termToCategoryID = map[string]string{
	"大根":         "12-449-1520",
	"ほうれん草":      "12-457-1528",
	"じゃがいも":      "12-97-17",
	"かぶ":         "12-102-16",
	"カリフラワー":     "12-103-34",
	"キャベツ":       "12-98-1",
	"きゅうり":       "12-450-1521",
	"なす全般":       "12-447-1518",
	"にんじん":       "12-95-13",
	"ガーリック・にんにく": "12-107-9",
	"パプリカ":       "12-101-456",
	"ピーマン":       "12-101-30",
	"レタス":        "12-100-2",
	"さつまいも":      "12-452-1523",
	"生姜（新生姜）":    "12-107-316",
	"玉ねぎ":        "12-96-7",
	"トマト全般":      "12-454-1525",
	"とうもろこし":     "12-101-422",
}

// Translate は検出ラベルを日本語のカテゴリ名に変換します。
// 対応表にないラベルはそのまま返します。
func Translate(label string) string {
	if term, ok := labelToTerm[label]; ok {
		return term
	}
	return label
}

// IsKnown は対応表にラベルが登録されているかを返します。
func IsKnown(label string) bool {
	_, ok := labelToTerm[label]
	return ok
}

// ReferenceCategoryID は参照表に登録されたカテゴリIDを返します。
func ReferenceCategoryID(term string) (string, bool) {
	id, ok := termToCategoryID[term]
	return id, ok
}

// Labels は登録済みのラベルを昇順で返します。
func Labels() []string {
	out := make([]string, 0, len(labelToTerm))
	for l := range labelToTerm {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
