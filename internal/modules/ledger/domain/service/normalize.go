package service

import (
	"regexp"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultDescriptionLength 摘要の最大長（UTF-16コード単位）
const DefaultDescriptionLength = 64

var (
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
	controlChars  = regexp.MustCompile(`[\r\n\t]+`)
)

// halfWidth 全角英数記号と全角スペースを半角に変換する
var halfWidth = runes.Map(func(r rune) rune {
	switch {
	case r >= 0xFF01 && r <= 0xFF5E:
		return r - 0xFEE0
	case r == 0x3000:
		return ' '
	}
	return r
})

// NormalizeForMatch ルール照合用に文字列を正規化
// 照合専用で、保存する値には使わない
func NormalizeForMatch(s string) string {
	if s == "" {
		return ""
	}
	mapped, _, err := transform.String(halfWidth, s)
	if err != nil {
		mapped = s
	}
	mapped = whitespaceRun.ReplaceAllString(mapped, " ")
	return strings.ToLower(strings.TrimSpace(mapped))
}

// NormalizeDescription 摘要欄に書き込む文字列を整形
// 改行・タブを除去し、maxLengthコード単位で切り詰める
// 上限をまたぐサロゲートペアは丸ごと落とすため、結果が maxLength-1 単位になることがある
func NormalizeDescription(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	s = strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
	if maxLength <= 0 {
		return s
	}

	units := 0
	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > maxLength {
			return s[:i]
		}
		units += n
	}
	return s
}

// EscapeCSVCell セル内のダブルクォートをエスケープ（囲みは呼び出し側）
func EscapeCSVCell(s string) string {
	if s == "" {
		return ""
	}
	return strings.ReplaceAll(s, `"`, `""`)
}
