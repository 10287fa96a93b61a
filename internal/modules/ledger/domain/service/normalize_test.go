package service

import (
	"strings"
	"testing"
	"unicode/utf16"
)

func TestNormalizeForMatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "正常系: 全角英字を半角小文字に", input: "ＡＷＳ", want: "aws"},
		{name: "正常系: 全角スペース", input: "ＪＲ　東日本", want: "jr 東日本"},
		{name: "正常系: 空白の連続を1つに", input: "  Amazon \t  Japan  ", want: "amazon japan"},
		{name: "正常系: 全角記号", input: "（株）ＮＴＴ！", want: "(株)ntt!"},
		{name: "正常系: かなはそのまま", input: "カ）ヤマダ", want: "カ)ヤマダ"},
		{name: "境界値: 空文字", input: "", want: ""},
		{name: "境界値: 空白のみ", input: "　 ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeForMatch(tt.input); got != tt.want {
				t.Errorf("NormalizeForMatch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeForMatch_Idempotent(t *testing.T) {
	inputs := []string{"ＡＷＳ Payments", "  ＪＲ　東日本  ", "Amazon.co.jp", "電話　料金", "ｶﾌｪ"}
	for _, in := range inputs {
		once := NormalizeForMatch(in)
		if twice := NormalizeForMatch(once); twice != once {
			t.Errorf("not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "正常系: 改行とタブを除去", input: "Line1\nLine2\r\n\tEnd", maxLength: 64, want: "Line1Line2End"},
		{name: "正常系: 前後の空白を除去", input: "  text  ", maxLength: 64, want: "text"},
		{name: "正常系: 切り詰め", input: "abcdefghij", maxLength: 5, want: "abcde"},
		{name: "境界値: 空文字", input: "", maxLength: 64, want: ""},
		{name: "境界値: 上限ちょうど", input: "abcde", maxLength: 5, want: "abcde"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDescription(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("NormalizeDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeDescription_MultibyteLength(t *testing.T) {
	got := NormalizeDescription(strings.Repeat("あ", 100), DefaultDescriptionLength)
	if n := len(utf16.Encode([]rune(got))); n != DefaultDescriptionLength {
		t.Errorf("length = %d, want %d", n, DefaultDescriptionLength)
	}

	// サロゲートペアの途中では切らない
	got = NormalizeDescription("ab😀", 3)
	if got != "ab" {
		t.Errorf("NormalizeDescription() = %q, want %q", got, "ab")
	}

	// 上限をまたぐ絵文字は落とし、1単位短くなる
	got = NormalizeDescription(strings.Repeat("a", 63)+"😀b", DefaultDescriptionLength)
	if got != strings.Repeat("a", 63) {
		t.Errorf("NormalizeDescription() = %q", got)
	}
	if n := len(utf16.Encode([]rune(got))); n != DefaultDescriptionLength-1 {
		t.Errorf("length = %d, want %d", n, DefaultDescriptionLength-1)
	}

	// 上限ちょうどで終わる絵文字は残す
	got = NormalizeDescription(strings.Repeat("a", 62)+"😀b", DefaultDescriptionLength)
	if got != strings.Repeat("a", 62)+"😀" {
		t.Errorf("NormalizeDescription() = %q", got)
	}
}

func TestEscapeCSVCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: `He said "Hello"`, want: `He said ""Hello""`},
		{input: "", want: ""},
		{input: "plain", want: "plain"},
		{input: `""`, want: `""""`},
	}

	for _, tt := range tests {
		if got := EscapeCSVCell(tt.input); got != tt.want {
			t.Errorf("EscapeCSVCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
