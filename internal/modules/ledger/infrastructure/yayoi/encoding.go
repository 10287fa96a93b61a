package yayoi

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// EncodeShiftJIS 弥生会計が読めるShift-JISに変換
// Shift-JISで表せない文字は ? に置き換える
func EncodeShiftJIS(s string) []byte {
	enc := japanese.ShiftJIS.NewEncoder()
	if b, err := enc.Bytes([]byte(s)); err == nil {
		return b
	}

	var buf bytes.Buffer
	buf.Grow(len(s))
	for _, r := range s {
		b, err := enc.Bytes([]byte(string(r)))
		if err != nil {
			buf.WriteByte('?')
			continue
		}
		buf.Write(b)
	}
	return buf.Bytes()
}

// DecodeAuto UTF-8ならそのまま、それ以外はShift-JISとして読む
func DecodeAuto(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode shift-jis: %w", err)
	}
	return string(decoded), nil
}
