package domain

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF形式のサポート
	_ "image/jpeg" // JPEG形式のサポート
	_ "image/png"  // PNG形式のサポート
	"net/http"
)

// MaxImageSize 1ファイルあたりの上限
const MaxImageSize = 20 * 1024 * 1024

// ErrInvalidImage AIに送れない画像
var ErrInvalidImage = errors.New("invalid image")

// Image AIに送る画像（またはPDF）
type Image struct {
	Data     []byte
	MIMEType string
}

// NewImage データの先頭からMIMEタイプを判定してImageを作成
func NewImage(data []byte) Image {
	return Image{Data: data, MIMEType: DetectMIMEType(data)}
}

// DetectMIMEType 画像形式を判定（不明な場合はimage/png）
func DetectMIMEType(data []byte) string {
	switch {
	case len(data) > 2 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return "application/pdf"
	}

	switch ct := http.DetectContentType(data); ct {
	case "image/png", "image/gif", "image/webp":
		return ct
	}
	return "image/png"
}

// IsPDF PDFかどうか
func (i Image) IsPDF() bool {
	return i.MIMEType == "application/pdf"
}

// Validate 画像データを検証
// JPEG・PDF・WebPはシグネチャで判定し、それ以外はデコードして確かめる
func (i Image) Validate() error {
	if len(i.Data) == 0 {
		return fmt.Errorf("%w: image data is empty", ErrInvalidImage)
	}
	if len(i.Data) > MaxImageSize {
		return fmt.Errorf("%w: image size exceeds %dMB", ErrInvalidImage, MaxImageSize/1024/1024)
	}

	switch i.MIMEType {
	case "image/jpeg", "application/pdf", "image/webp":
		return nil
	}

	if _, format, err := image.DecodeConfig(bytes.NewReader(i.Data)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	} else if format != "png" && format != "gif" {
		return fmt.Errorf("%w: unsupported format: %s", ErrInvalidImage, format)
	}
	return nil
}
