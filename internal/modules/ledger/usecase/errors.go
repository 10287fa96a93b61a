package usecase

import "errors"

var (
	// ErrMissingAPIKey APIキーが未入力
	ErrMissingAPIKey = errors.New("APIキーを入力してください")
	// ErrNoImages 画像が未選択
	ErrNoImages = errors.New("ファイルを選択してください")
	// ErrBusy 同じモードで抽出処理が実行中
	ErrBusy = errors.New("処理中です。完了するまでお待ちください")
	// ErrIndexOutOfRange 指定位置に行がない
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidSettings 設定値が不正
	ErrInvalidSettings = errors.New("invalid settings")
	// ErrUnknownMode 未対応のモード
	ErrUnknownMode = errors.New("unknown mode")
)

// SourceLabelError 銀行名・カード名が未選択
type SourceLabelError struct {
	SourceKind string // 銀行 or カード
}

func (e *SourceLabelError) Error() string {
	return e.SourceKind + "を選択してください"
}

// Is ErrNoSourceLabel と比較できるようにする
func (e *SourceLabelError) Is(target error) bool {
	return target == ErrNoSourceLabel
}

// ErrNoSourceLabel 銀行名・カード名が未選択（errors.Is 用）
var ErrNoSourceLabel = errors.New("source label is required")
