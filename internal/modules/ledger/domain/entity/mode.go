package entity

import "fmt"

// Mode 取り込み対象の書類種別
type Mode string

const (
	// ModeCreditCard クレジットカード明細
	ModeCreditCard Mode = "creditcard"
	// ModeBank 通帳
	ModeBank Mode = "bank"
	// ModeReceipt 領収書・レシート
	ModeReceipt Mode = "receipt"
)

// Modes 対応している全モード
var Modes = []Mode{ModeCreditCard, ModeBank, ModeReceipt}

// ParseMode 文字列からModeを取得
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode: %q", s)
}

// IsValid 有効なモードかどうか
func (m Mode) IsValid() bool {
	_, err := ParseMode(string(m))
	return err == nil
}

// Kind 取引の区分（出金/入金）
type Kind string

const (
	// KindExpense 出金
	KindExpense Kind = "expense"
	// KindIncome 入金
	KindIncome Kind = "income"
)

// Normalize 空の区分は出金として扱う
func (k Kind) Normalize() Kind {
	if k == KindIncome {
		return KindIncome
	}
	return KindExpense
}

// FallbackAccount ルールに一致しない場合の勘定科目
func (k Kind) FallbackAccount() string {
	if k.Normalize() == KindIncome {
		return "雑収入"
	}
	return "雑費"
}

// KindOf モードにおける取引の区分
// 通帳は type が expense の行のみ出金、それ以外は入金として扱う
func (m Mode) KindOf(tx *Transaction) Kind {
	if m == ModeBank && tx.Type != KindExpense {
		return KindIncome
	}
	return KindExpense
}
