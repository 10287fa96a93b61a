package entity

import (
	"strings"
	"time"
)

// Rule キーワードから勘定科目を決める仕訳ルール
type Rule struct {
	ID              string
	Mode            Mode
	Keyword         string
	Account         string
	TaxCategory     string // 空の場合は税区分の既定値を使用
	TransactionType Kind
	Position        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewRule 新しいRuleを作成
func NewRule(keyword, account string, kind Kind) Rule {
	return Rule{
		Keyword:         keyword,
		Account:         account,
		TransactionType: kind.Normalize(),
	}
}

// Kind ルールの区分
func (r Rule) Kind() Kind {
	return r.TransactionType.Normalize()
}

// IsUsable 照合に使えるルールかどうか
func (r Rule) IsUsable() bool {
	return strings.TrimSpace(r.Keyword) != "" && r.Account != ""
}
