package service

import (
	"strings"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// RuleBook 出金・入金ごとの仕訳ルール
// 照合は保存順の先頭一致で行うため、並び順を変えてはいけない
type RuleBook struct {
	expense []entity.Rule
	income  []entity.Rule
}

// NewRuleBook 保存順のルールからRuleBookを作成
func NewRuleBook(rules []entity.Rule) *RuleBook {
	b := &RuleBook{}
	for _, r := range rules {
		b.Append(r)
	}
	return b
}

func (b *RuleBook) list(kind entity.Kind) *[]entity.Rule {
	if kind.Normalize() == entity.KindIncome {
		return &b.income
	}
	return &b.expense
}

// Rules 指定区分のルールのコピーを返す
func (b *RuleBook) Rules(kind entity.Kind) []entity.Rule {
	src := *b.list(kind)
	out := make([]entity.Rule, len(src))
	copy(out, src)
	return out
}

// All 出金、入金の順に全ルールを返す
func (b *RuleBook) All() []entity.Rule {
	out := make([]entity.Rule, 0, len(b.expense)+len(b.income))
	out = append(out, b.expense...)
	return append(out, b.income...)
}

// Len 指定区分のルール数
func (b *RuleBook) Len(kind entity.Kind) int {
	return len(*b.list(kind))
}

// Append ルールを末尾に追加
func (b *RuleBook) Append(rules ...entity.Rule) {
	for _, r := range rules {
		r.TransactionType = r.Kind()
		l := b.list(r.TransactionType)
		r.Position = len(*l)
		*l = append(*l, r)
	}
}

// Replace 指定区分のルールを差し替える
func (b *RuleBook) Replace(kind entity.Kind, rules []entity.Rule) {
	l := b.list(kind)
	*l = nil
	for _, r := range rules {
		r.TransactionType = kind.Normalize()
		r.Position = len(*l)
		*l = append(*l, r)
	}
}

// Upsert キーワードの完全一致でルールを更新、なければ追加
// 戻り値の真偽は新規作成かどうか
func (b *RuleBook) Upsert(keyword, account, taxCategory string, kind entity.Kind) (entity.Rule, bool) {
	l := b.list(kind)
	for i := range *l {
		if (*l)[i].Keyword == keyword {
			(*l)[i].Account = account
			if taxCategory != "" {
				(*l)[i].TaxCategory = taxCategory
			}
			return (*l)[i], false
		}
	}

	r := entity.NewRule(keyword, account, kind)
	r.TaxCategory = taxCategory
	b.Append(r)
	return (*l)[len(*l)-1], true
}

// SetID 永続化後に採番されたIDを反映
func (b *RuleBook) SetID(kind entity.Kind, keyword, id string) {
	l := b.list(kind)
	for i := range *l {
		if (*l)[i].Keyword == keyword {
			(*l)[i].ID = id
			return
		}
	}
}

// Delete IDでルールを削除
func (b *RuleBook) Delete(kind entity.Kind, id string) (entity.Rule, bool) {
	if id == "" {
		return entity.Rule{}, false
	}
	l := b.list(kind)
	for i := range *l {
		if (*l)[i].ID == id {
			return b.DeleteAt(kind, i)
		}
	}
	return entity.Rule{}, false
}

// DeleteAt 位置でルールを削除（未保存のルール用）
func (b *RuleBook) DeleteAt(kind entity.Kind, index int) (entity.Rule, bool) {
	l := b.list(kind)
	if index < 0 || index >= len(*l) {
		return entity.Rule{}, false
	}
	removed := (*l)[index]
	*l = append((*l)[:index], (*l)[index+1:]...)
	for i := index; i < len(*l); i++ {
		(*l)[i].Position = i
	}
	return removed, true
}

// FindMatchingRule 摘要に一致する最初のルールを返す
func (b *RuleBook) FindMatchingRule(description string, kind entity.Kind) (entity.Rule, bool) {
	if description == "" {
		return entity.Rule{}, false
	}
	target := NormalizeForMatch(description)
	for _, r := range *b.list(kind) {
		if !r.IsUsable() {
			continue
		}
		if strings.Contains(target, NormalizeForMatch(r.Keyword)) {
			return r, true
		}
	}
	return entity.Rule{}, false
}

// FindAccount 摘要から勘定科目を判定（一致なしは区分ごとの既定科目）
func (b *RuleBook) FindAccount(description string, kind entity.Kind) string {
	if r, ok := b.FindMatchingRule(description, kind); ok {
		return r.Account
	}
	return kind.FallbackAccount()
}

// ResolveAccount 抽出直後の取引に勘定科目を割り当てる
// ルール一致を優先し、既定科目にしかならない場合はAIの推測を採用する
func (b *RuleBook) ResolveAccount(description, aiAccount string, kind entity.Kind) string {
	fallback := kind.FallbackAccount()
	if ruleAccount := b.FindAccount(description, kind); ruleAccount != fallback {
		return ruleAccount
	}
	if aiAccount != "" {
		return aiAccount
	}
	return fallback
}

// AccountForRender CSV出力時の勘定科目（取引の値、ルール、既定科目の順）
func (b *RuleBook) AccountForRender(tx *entity.Transaction, kind entity.Kind) string {
	if tx.Account != "" {
		return tx.Account
	}
	return b.FindAccount(tx.Description, kind)
}
