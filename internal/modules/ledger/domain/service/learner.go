package service

import (
	"strings"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// KindFunc 取引の区分を決める関数
type KindFunc func(tx *entity.Transaction) entity.Kind

// ExtractMissingRules 既存ルールで判定できない摘要から新しいルールを作る
// 同一バッチ内で正規化後の摘要が重複するものは最初の1件のみ採用する
func (b *RuleBook) ExtractMissingRules(transactions []*entity.Transaction, kind entity.Kind, kindOf KindFunc) []entity.Rule {
	kind = kind.Normalize()

	existing := make([]string, 0, b.Len(kind))
	for _, r := range *b.list(kind) {
		if k := NormalizeForMatch(r.Keyword); k != "" {
			existing = append(existing, k)
		}
	}

	seen := make(map[string]struct{})
	var added []entity.Rule
	for _, tx := range transactions {
		if kindOf != nil && kindOf(tx) != kind {
			continue
		}
		desc := strings.TrimSpace(tx.Description)
		if desc == "" {
			continue
		}
		norm := NormalizeForMatch(desc)
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}

		if covered(norm, existing) {
			continue
		}
		added = append(added, entity.NewRule(desc, tx.Account, kind))
	}
	return added
}

// Learn 未登録の摘要をルールとして末尾に追加し、追加分を返す
func (b *RuleBook) Learn(transactions []*entity.Transaction, kind entity.Kind, kindOf KindFunc) []entity.Rule {
	added := b.ExtractMissingRules(transactions, kind, kindOf)
	b.Append(added...)
	return b.tail(kind, len(added))
}

func (b *RuleBook) tail(kind entity.Kind, n int) []entity.Rule {
	l := *b.list(kind)
	out := make([]entity.Rule, n)
	copy(out, l[len(l)-n:])
	return out
}

func covered(norm string, keywords []string) bool {
	for _, k := range keywords {
		if norm == k || strings.Contains(norm, k) {
			return true
		}
	}
	return false
}
