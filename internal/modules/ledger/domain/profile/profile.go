package profile

import (
	"fmt"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// DefaultModel 抽出に使う既定のモデル
const DefaultModel = "gemini-2.0-flash"

// Profile モードごとの固定設定
type Profile struct {
	Mode             entity.Mode
	Label            string
	CSVFilenamePart  string
	SourceKind       string // 銀行 or カード（選択が必要な場合のみ）
	HasTypeColumn    bool
	HasInvoiceNumber bool
	HasIncomeRules   bool
	RequiresSource   bool

	ExpenseRules    []entity.Rule
	IncomeRules     []entity.Rule
	ExpenseAccounts []string
	IncomeAccounts  []string
	SourceOptions   []string
	PromptTemplate  string
}

var profiles = map[entity.Mode]*Profile{
	entity.ModeCreditCard: {
		Mode:            entity.ModeCreditCard,
		Label:           "クレカ明細",
		CSVFilenamePart: "クレカ",
		SourceKind:      "カード",
		RequiresSource:  true,
		ExpenseRules:    creditCardRules,
		ExpenseAccounts: purchaseAccounts,
		SourceOptions:   cardOptions,
		PromptTemplate:  creditCardPrompt,
	},
	entity.ModeBank: {
		Mode:            entity.ModeBank,
		Label:           "通帳",
		CSVFilenamePart: "通帳",
		SourceKind:      "銀行",
		HasTypeColumn:   true,
		HasIncomeRules:  true,
		RequiresSource:  true,
		ExpenseRules:    bankExpenseRules,
		IncomeRules:     bankIncomeRules,
		ExpenseAccounts: bankExpenseAccounts,
		IncomeAccounts:  bankIncomeAccounts,
		SourceOptions:   bankOptions,
		PromptTemplate:  bankPrompt,
	},
	entity.ModeReceipt: {
		Mode:             entity.ModeReceipt,
		Label:            "領収書",
		CSVFilenamePart:  "現金",
		HasInvoiceNumber: true,
		ExpenseRules:     receiptRules,
		ExpenseAccounts:  purchaseAccounts,
		PromptTemplate:   receiptPrompt,
	},
}

// Get モードのプロファイルを取得
func Get(mode entity.Mode) (*Profile, error) {
	p, ok := profiles[mode]
	if !ok {
		return nil, fmt.Errorf("profile not found: %s", mode)
	}
	return p, nil
}

// MustGet モードのプロファイルを取得（未知のモードはpanic）
func MustGet(mode entity.Mode) *Profile {
	p, err := Get(mode)
	if err != nil {
		panic(err)
	}
	return p
}

// All 全プロファイルを返す
func All() []*Profile {
	out := make([]*Profile, 0, len(entity.Modes))
	for _, m := range entity.Modes {
		out = append(out, profiles[m])
	}
	return out
}

// DefaultRules 初期ルール（出金、入金の順）のコピー
func (p *Profile) DefaultRules() []entity.Rule {
	out := make([]entity.Rule, 0, len(p.ExpenseRules)+len(p.IncomeRules))
	for _, r := range p.ExpenseRules {
		r.Mode = p.Mode
		out = append(out, r)
	}
	for _, r := range p.IncomeRules {
		r.Mode = p.Mode
		out = append(out, r)
	}
	return out
}

// Accounts 区分ごとの勘定科目候補
func (p *Profile) Accounts(kind entity.Kind) []string {
	if kind.Normalize() == entity.KindIncome {
		return append([]string(nil), p.IncomeAccounts...)
	}
	return append([]string(nil), p.ExpenseAccounts...)
}

// Sources 銀行・カードの選択肢
func (p *Profile) Sources() []string {
	return append([]string(nil), p.SourceOptions...)
}
