package service

import (
	"errors"
	"strconv"
	"strings"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// 弥生会計インポート形式の固定値
const (
	journalFlag        = "2000"
	journalType        = "0"
	journalAdjustment  = "no"
	AccountBankDeposit = "普通預金"
	AccountPayable     = "未払金"
	AccountCash        = "現金"
	noInvoiceLabel     = "インボイスなし"
	csvRowSeparator    = "\r\n"
)

var (
	// ErrNoTransactions 出力対象の取引がない
	ErrNoTransactions = errors.New("no transactions to render")
	// ErrNoSourceLabel 銀行名・カード名が未選択
	ErrNoSourceLabel = errors.New("source label is required")
)

var (
	fullHeader = []string{
		"フラグ", "", "", "日付", "借方勘定", "借方補助", "借方部門", "借方税区分", "借方金額", "借方税額",
		"貸方勘定", "貸方補助", "貸方部門", "貸方税区分", "貸方金額", "貸方税額",
		"摘要", "", "", "タイプ", "", "仕訳メモ", "付箋1", "付箋2", "",
	}
	compactHeader = []string{
		"日付", "借方勘定", "借方補助", "借方部門", "借方税区分", "借方金額", "借方税額",
		"貸方勘定", "貸方補助", "貸方部門", "貸方税区分", "貸方金額", "貸方税額", "摘要",
	}
)

// RenderOptions CSV出力の設定
type RenderOptions struct {
	Mode              entity.Mode
	SourceLabel       string // 通帳は銀行名、クレカはカード名
	RequiresSource    bool
	Tax               entity.TaxSettings
	ShowSystemColumns bool
	DescriptionLength int
}

// journalLine 借方・貸方の1行分
type journalLine struct {
	date        string
	debit       side
	credit      side
	amount      string
	memo        string
	taxAmount   string
	taxOnDebit  bool
	taxOnCredit bool
}

type side struct {
	account     string
	subAccount  string
	taxCategory string
}

// JournalCSV 仕訳CSVの生成
type JournalCSV struct {
	rules *RuleBook
}

// NewJournalCSV 新しいJournalCSVを作成
func NewJournalCSV(rules *RuleBook) *JournalCSV {
	return &JournalCSV{rules: rules}
}

// Render 取引一覧から弥生会計インポート用CSVを生成
// 状態を持たないため、取引・ルール・設定が変わるたびに呼び直す
func (g *JournalCSV) Render(transactions []*entity.Transaction, opts RenderOptions) (string, error) {
	if len(transactions) == 0 {
		return "", ErrNoTransactions
	}
	if opts.RequiresSource && strings.TrimSpace(opts.SourceLabel) == "" {
		return "", ErrNoSourceLabel
	}
	if opts.DescriptionLength <= 0 {
		opts.DescriptionLength = DefaultDescriptionLength
	}

	header := compactHeader
	if opts.ShowSystemColumns {
		header = fullHeader
	}

	rows := make([]string, 0, len(transactions)+1)
	rows = append(rows, joinCells(header))
	for _, tx := range transactions {
		line := g.buildLine(tx, opts)
		rows = append(rows, joinCells(line.cells(opts.ShowSystemColumns)))
	}
	return strings.Join(rows, csvRowSeparator), nil
}

func (g *JournalCSV) buildLine(tx *entity.Transaction, opts RenderOptions) journalLine {
	kind := opts.Mode.KindOf(tx)
	matched, hasRule := g.rules.FindMatchingRule(tx.Description, kind)

	account := g.rules.AccountForRender(tx, kind)

	expenseTax, incomeTax := DefaultTaxCategories(opts.Tax)
	if hasRule && matched.TaxCategory != "" {
		if kind == entity.KindIncome {
			incomeTax = matched.TaxCategory
		} else {
			expenseTax = matched.TaxCategory
		}
	}

	line := journalLine{
		date:   tx.Date,
		amount: strconv.FormatInt(tx.AbsAmount(), 10),
		memo:   NormalizeDescription(buildMemo(tx, opts.Mode), opts.DescriptionLength),
	}

	switch {
	case opts.Mode == entity.ModeBank && kind == entity.KindIncome:
		line.debit = side{account: AccountBankDeposit, subAccount: opts.SourceLabel, taxCategory: TaxCategoryNone}
		line.credit = side{account: account, taxCategory: incomeTax}
		line.taxOnCredit = true
	case opts.Mode == entity.ModeBank:
		line.debit = side{account: account, taxCategory: expenseTax}
		line.credit = side{account: AccountBankDeposit, subAccount: opts.SourceLabel, taxCategory: TaxCategoryNone}
		line.taxOnDebit = true
	case opts.Mode == entity.ModeCreditCard:
		line.debit = side{account: account, taxCategory: expenseTax}
		line.credit = side{account: AccountPayable, subAccount: opts.SourceLabel, taxCategory: TaxCategoryNone}
		line.taxOnDebit = true
	default:
		line.debit = side{account: account, taxCategory: expenseTax}
		line.credit = side{account: AccountCash, taxCategory: TaxCategoryNone}
		line.taxOnDebit = true
	}

	// 通帳は符号付きの金額をそのまま出力する
	if opts.Mode == entity.ModeBank {
		line.amount = strconv.FormatInt(tx.Amount, 10)
	}

	target := line.debit.taxCategory
	if line.taxOnCredit {
		target = line.credit.taxCategory
	}
	line.taxAmount = formatTaxAmount(rowTaxAmount(tx, target, opts.Tax.TaxType))

	return line
}

func (l journalLine) cells(full bool) []string {
	debitTax, creditTax := "", ""
	if l.taxOnDebit {
		debitTax = l.taxAmount
	}
	if l.taxOnCredit {
		creditTax = l.taxAmount
	}

	core := []string{
		l.date,
		l.debit.account, l.debit.subAccount, "", l.debit.taxCategory, l.amount, debitTax,
		l.credit.account, l.credit.subAccount, "", l.credit.taxCategory, l.amount, creditTax,
		l.memo,
	}
	if !full {
		return core
	}

	cells := make([]string, 0, len(fullHeader))
	cells = append(cells, journalFlag, "", "")
	cells = append(cells, core...)
	return append(cells, "", "", journalType, "", "", "", "", journalAdjustment)
}

func rowTaxAmount(tx *entity.Transaction, category string, taxType entity.TaxType) int64 {
	if tx.TaxAmount != nil {
		return *tx.TaxAmount
	}
	return CalculateTaxFromCategory(tx.Amount, category, taxType)
}

func formatTaxAmount(v int64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func buildMemo(tx *entity.Transaction, mode entity.Mode) string {
	if mode == entity.ModeReceipt {
		invoice := tx.InvoiceNumber
		if invoice == "" {
			invoice = noInvoiceLabel
		}
		memo := invoice + "_" + tx.Description
		if tx.Note != "" {
			memo += "_" + tx.Note
		}
		return memo
	}
	if tx.Note != "" {
		return tx.Description + " " + tx.Note
	}
	return tx.Description
}

func joinCells(cells []string) string {
	var sb strings.Builder
	for i, c := range cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(EscapeCSVCell(c))
		sb.WriteByte('"')
	}
	return sb.String()
}
