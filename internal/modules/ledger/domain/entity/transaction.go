package entity

import "time"

// Transaction 仕訳の元になる取引エンティティ
type Transaction struct {
	ID            string
	Date          string // YYYY/MM/DD
	Description   string
	Amount        int64 // 円、符号付き
	Type          Kind  // 通帳のみ使用
	Note          string
	Account       string
	InvoiceNumber string
	TaxCategory   string
	TaxAmount     *int64 // nilは未指定
	SourceType    Mode
	SourceName    string // 銀行名・カード名
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AbsAmount 金額の絶対値
func (t *Transaction) AbsAmount() int64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}

// Clone ディープコピーを返す
func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.TaxAmount != nil {
		v := *t.TaxAmount
		c.TaxAmount = &v
	}
	return &c
}

// CloneTransactions 取引リストのディープコピー
func CloneTransactions(txs []*Transaction) []*Transaction {
	out := make([]*Transaction, len(txs))
	for i, tx := range txs {
		out[i] = tx.Clone()
	}
	return out
}

// TransactionPatch 取引の部分更新
type TransactionPatch struct {
	Date          *string
	Description   *string
	Amount        *int64
	Type          *Kind
	Note          *string
	Account       *string
	InvoiceNumber *string
	TaxCategory   *string
	TaxAmount     *int64
}

// Apply パッチを適用し、勘定科目が変更されたかどうかを返す
func (p TransactionPatch) Apply(t *Transaction) bool {
	accountChanged := false
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	if p.Account != nil {
		accountChanged = true
		t.Account = *p.Account
	}
	if p.InvoiceNumber != nil {
		t.InvoiceNumber = *p.InvoiceNumber
	}
	if p.TaxCategory != nil {
		t.TaxCategory = *p.TaxCategory
	}
	if p.TaxAmount != nil {
		v := *p.TaxAmount
		t.TaxAmount = &v
	}
	return accountChanged
}
