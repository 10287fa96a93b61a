package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// RawTransaction AIが返した取引1件
type RawTransaction struct {
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	Amount        Amount  `json:"amount"`
	Type          string  `json:"type"`
	Note          string  `json:"note"`
	Account       string  `json:"account"`
	InvoiceNumber string  `json:"invoiceNumber"`
	TaxCategory   string  `json:"taxCategory"`
	TaxAmount     *Amount `json:"taxAmount"`
}

// Amount 数値・文字列どちらの金額も受け付ける
// 解釈できない値は0として扱う
type Amount int64

// UnmarshalJSON 金額をパース
func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var raw string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(b)
	}

	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	*a = Amount(d.IntPart())
	return nil
}

// Int64 int64に変換
func (a Amount) Int64() int64 {
	return int64(a)
}
