package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ledger-import-app/internal/modules/vision/domain"
)

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?")
	trailingFence = regexp.MustCompile("```$")
)

// CleanModelJSON コードブロックの囲みを取り除く
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseTransactions AIの応答から取引一覧を取り出す
// transactions 配列がない応答はエラー
func ParseTransactions(text string) ([]domain.RawTransaction, error) {
	clean := CleanModelJSON(text)
	if clean == "" {
		return nil, ErrEmptyResponse
	}

	var payload struct {
		Transactions *[]domain.RawTransaction `json:"transactions"`
	}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Transactions == nil {
		return nil, ErrMalformedResponse
	}
	return *payload.Transactions, nil
}
