package yayoi

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrNoEntries 仕訳として読める行がない
var ErrNoEntries = errors.New("仕訳データが見つかりませんでした")

// JournalEntry 仕訳日記帳の1行
type JournalEntry struct {
	Date              string
	DebitAccount      string
	DebitTaxCategory  string
	CreditAccount     string
	CreditTaxCategory string
	Description       string
}

// 列位置（弥生会計の仕訳日記帳エクスポート、または本アプリの出力形式）
type layout struct {
	date, debit, debitTax, credit, creditTax, description int
}

var (
	fullLayout    = layout{date: 3, debit: 4, debitTax: 7, credit: 10, creditTax: 13, description: 16}
	compactLayout = layout{date: 0, debit: 1, debitTax: 4, credit: 7, creditTax: 10, description: 13}
)

var datePattern = regexp.MustCompile(`^\d{2,4}[/\-.]\d{1,2}[/\-.]\d{1,2}$`)

// ParseJournal 仕訳CSVを読み込む（Shift-JIS/UTF-8を自動判定）
// ヘッダー行や日付のない行は読み飛ばす
func ParseJournal(data []byte) ([]JournalEntry, error) {
	text, err := DecodeAuto(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var entries []JournalEntry
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse journal csv: %w", err)
		}

		entry, ok := parseRecord(record)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}

func parseRecord(record []string) (JournalEntry, bool) {
	var l layout
	switch {
	case len(record) > fullLayout.description && datePattern.MatchString(strings.TrimSpace(record[fullLayout.date])):
		l = fullLayout
	case len(record) > compactLayout.description && datePattern.MatchString(strings.TrimSpace(record[compactLayout.date])):
		l = compactLayout
	default:
		return JournalEntry{}, false
	}

	field := func(i int) string { return strings.TrimSpace(record[i]) }
	return JournalEntry{
		Date:              field(l.date),
		DebitAccount:      field(l.debit),
		DebitTaxCategory:  field(l.debitTax),
		CreditAccount:     field(l.credit),
		CreditTaxCategory: field(l.creditTax),
		Description:       field(l.description),
	}, true
}
