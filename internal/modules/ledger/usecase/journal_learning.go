package usecase

import (
	"context"
	"fmt"
	"strings"

	"ledger-import-app/internal/logger"
	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/domain/repository"
	"ledger-import-app/internal/modules/ledger/domain/service"
	"ledger-import-app/internal/modules/ledger/infrastructure/yayoi"
)

// JournalLearningResult 仕訳日記帳からの学習結果
type JournalLearningResult struct {
	TotalEntries int
	Added        int
	Updated      int
	Skipped      int
}

// 支払い側の勘定科目
var settlementAccounts = map[string]struct{}{
	service.AccountBankDeposit: {},
	service.AccountPayable:     {},
	service.AccountCash:        {},
}

func isSettlement(account string) bool {
	_, ok := settlementAccounts[account]
	return ok
}

// LearnFromJournal 弥生会計の仕訳日記帳CSVから摘要と勘定科目の組を学習する
// 貸方が普通預金・未払金・現金の行は出金、借方が普通預金の行は入金のルールになる
func (uc *LedgerUseCase) LearnFromJournal(ctx context.Context, data []byte) (*JournalLearningResult, error) {
	entries, err := yayoi.ParseJournal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	log := logger.FromContext(ctx).With().Str("mode", string(uc.mode)).Logger()
	result := &JournalLearningResult{TotalEntries: len(entries)}

	for _, e := range entries {
		keyword := strings.TrimSpace(e.Description)

		var (
			kind        entity.Kind
			account     string
			taxCategory string
		)
		switch {
		case keyword == "":
			result.Skipped++
			continue
		case isSettlement(e.CreditAccount) && !isSettlement(e.DebitAccount):
			kind, account, taxCategory = entity.KindExpense, e.DebitAccount, e.DebitTaxCategory
		case e.DebitAccount == service.AccountBankDeposit && !isSettlement(e.CreditAccount) && uc.profile.HasIncomeRules:
			kind, account, taxCategory = entity.KindIncome, e.CreditAccount, e.CreditTaxCategory
		default:
			result.Skipped++
			continue
		}
		if account == "" {
			result.Skipped++
			continue
		}

		rule, created := uc.rules.Upsert(keyword, account, taxCategory, kind)
		if created {
			result.Added++
		} else {
			result.Updated++
		}
		if _, err := uc.saveRule(ctx, rule); err != nil {
			log.Warn().Err(err).Str("keyword", keyword).Msg("failed to save journal rule")
		}
	}

	if result.Added+result.Updated > 0 {
		uc.publish(ctx, repository.ChangeTargetRule, "")
	}

	log.Info().
		Int("entries", result.TotalEntries).
		Int("added", result.Added).
		Int("updated", result.Updated).
		Msg("learned rules from journal")
	return result, nil
}
