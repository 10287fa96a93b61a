package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// BunRuleRepository BUN実装
type BunRuleRepository struct {
	db *bun.DB
}

// NewBunRuleRepositoryWithDB DBインスタンスから作成
func NewBunRuleRepositoryWithDB(db *bun.DB) *BunRuleRepository {
	return &BunRuleRepository{db: db}
}

// GetRules 保存順にルールを取得
func (r *BunRuleRepository) GetRules(ctx context.Context, mode entity.Mode, kind *entity.Kind) ([]entity.Rule, error) {
	var models []Rule
	query := r.db.NewSelect().
		Model(&models).
		Where("mode = ?", string(mode))

	if kind != nil {
		query = query.Where("transaction_type = ?", string(kind.Normalize()))
	}

	if err := query.Order("transaction_type ASC", "position ASC", "created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to find rules: %w", err)
	}

	rules := make([]entity.Rule, len(models))
	for i := range models {
		rules[i] = r.toEntity(&models[i])
	}
	return rules, nil
}

// SaveRule モード・区分・キーワードが同じルールを上書き、なければ末尾に追加
func (r *BunRuleRepository) SaveRule(ctx context.Context, rule *entity.Rule) error {
	kind := rule.Kind()
	now := time.Now()

	// トランザクション内で実行
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &Rule{}
		err := tx.NewSelect().
			Model(existing).
			Where("mode = ?", string(rule.Mode)).
			Where("transaction_type = ?", string(kind)).
			Where("keyword = ?", rule.Keyword).
			Limit(1).
			Scan(ctx)

		switch {
		case err == nil:
			existing.Account = rule.Account
			existing.TaxCategory = rule.TaxCategory
			existing.UpdatedAt = now
			if _, err := tx.NewUpdate().
				Model(existing).
				Column("account", "tax_category", "updated_at").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to update rule: %w", err)
			}
			rule.ID = existing.ID
			rule.Position = existing.Position
			rule.CreatedAt = existing.CreatedAt
			rule.UpdatedAt = now
			return nil
		case errors.Is(err, sql.ErrNoRows):
		default:
			return fmt.Errorf("failed to find rule: %w", err)
		}

		pos, err := nextPosition(ctx, tx, (*Rule)(nil),
			"mode = ? AND transaction_type = ?", string(rule.Mode), string(kind))
		if err != nil {
			return err
		}

		if rule.ID == "" {
			rule.ID = uuid.NewString()
		}
		rule.TransactionType = kind
		rule.Position = pos
		rule.CreatedAt = now
		rule.UpdatedAt = now

		if _, err := tx.NewInsert().Model(r.toModel(rule)).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create rule: %w", err)
		}
		return nil
	})
}

// DeleteRule ルールを削除
func (r *BunRuleRepository) DeleteRule(ctx context.Context, id string) error {
	_, err := r.db.NewDelete().
		Model((*Rule)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

// toModel エンティティをモデルに変換
func (r *BunRuleRepository) toModel(rule *entity.Rule) *Rule {
	return &Rule{
		ID:              rule.ID,
		Mode:            string(rule.Mode),
		Keyword:         rule.Keyword,
		Account:         rule.Account,
		TaxCategory:     rule.TaxCategory,
		TransactionType: string(rule.Kind()),
		Position:        rule.Position,
		CreatedAt:       rule.CreatedAt,
		UpdatedAt:       rule.UpdatedAt,
	}
}

// toEntity モデルをエンティティに変換
func (r *BunRuleRepository) toEntity(model *Rule) entity.Rule {
	return entity.Rule{
		ID:              model.ID,
		Mode:            entity.Mode(model.Mode),
		Keyword:         model.Keyword,
		Account:         model.Account,
		TaxCategory:     model.TaxCategory,
		TransactionType: entity.Kind(model.TransactionType),
		Position:        model.Position,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
