package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// BunTransactionRepository BUN実装
type BunTransactionRepository struct {
	db *bun.DB
}

// NewBunTransactionRepositoryWithDB DBインスタンスから作成
func NewBunTransactionRepositoryWithDB(db *bun.DB) *BunTransactionRepository {
	return &BunTransactionRepository{db: db}
}

// GetTransactions 登録順に取引を取得（sourceNameが空なら全件）
func (r *BunTransactionRepository) GetTransactions(ctx context.Context, mode entity.Mode, sourceName string) ([]*entity.Transaction, error) {
	var models []Transaction
	query := r.db.NewSelect().
		Model(&models).
		Where("source_type = ?", string(mode))

	if sourceName != "" {
		query = query.Where("source_name = ?", sourceName)
	}

	if err := query.Order("position ASC", "created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}

	txs := make([]*entity.Transaction, len(models))
	for i := range models {
		txs[i] = r.toEntity(&models[i])
	}
	return txs, nil
}

// SaveTransaction IDで上書き、IDが空なら採番して追加
func (r *BunTransactionRepository) SaveTransaction(ctx context.Context, t *entity.Transaction) error {
	now := time.Now()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if t.ID != "" {
			exists, err := tx.NewSelect().
				Model((*Transaction)(nil)).
				Where("id = ?", t.ID).
				Exists(ctx)
			if err != nil {
				return fmt.Errorf("failed to find transaction: %w", err)
			}
			if exists {
				t.UpdatedAt = now
				model := r.toModel(t)
				if _, err := tx.NewUpdate().
					Model(model).
					ExcludeColumn("position", "created_at").
					WherePK().
					Exec(ctx); err != nil {
					return fmt.Errorf("failed to update transaction: %w", err)
				}
				return nil
			}
		}

		pos, err := nextPosition(ctx, tx, (*Transaction)(nil), "source_type = ?", string(t.SourceType))
		if err != nil {
			return err
		}

		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.CreatedAt = now
		t.UpdatedAt = now

		model := r.toModel(t)
		model.Position = pos
		if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	})
}

// DeleteTransaction 取引を削除
func (r *BunTransactionRepository) DeleteTransaction(ctx context.Context, id string) error {
	_, err := r.db.NewDelete().
		Model((*Transaction)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// toModel エンティティをモデルに変換
func (r *BunTransactionRepository) toModel(t *entity.Transaction) *Transaction {
	model := &Transaction{
		ID:            t.ID,
		SourceType:    string(t.SourceType),
		SourceName:    t.SourceName,
		Date:          t.Date,
		Description:   t.Description,
		Amount:        t.Amount,
		Type:          string(t.Type),
		Note:          t.Note,
		Account:       t.Account,
		InvoiceNumber: t.InvoiceNumber,
		TaxCategory:   t.TaxCategory,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.TaxAmount != nil {
		v := *t.TaxAmount
		model.TaxAmount = &v
	}
	return model
}

// toEntity モデルをエンティティに変換
func (r *BunTransactionRepository) toEntity(model *Transaction) *entity.Transaction {
	t := &entity.Transaction{
		ID:            model.ID,
		SourceType:    entity.Mode(model.SourceType),
		SourceName:    model.SourceName,
		Date:          model.Date,
		Description:   model.Description,
		Amount:        model.Amount,
		Type:          entity.Kind(model.Type),
		Note:          model.Note,
		Account:       model.Account,
		InvoiceNumber: model.InvoiceNumber,
		TaxCategory:   model.TaxCategory,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
	if model.TaxAmount != nil {
		v := *model.TaxAmount
		t.TaxAmount = &v
	}
	return t
}
