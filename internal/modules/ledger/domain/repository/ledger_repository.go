package repository

import (
	"context"
	"io"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// RuleRepository 仕訳ルールリポジトリのインターフェース
type RuleRepository interface {
	// GetRules 保存順にルールを取得（kindがnilなら全区分）
	GetRules(ctx context.Context, mode entity.Mode, kind *entity.Kind) ([]entity.Rule, error)
	// SaveRule モード・区分・キーワードが同じルールを上書き、なければ追加（IDを設定する）
	SaveRule(ctx context.Context, rule *entity.Rule) error
	DeleteRule(ctx context.Context, id string) error
}

// TransactionRepository 取引リポジトリのインターフェース
type TransactionRepository interface {
	// GetTransactions 取引を取得（sourceNameが空なら全件）
	GetTransactions(ctx context.Context, mode entity.Mode, sourceName string) ([]*entity.Transaction, error)
	// SaveTransaction IDで上書き、IDが空なら採番して追加
	SaveTransaction(ctx context.Context, tx *entity.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

// ChangeTarget 変更の対象
type ChangeTarget string

const (
	ChangeTargetRule        ChangeTarget = "rule"
	ChangeTargetTransaction ChangeTarget = "transaction"
)

// Change 他のクライアントによる変更の通知
type Change struct {
	Mode   entity.Mode  `json:"mode"`
	Target ChangeTarget `json:"target"`
	ID     string       `json:"id,omitempty"`
	Origin string       `json:"origin,omitempty"` // 送信元のインスタンスID
}

// ChangeNotifier 変更通知の送受信
type ChangeNotifier interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe 変更を受信するたびにhandlerを呼ぶ。Closeで購読を終了する
	Subscribe(ctx context.Context, handler func(Change)) (io.Closer, error)
}
