package domain

import (
	"context"
	"time"
)

// AIRepository 画像から取引を抽出するAIのリポジトリインターフェース
type AIRepository interface {
	// ExtractTransactions プロンプトと画像を送り、応答テキストを返す
	ExtractTransactions(ctx context.Context, prompt string, images []Image) (*AIResult, error)

	// ProviderName プロバイダー名を返す
	ProviderName() string
}

// CacheRepository キャッシュリポジトリのインターフェース
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
