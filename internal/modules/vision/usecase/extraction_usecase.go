package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"ledger-import-app/internal/logger"
	"ledger-import-app/internal/modules/vision/domain"
)

const (
	// DefaultMaxRetries 一時的なエラーの再試行回数
	DefaultMaxRetries = 3
	// DefaultRetryBaseDelay 再試行の初回待ち時間（以降2倍ずつ増やす）
	DefaultRetryBaseDelay = time.Second

	cacheTTL = 24 * time.Hour
)

var (
	// ErrNoImages 画像が指定されていない
	ErrNoImages = errors.New("ファイルを選択してください")
	// ErrRateLimited 再試行しても429が解消しなかった
	ErrRateLimited = errors.New("リクエストが多すぎます（429）。APIの利用上限に達した可能性があります。しばらく待ってから再度お試しください。")
	// ErrOverloaded 再試行しても503が解消しなかった
	ErrOverloaded = errors.New("現在AIのAPIが非常に混雑しています（503）。少し時間を置いてから再度お試しいただくか、設定から別のモデルに変更してください。")
	// ErrEmptyResponse AIの応答が空
	ErrEmptyResponse = errors.New("AIからの応答が空でした")
	// ErrMalformedResponse AIの応答が期待したJSONではない
	ErrMalformedResponse = errors.New("AIの応答が期待されたJSON形式ではありませんでした")
)

// Extraction 抽出結果
type Extraction struct {
	Transactions []domain.RawTransaction
	InputTokens  int
	OutputTokens int
	Model        string
	Cached       bool
}

// TotalTokens 合計トークン数を返す
func (e *Extraction) TotalTokens() int {
	return e.InputTokens + e.OutputTokens
}

// ExtractionUseCase 画像から取引を抽出するユースケース
type ExtractionUseCase struct {
	aiRepo     domain.AIRepository
	cacheRepo  domain.CacheRepository
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

// Option ExtractionUseCaseの設定
type Option func(*ExtractionUseCase)

// WithRetryPolicy 再試行回数と初回待ち時間を設定
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) Option {
	return func(uc *ExtractionUseCase) {
		if maxRetries >= 0 {
			uc.maxRetries = uint64(maxRetries)
		}
		if baseDelay > 0 {
			uc.newBackOff = exponentialBackOff(baseDelay)
		}
	}
}

// WithCache 応答キャッシュを設定
func WithCache(cacheRepo domain.CacheRepository) Option {
	return func(uc *ExtractionUseCase) {
		uc.cacheRepo = cacheRepo
	}
}

// NewExtractionUseCase 新しいExtractionUseCaseを作成
func NewExtractionUseCase(aiRepo domain.AIRepository, opts ...Option) *ExtractionUseCase {
	uc := &ExtractionUseCase{
		aiRepo:     aiRepo,
		maxRetries: DefaultMaxRetries,
		newBackOff: exponentialBackOff(DefaultRetryBaseDelay),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func exponentialBackOff(base time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = base
		b.Multiplier = 2
		b.RandomizationFactor = 0
		b.MaxInterval = base * 64
		b.MaxElapsedTime = 0
		return b
	}
}

// GetProviderName プロバイダー名を取得
func (uc *ExtractionUseCase) GetProviderName() string {
	return uc.aiRepo.ProviderName()
}

// Extract 画像から取引を抽出
// 一時的なエラー（429/503）のみ指数バックオフで再試行する
func (uc *ExtractionUseCase) Extract(ctx context.Context, prompt string, images []domain.Image) (*Extraction, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	log := logger.FromContext(ctx)
	cacheKey := uc.generateCacheKey(prompt, images)

	// キャッシュチェック
	if uc.cacheRepo != nil {
		if cached, err := uc.cacheRepo.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			txs, err := ParseTransactions(string(cached))
			if err == nil {
				log.Debug().Str("cache_key", cacheKey).Msg("extraction cache hit")
				return &Extraction{Transactions: txs, Cached: true}, nil
			}
		}
	}

	result, err := uc.generateWithRetry(ctx, log, prompt, images)
	if err != nil {
		return nil, err
	}
	if result.IsEmpty() {
		return nil, ErrEmptyResponse
	}

	txs, err := ParseTransactions(result.Text)
	if err != nil {
		return nil, err
	}

	// キャッシュに保存（24時間）
	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.Set(ctx, cacheKey, []byte(result.Text), cacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache extraction result")
		}
	}

	return &Extraction{
		Transactions: txs,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
		Model:        result.Model,
	}, nil
}

func (uc *ExtractionUseCase) generateWithRetry(ctx context.Context, log zerolog.Logger, prompt string, images []domain.Image) (*domain.AIResult, error) {
	var result *domain.AIResult
	attempt := 0

	operation := func() error {
		attempt++
		res, err := uc.aiRepo.ExtractTransactions(ctx, prompt, images)
		if err != nil {
			if IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = res
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Uint64("max_retries", uc.maxRetries).
			Dur("retry_in", wait).
			Msg("AI extraction failed, retrying")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(uc.newBackOff(), uc.maxRetries), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, classifyError(err)
	}
	return result, nil
}

// generateCacheKey プロンプトと画像からキャッシュキーを生成
func (uc *ExtractionUseCase) generateCacheKey(prompt string, images []domain.Image) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	for _, img := range images {
		h.Write([]byte{0})
		h.Write(img.Data)
	}
	return fmt.Sprintf("vision:extract:%s", hex.EncodeToString(h.Sum(nil)))
}
