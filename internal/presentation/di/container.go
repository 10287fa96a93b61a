package di

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"ledger-import-app/internal/config"
	"ledger-import-app/internal/logger"
	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/domain/repository"
	ledgerHandler "ledger-import-app/internal/modules/ledger/presentation/handler"
	ledgerUsecase "ledger-import-app/internal/modules/ledger/usecase"
	sharedAI "ledger-import-app/internal/modules/shared/infrastructure/ai"
	sharedCache "ledger-import-app/internal/modules/shared/infrastructure/cache"
	sharedDB "ledger-import-app/internal/modules/shared/infrastructure/database"
	visionDomain "ledger-import-app/internal/modules/vision/domain"
	visionUsecase "ledger-import-app/internal/modules/vision/usecase"
	httpHandler "ledger-import-app/internal/presentation/http/handler"
)

// Container DIコンテナ
type Container struct {
	cfg *config.Config
	log zerolog.Logger

	// Shared Infrastructure
	db        *bun.DB
	cacheRepo *sharedCache.RedisRepository
	notifier  repository.ChangeNotifier

	// Ledger Module
	dispatcher    *ledgerUsecase.ModeDispatcher
	ledgerHandler *ledgerHandler.LedgerHandler
	healthHandler *httpHandler.HealthHandler

	syncCloser io.Closer
}

// NewContainer 新しいContainerを作成
// Redisに接続できない場合はキャッシュと変更通知なしで起動する
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{
		cfg: cfg,
		log: logger.NewFromConfig(cfg.Log.Format, cfg.Log.Level),
	}
	ctx := logger.WithContext(context.Background(), container.log)

	// Shared Infrastructure: Database
	db, err := sharedDB.Open(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	container.db = db

	if err := sharedDB.Migrate(ctx, db); err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Shared Infrastructure: Cache / Notifier
	if cfg.Redis.Enabled {
		client, err := sharedCache.NewRedisClient(&cfg.Redis)
		if err != nil {
			container.log.Warn().Err(err).Msg("redis unavailable, running without cache and change notifications")
		} else {
			container.cacheRepo = sharedCache.NewRedisRepositoryWithClient(client)
			container.notifier = sharedCache.NewRedisNotifier(client, sharedCache.DefaultChangeChannel)
		}
	}

	// Ledger Module: Sessions
	ruleRepo := sharedDB.NewBunRuleRepositoryWithDB(db)
	txRepo := sharedDB.NewBunTransactionRepositoryWithDB(db)

	settings := LedgerSettings(cfg, time.Now())

	sessions := make([]*ledgerUsecase.LedgerUseCase, 0, len(entity.Modes))
	for _, mode := range entity.Modes {
		opts := []ledgerUsecase.LedgerOption{ledgerUsecase.WithSettings(settings)}
		if container.notifier != nil {
			opts = append(opts, ledgerUsecase.WithNotifier(container.notifier))
		}
		session, err := ledgerUsecase.NewLedgerUseCase(mode, ruleRepo, txRepo, NewExtractorFactory(&cfg.AI, container.cache()), opts...)
		if err != nil {
			_ = container.Close()
			return nil, fmt.Errorf("failed to initialize %s session: %w", mode, err)
		}
		sessions = append(sessions, session)
	}

	dispatcher, err := ledgerUsecase.NewModeDispatcher(entity.Mode(cfg.Ledger.DefaultMode), sessions...)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	if err := dispatcher.LoadAll(ctx); err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	container.dispatcher = dispatcher

	if container.notifier != nil {
		closer, err := dispatcher.StartSync(ctx, container.notifier)
		if err != nil {
			container.log.Warn().Err(err).Msg("failed to start change sync")
		} else {
			container.syncCloser = closer
		}
	}

	// Handlers
	container.ledgerHandler = ledgerHandler.NewLedgerHandler(dispatcher)
	container.healthHandler = httpHandler.NewHealthHandler(db)

	return container, nil
}

// LedgerSettings 設定ファイルの値からセッションの初期設定を作る
func LedgerSettings(cfg *config.Config, now time.Time) ledgerUsecase.Settings {
	settings := ledgerUsecase.DefaultSettings(now)
	settings.APIKey = cfg.APIKey()
	if cfg.Ledger.TargetYear > 0 {
		settings.TargetYear = cfg.Ledger.TargetYear
	}
	settings.Tax = cfg.Ledger.Tax
	settings.ShowSystemColumns = cfg.Ledger.ShowSystemColumns
	settings.DescriptionLength = cfg.Ledger.DescriptionLength
	if model := defaultModel(cfg); model != "" {
		settings.Model = model
	}
	return settings
}

// NewExtractorFactory 画面で入力されたAPIキーとモデルで抽出ユースケースを作る
// cacheRepo が nil ならキャッシュしない
func NewExtractorFactory(cfg *config.AIConfig, cacheRepo visionDomain.CacheRepository) ledgerUsecase.ExtractorFactory {
	return func(ctx context.Context, apiKey, model string) (ledgerUsecase.Extractor, error) {
		aiRepo, err := sharedAI.NewAIRepository(ctx, cfg, apiKey, model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ai repository: %w", err)
		}

		opts := []visionUsecase.Option{visionUsecase.WithRetryPolicy(cfg.MaxRetries, cfg.RetryBaseDelay)}
		if cfg.CacheEnabled && cacheRepo != nil {
			opts = append(opts, visionUsecase.WithCache(cacheRepo))
		}
		return visionUsecase.NewExtractionUseCase(aiRepo, opts...), nil
	}
}

func (c *Container) cache() visionDomain.CacheRepository {
	if c.cacheRepo == nil {
		return nil
	}
	return c.cacheRepo
}

// defaultModel 選択中のプロバイダーの既定モデル
func defaultModel(cfg *config.Config) string {
	if strings.EqualFold(cfg.AI.Provider, "claude") {
		return cfg.AI.Anthropic.Model
	}
	return cfg.AI.Gemini.Model
}

// Config 設定を取得
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Logger ロガーを取得
func (c *Container) Logger() zerolog.Logger {
	return c.log
}

// DB データベースを取得
func (c *Container) DB() *bun.DB {
	return c.db
}

// Dispatcher モードの切り替えを取得
func (c *Container) Dispatcher() *ledgerUsecase.ModeDispatcher {
	return c.dispatcher
}

// LedgerHandler 取り込みAPIハンドラーを取得
func (c *Container) LedgerHandler() *ledgerHandler.LedgerHandler {
	return c.ledgerHandler
}

// HealthHandler ヘルスチェックハンドラーを取得
func (c *Container) HealthHandler() *httpHandler.HealthHandler {
	return c.healthHandler
}

// HasCache Redisキャッシュが使えるかどうか
func (c *Container) HasCache() bool {
	return c.cacheRepo != nil
}

// Close リソースをクローズ
func (c *Container) Close() error {
	if c.syncCloser != nil {
		if err := c.syncCloser.Close(); err != nil {
			return fmt.Errorf("failed to stop change sync: %w", err)
		}
		c.syncCloser = nil
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Close(); err != nil {
			return fmt.Errorf("failed to close cache repository: %w", err)
		}
		c.cacheRepo = nil
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		c.db = nil
	}

	return nil
}
