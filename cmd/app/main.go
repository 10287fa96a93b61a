package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ledger-import-app/internal/config"
	"ledger-import-app/internal/logger"
	"ledger-import-app/internal/presentation/di"
	"ledger-import-app/internal/presentation/http/router"
)

// AppConfig アプリケーション設定
type AppConfig struct {
	ConfigPath string
	Port       string
}

// ServerInterface サーバーインターフェース（Seam化）
type ServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App アプリケーション構造体（Seamパターン）
type App struct {
	config          *AppConfig
	container       *di.Container
	server          *http.Server
	serverSeam      ServerInterface // テスト用のSeam
	log             zerolog.Logger
	shutdownTimeout time.Duration
}

// NewApp 新しいAppを作成
func NewApp(appCfg *AppConfig) (*App, error) {
	// 設定の読み込み
	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		bootLog := logger.New()
		bootLog.Warn().Err(err).Str("path", appCfg.ConfigPath).Msg("failed to load config, using defaults")
		cfg = config.DefaultConfig()
	}

	// ポートのデフォルト値設定（引数 > 設定ファイル）
	if appCfg.Port == "" {
		appCfg.Port = strconv.Itoa(cfg.Server.Port)
	} else if port, err := strconv.Atoi(appCfg.Port); err == nil {
		cfg.Server.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// DIコンテナの初期化
	container, err := di.NewContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DI container: %w", err)
	}

	// ルーターの作成
	handler := router.NewRouter(container)

	// サーバーの設定
	server := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	app := &App{
		config:          appCfg,
		container:       container,
		server:          server,
		log:             container.Logger(),
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	// デフォルトでは実際のサーバーを使用
	app.serverSeam = server

	return app, nil
}

// Start サーバーを起動
func (a *App) Start() error {
	// 起動メッセージ
	a.printStartupMessage()

	// サーバー起動（Seamを使用）
	return a.serverSeam.ListenAndServe()
}

// printStartupMessage 起動メッセージを出力
func (a *App) printStartupMessage() {
	cfg := a.container.Config()

	fmt.Println("=== Ledger Import Server ===")
	fmt.Printf("AI Provider: %s\n", cfg.AI.Provider)
	fmt.Printf("Database: %s\n", cfg.Database.Driver)
	fmt.Printf("Cache: %t\n", a.container.HasCache())
	fmt.Printf("Active mode: %s\n", a.container.Dispatcher().ActiveMode())
	fmt.Printf("Server listening on http://0.0.0.0:%s\n", a.config.Port)
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  GET    /health                                   - Health check")
	fmt.Println("  GET    /api/v1/ledger/modes                      - モード一覧")
	fmt.Println("  PUT    /api/v1/ledger/active                     - モード切り替え")
	fmt.Println("  POST   /api/v1/ledger/{mode}/extract             - 画像から取引を抽出")
	fmt.Println("  GET    /api/v1/ledger/{mode}/transactions        - 取引一覧")
	fmt.Println("  PATCH  /api/v1/ledger/{mode}/transactions/{i}    - 取引の編集")
	fmt.Println("  POST   /api/v1/ledger/{mode}/undo                - 元に戻す")
	fmt.Println("  GET    /api/v1/ledger/{mode}/rules/{kind}        - 仕訳ルール")
	fmt.Println("  POST   /api/v1/ledger/{mode}/journal             - 仕訳日記帳から学習")
	fmt.Println("  GET    /api/v1/ledger/{mode}/settings            - 設定")
	fmt.Println("  GET    /api/v1/ledger/{mode}/csv                 - 弥生会計インポートCSV")
	fmt.Println("  GET    /api/v1/ledger/{mode}/manual              - 取り込み手順書")
	fmt.Println()
}

// Shutdown サーバーをシャットダウン
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info().Msg("Shutting down server...")

	// サーバーのシャットダウン（Seamを使用）
	if err := a.serverSeam.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// コンテナのクローズ
	if err := a.container.Close(); err != nil {
		return fmt.Errorf("container close failed: %w", err)
	}

	a.log.Info().Msg("Server stopped")
	return nil
}

// Run アプリケーションを実行（グレースフルシャットダウン付き）
func (a *App) Run() error {
	// サーバー起動（goroutine）
	serverErr := make(chan error, 1)
	go func() {
		if err := a.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// シグナルの待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		// グレースフルシャットダウン
		timeout := a.shutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return a.Shutdown(ctx)
	}
}

// configPath 設定ファイルのパス（LEDGER_CONFIG > ~/.ledger-import-app/config.yaml）
func configPath() string {
	if p := os.Getenv("LEDGER_CONFIG"); p != "" {
		return p
	}

	// ホームディレクトリの取得
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".ledger-import-app", "config.yaml")
}

// realMain 実際のmain処理（テスト可能にするため分離）
func realMain() error {
	if err := config.LoadDotEnv(os.Getenv("LEDGER_ENV_FILE")); err != nil {
		return err
	}

	// アプリケーション設定（PORT未設定なら設定ファイルのポート）
	appCfg := &AppConfig{
		ConfigPath: configPath(),
		Port:       os.Getenv("PORT"),
	}

	// アプリケーションの作成
	app, err := NewApp(appCfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	// アプリケーションの実行
	return app.Run()
}

func main() {
	if err := realMain(); err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Application error")
	}
}
