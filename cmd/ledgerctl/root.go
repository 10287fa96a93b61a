package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledger-import-app/internal/config"
	"ledger-import-app/internal/logger"
	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/usecase"
	"ledger-import-app/internal/modules/shared/infrastructure/database"
	"ledger-import-app/internal/modules/vision/domain"
	"ledger-import-app/internal/presentation/di"
)

// deps テストで差し替える依存
type deps struct {
	newExtractor func(cfg *config.AIConfig, cacheRepo domain.CacheRepository) usecase.ExtractorFactory
	now          func() time.Time
}

type cli struct {
	v    *viper.Viper
	deps deps
	cfg  *config.Config
	log  zerolog.Logger
}

func newRootCmd(d deps) *cobra.Command {
	c := &cli{v: viper.New(), deps: d}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "弥生会計インポート用の仕訳CSVを作成する",
		Long: `ledgerctl は通帳・クレジットカード明細・領収書の画像から取引を抽出し、
弥生会計の仕訳インポート形式のCSVを作成します。

Example:
  ledgerctl extract --mode bank --source 三菱UFJ銀行 page1.jpg page2.jpg
  ledgerctl render --mode bank --source 三菱UFJ銀行 --output journal.csv
  ledgerctl rules --mode creditcard --kind expense
  ledgerctl learn --mode bank 仕訳日記帳.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "設定ファイル（既定は ~/.ledger-import-app/config.yaml）")
	pf.String("mode", string(entity.ModeBank), "モード（creditcard, bank, receipt）")
	pf.String("sqlite", "", "SQLiteファイル（指定時は設定ファイルのDBより優先）")
	pf.String("source", "", "銀行名・カード名")
	pf.String("api-key", "", "AIのAPIキー")
	pf.String("model", "", "AIのモデル")
	pf.Int("year", 0, "対象年（既定は設定ファイル、なければ今年）")
	pf.String("log-level", "warn", "ログレベル")
	_ = c.v.BindPFlags(pf)

	// LEDGER_MODE, LEDGER_API_KEY などの環境変数でも指定できる
	c.v.SetEnvPrefix("LEDGER")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(c.renderCmd(), c.extractCmd(), c.rulesCmd(), c.learnCmd())
	return root
}

// setup 設定ファイルを読み込み、フラグと環境変数で上書きする
func (c *cli) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	path := c.v.GetString("config")
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if p := c.v.GetString("sqlite"); p != "" {
		cfg.Database.Driver = "sqlite3"
		cfg.Database.SQLite.Path = p
	}
	if y := c.v.GetInt("year"); y > 0 {
		cfg.Ledger.TargetYear = y
	}
	c.cfg = cfg

	c.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().
		Level(logger.ParseLevel(c.v.GetString("log-level")))
	return nil
}

func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".ledger-import-app", "config.yaml")
}

func (c *cli) context(cmd *cobra.Command) context.Context {
	return logger.WithContext(cmd.Context(), c.log)
}

func (c *cli) mode() (entity.Mode, error) {
	return entity.ParseMode(c.v.GetString("mode"))
}

// settings 設定ファイルの値にフラグの銀行名・APIキー・モデルを重ねる
func (c *cli) settings() usecase.Settings {
	s := di.LedgerSettings(c.cfg, c.deps.now())
	if v := c.v.GetString("source"); v != "" {
		s.SourceLabel = v
	}
	if v := c.v.GetString("api-key"); v != "" {
		s.APIKey = v
	}
	if v := c.v.GetString("model"); v != "" {
		s.Model = v
	}
	return s
}

// session DBを開いてモードのセッションを読み込む（戻り値の関数でDBを閉じる）
func (c *cli) session(ctx context.Context) (*usecase.LedgerUseCase, func(), error) {
	mode, err := c.mode()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(&c.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	if err := database.Migrate(ctx, db); err != nil {
		closeDB()
		return nil, nil, err
	}

	session, err := usecase.NewLedgerUseCase(mode,
		database.NewBunRuleRepositoryWithDB(db),
		database.NewBunTransactionRepositoryWithDB(db),
		c.deps.newExtractor(&c.cfg.AI, nil),
		usecase.WithSettings(c.settings()),
		usecase.WithClock(c.deps.now),
	)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	if err := session.Load(ctx); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("failed to load %s session: %w", mode, err)
	}
	return session, closeDB, nil
}

// openOutput 出力先（空または "-" は標準出力）
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

// readInput 入力ファイル（"-" は標準入力）
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
