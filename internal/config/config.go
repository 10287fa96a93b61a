package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// Config アプリケーション全体の設定
type Config struct {
	AI       AIConfig       `yaml:"ai"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// AIConfig 抽出に使うAIの設定
type AIConfig struct {
	Provider       string          `yaml:"provider"` // claude or gemini
	Anthropic      AnthropicConfig `yaml:"anthropic"`
	Gemini         GeminiConfig    `yaml:"gemini"`
	MaxRetries     int             `yaml:"max_retries"`
	RetryBaseDelay time.Duration   `yaml:"retry_base_delay"`
	CacheEnabled   bool            `yaml:"cache_enabled"`
}

// AnthropicConfig Anthropic APIの設定
type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// GeminiConfig Gemini APIの設定
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// RedisConfig Redisの設定
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

// DatabaseConfig 永続化の設定
type DatabaseConfig struct {
	Driver string       `yaml:"driver"` // mysql or sqlite3
	MySQL  MySQLConfig  `yaml:"mysql"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// MySQLConfig MySQLの設定
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// SQLiteConfig SQLiteの設定
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// LedgerConfig 仕訳生成の設定
type LedgerConfig struct {
	DefaultMode       string             `yaml:"default_mode"`
	TargetYear        int                `yaml:"target_year"`
	ShowSystemColumns bool               `yaml:"show_system_columns"`
	DescriptionLength int                `yaml:"description_length"`
	Tax               entity.TaxSettings `yaml:"tax"`
}

// ServerConfig HTTPサーバーの設定
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig ログ出力の設定
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// LoadDotEnv .envファイルを読み込む（パス省略時はカレントディレクトリ、なければ無視）
func LoadDotEnv(envPath ...string) error {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
		return nil
	}
	_ = godotenv.Load()
	return nil
}

// Load 設定ファイルを読み込む
// ファイルにない項目はデフォルト値のまま
func Load(configPath string) (*Config, error) {
	// 設定ファイルが存在しない場合はデフォルト設定を返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 環境変数の展開
	dataStr := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(dataStr), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// DefaultConfig デフォルト設定を返す
func DefaultConfig() *Config {
	// Redis/MySQLのホストはテスト環境では localhost を使用
	redisHost := "redis"
	mysqlHost := "mysql"
	if os.Getenv("GO_ENV") == "test" {
		redisHost = "localhost"
		mysqlHost = "localhost"
	}

	provider := "gemini"
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("ANTHROPIC_API_KEY") != "" {
		provider = "claude"
	}

	return &Config{
		AI: AIConfig{
			Provider: provider,
			Anthropic: AnthropicConfig{
				APIKey:    os.Getenv("ANTHROPIC_API_KEY"),
				Model:     "claude-haiku-4-5-20251001",
				MaxTokens: 8192,
			},
			Gemini: GeminiConfig{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  "gemini-2.0-flash",
			},
			MaxRetries:     3,
			RetryBaseDelay: time.Second,
			CacheEnabled:   true,
		},
		Redis: RedisConfig{
			Host:     redisHost,
			Port:     6379,
			Password: "",
			DB:       0,
			Enabled:  true,
		},
		Database: DatabaseConfig{
			Driver: "mysql",
			MySQL: MySQLConfig{
				Host:     mysqlHost,
				Port:     3306,
				User:     "root",
				Password: os.Getenv("MYSQL_ROOT_PASSWORD"),
				Database: "ledger_db",
			},
			SQLite: SQLiteConfig{
				Path: "ledger.db",
			},
		},
		Ledger: LedgerConfig{
			DefaultMode:       string(entity.ModeBank),
			TargetYear:        time.Now().Year(),
			ShowSystemColumns: false,
			DescriptionLength: 64,
			Tax:               entity.DefaultTaxSettings(),
		},
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// APIKey 選択中のプロバイダーのAPIキーを返す
func (c *Config) APIKey() string {
	if strings.EqualFold(c.AI.Provider, "claude") {
		return c.AI.Anthropic.APIKey
	}
	return c.AI.Gemini.APIKey
}

// Validate 設定値を検証する
// APIキーは画面からも入力できるためここでは検証しない
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.AI.Provider) {
	case "claude", "gemini":
	default:
		errs = append(errs, fmt.Errorf("unknown ai.provider: %q", c.AI.Provider))
	}
	if c.AI.MaxRetries < 0 {
		errs = append(errs, errors.New("ai.max_retries must not be negative"))
	}

	switch c.Database.Driver {
	case "mysql":
		if c.Database.MySQL.Host == "" || c.Database.MySQL.Database == "" {
			errs = append(errs, errors.New("database.mysql.host and database.mysql.database are required"))
		}
	case "sqlite3":
		if c.Database.SQLite.Path == "" {
			errs = append(errs, errors.New("database.sqlite.path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver: %q", c.Database.Driver))
	}

	if !entity.Mode(c.Ledger.DefaultMode).IsValid() {
		errs = append(errs, fmt.Errorf("unknown ledger.default_mode: %q", c.Ledger.DefaultMode))
	}
	if !c.Ledger.Tax.IsValid() {
		errs = append(errs, errors.New("ledger.tax is invalid"))
	}
	if c.Ledger.DescriptionLength < 0 {
		errs = append(errs, errors.New("ledger.description_length must not be negative"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server.port: %d", c.Server.Port))
	}

	return errors.Join(errs...)
}

// Save 設定をファイルに保存する
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
