package di

import (
	"context"
	"path/filepath"
	"testing"

	"ledger-import-app/internal/config"
	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// testConfig SQLiteとRedisなしの設定
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.Driver = "sqlite3"
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "ledger.db")
	cfg.Redis.Enabled = false
	cfg.Log.Level = "error"
	return cfg
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr bool
	}{
		{
			name:    "正常系: SQLite、Redisなし",
			modify:  func(cfg *config.Config) {},
			wantErr: false,
		},
		{
			name: "正常系: 空のAPIキー（初期化は成功）",
			modify: func(cfg *config.Config) {
				cfg.AI.Gemini.APIKey = ""
				cfg.AI.Anthropic.APIKey = ""
			},
			wantErr: false,
		},
		{
			name: "正常系: Redisに接続できなくても起動",
			modify: func(cfg *config.Config) {
				cfg.Redis.Enabled = true
				cfg.Redis.Host = "127.0.0.1"
				cfg.Redis.Port = 1
			},
			wantErr: false,
		},
		{
			name: "異常系: 未知のドライバー",
			modify: func(cfg *config.Config) {
				cfg.Database.Driver = "postgres"
			},
			wantErr: true,
		},
		{
			name: "異常系: 未知の既定モード",
			modify: func(cfg *config.Config) {
				cfg.Ledger.DefaultMode = "cash"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(cfg)

			container, err := NewContainer(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewContainer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer func() { _ = container.Close() }()

			if container.LedgerHandler() == nil || container.HealthHandler() == nil {
				t.Error("Expected handlers to be initialized")
			}
			if container.HasCache() {
				t.Error("Expected no cache without redis")
			}
		})
	}
}

func TestContainer_Sessions(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.Provider = "gemini"
	cfg.AI.Gemini.APIKey = "from-config"
	cfg.AI.Gemini.Model = "gemini-2.5-flash"
	cfg.Ledger.DefaultMode = string(entity.ModeReceipt)
	cfg.Ledger.TargetYear = 2023

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	defer func() { _ = container.Close() }()

	d := container.Dispatcher()
	if d.ActiveMode() != entity.ModeReceipt {
		t.Errorf("ActiveMode() = %s, want receipt", d.ActiveMode())
	}
	if len(d.Sessions()) != len(entity.Modes) {
		t.Fatalf("len(Sessions()) = %d, want %d", len(d.Sessions()), len(entity.Modes))
	}

	s := d.Active().Settings()
	if s.APIKey != "from-config" || s.Model != "gemini-2.5-flash" || s.TargetYear != 2023 {
		t.Errorf("Settings() = %+v", s)
	}

	// 永続化はセッションをまたいで共有される
	bank, _ := d.Get(entity.ModeBank)
	if _, err := bank.AddTransaction(context.Background(), &entity.Transaction{Date: "2023/01/05", Description: "電話", Amount: 100, Type: entity.KindExpense}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if err := container.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer() reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	bank, _ = reopened.Dispatcher().Get(entity.ModeBank)
	if got := bank.Transactions(); len(got) != 1 || got[0].Account != "通信費" {
		t.Errorf("Transactions() after reopen = %+v", got)
	}
}

func TestContainer_Close(t *testing.T) {
	container, err := NewContainer(testConfig(t))
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	// 2回呼んでもエラーにならない
	for i := 0; i < 2; i++ {
		if err := container.Close(); err != nil {
			t.Errorf("Close() #%d error = %v", i+1, err)
		}
	}
}
