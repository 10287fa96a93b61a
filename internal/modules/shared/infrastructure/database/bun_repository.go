package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"ledger-import-app/internal/config"
)

const mysqlDuplicateKeyName = 1061

// Rule BUNモデル
type Rule struct {
	bun.BaseModel `bun:"table:ledger_rules"`

	ID              string    `bun:"id,pk,type:varchar(36)"`
	Mode            string    `bun:"mode,notnull,type:varchar(20)"`
	Keyword         string    `bun:"keyword,notnull,type:varchar(255)"`
	Account         string    `bun:"account,notnull,type:varchar(100)"`
	TaxCategory     string    `bun:"tax_category,notnull,type:varchar(50),default:''"`
	TransactionType string    `bun:"transaction_type,notnull,type:varchar(10)"`
	Position        int       `bun:"position,notnull,default:0"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

// Transaction BUNモデル
type Transaction struct {
	bun.BaseModel `bun:"table:ledger_transactions"`

	ID            string    `bun:"id,pk,type:varchar(36)"`
	SourceType    string    `bun:"source_type,notnull,type:varchar(20)"`
	SourceName    string    `bun:"source_name,notnull,type:varchar(100),default:''"`
	Date          string    `bun:"date,notnull,type:varchar(10)"`
	Description   string    `bun:"description,notnull,type:text"`
	Amount        int64     `bun:"amount,notnull"`
	Type          string    `bun:"type,notnull,type:varchar(10),default:''"`
	Note          string    `bun:"note,notnull,type:text"`
	Account       string    `bun:"account,notnull,type:varchar(100),default:''"`
	InvoiceNumber string    `bun:"invoice_number,notnull,type:varchar(20),default:''"`
	TaxCategory   string    `bun:"tax_category,notnull,type:varchar(50),default:''"`
	TaxAmount     *int64    `bun:"tax_amount"`
	Position      int       `bun:"position,notnull,default:0"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// Open 設定のドライバーでDBに接続
func Open(cfg *config.DatabaseConfig) (*bun.DB, error) {
	var db *bun.DB

	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.MySQL.User, cfg.MySQL.Password, cfg.MySQL.Host, cfg.MySQL.Port, cfg.MySQL.Database)

		sqldb, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db = bun.NewDB(sqldb, mysqldialect.New())
	case "sqlite3":
		sqldb, err := sql.Open("sqlite3", cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLiteは書き込みを直列化する
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate テーブルとインデックスを作成
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []interface{}{(*Rule)(nil), (*Transaction)(nil)}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// キーワードは完全一致で識別する（MySQLの既定照合順序は大文字小文字・全角半角を同一視する）
	if db.Dialect().Name() == dialect.MySQL {
		if _, err := db.ExecContext(ctx,
			"ALTER TABLE ledger_rules MODIFY keyword VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL",
		); err != nil {
			return fmt.Errorf("failed to set keyword collation: %w", err)
		}
	}

	// 同じモード・区分・キーワードのルールは1件
	ruleIndex := db.NewCreateIndex().
		Model((*Rule)(nil)).
		Index("ux_ledger_rules_keyword").
		Unique().
		Column("mode", "transaction_type", "keyword")
	if err := createIndex(ctx, db, ruleIndex); err != nil {
		return fmt.Errorf("failed to create rule index: %w", err)
	}

	txIndex := db.NewCreateIndex().
		Model((*Transaction)(nil)).
		Index("ix_ledger_transactions_source").
		Column("source_type", "source_name")
	if err := createIndex(ctx, db, txIndex); err != nil {
		return fmt.Errorf("failed to create transaction index: %w", err)
	}

	return nil
}

// createIndex インデックスを作成（既存なら何もしない）
// MySQLは CREATE INDEX IF NOT EXISTS に対応していないため重複エラーを無視する
func createIndex(ctx context.Context, db *bun.DB, q *bun.CreateIndexQuery) error {
	if db.Dialect().Name() != dialect.MySQL {
		q = q.IfNotExists()
	}
	_, err := q.Exec(ctx)

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateKeyName {
		return nil
	}
	return err
}

// nextPosition 同じ条件の最大position+1を返す
func nextPosition(ctx context.Context, tx bun.Tx, model interface{}, where string, args ...interface{}) (int, error) {
	var maxPos sql.NullInt64
	err := tx.NewSelect().
		Model(model).
		ColumnExpr("MAX(position)").
		Where(where, args...).
		Scan(ctx, &maxPos)
	if err != nil {
		return 0, fmt.Errorf("failed to get max position: %w", err)
	}
	if !maxPos.Valid {
		return 0, nil
	}
	return int(maxPos.Int64) + 1, nil
}
