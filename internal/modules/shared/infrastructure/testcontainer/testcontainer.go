package testcontainer

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"ledger-import-app/internal/config"
)

// RedisContainer Redisコンテナのラッパー
type RedisContainer struct {
	Container *rediscontainer.RedisContainer
	Host      string
	Port      string
}

// MySQLContainer MySQLコンテナのラッパー
type MySQLContainer struct {
	Container *mysql.MySQLContainer
	Host      string
	Port      string
	Database  string
	User      string
	Password  string
}

// SkipIfShort -short 指定時はコンテナを使うテストをスキップ
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
}

// StartRedis Redisコンテナを起動し、テスト終了時に停止する
func StartRedis(ctx context.Context, t *testing.T) (*RedisContainer, error) {
	t.Helper()
	SkipIfShort(t)

	container, err := rediscontainer.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}
	rc := &RedisContainer{Container: container}
	t.Cleanup(func() { _ = rc.Close(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get redis host: %w", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return nil, fmt.Errorf("failed to get redis port: %w", err)
	}

	rc.Host = host
	rc.Port = port.Port()
	return rc, nil
}

// StartMySQL MySQLコンテナを起動し、テスト終了時に停止する
func StartMySQL(ctx context.Context, t *testing.T) (*MySQLContainer, error) {
	t.Helper()
	SkipIfShort(t)

	const (
		database = "ledger_test"
		user     = "testuser"
		password = "testpass"
	)

	container, err := mysql.Run(ctx,
		"mysql:8.0",
		mysql.WithDatabase(database),
		mysql.WithUsername(user),
		mysql.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start mysql container: %w", err)
	}
	mc := &MySQLContainer{Container: container, Database: database, User: user, Password: password}
	t.Cleanup(func() { _ = mc.Close(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get mysql host: %w", err)
	}

	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		return nil, fmt.Errorf("failed to get mysql port: %w", err)
	}

	mc.Host = host
	mc.Port = port.Port()
	return mc, nil
}

// Close Redisコンテナを停止
func (r *RedisContainer) Close(ctx context.Context) error {
	if r.Container != nil {
		err := r.Container.Terminate(ctx)
		r.Container = nil
		return err
	}
	return nil
}

// Close MySQLコンテナを停止
func (m *MySQLContainer) Close(ctx context.Context) error {
	if m.Container != nil {
		err := m.Container.Terminate(ctx)
		m.Container = nil
		return err
	}
	return nil
}

// Config アプリケーション設定のRedis項目を返す
func (r *RedisContainer) Config() config.RedisConfig {
	port, _ := strconv.Atoi(r.Port)
	return config.RedisConfig{Host: r.Host, Port: port, Enabled: true}
}

// Config アプリケーション設定のMySQL項目を返す
func (m *MySQLContainer) Config() config.MySQLConfig {
	port, _ := strconv.Atoi(m.Port)
	return config.MySQLConfig{
		Host:     m.Host,
		Port:     port,
		User:     m.User,
		Password: m.Password,
		Database: m.Database,
	}
}
