package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledger-import-app/internal/config"
	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/domain/repository"
	"ledger-import-app/internal/modules/shared/infrastructure/testcontainer"
)

func setupRedisRepo(t *testing.T) *RedisRepository {
	t.Helper()
	ctx := context.Background()

	// TestContainer起動
	redisContainer, err := testcontainer.StartRedis(ctx, t)
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}

	cfg := redisContainer.Config()
	repo, err := NewRedisRepository(&cfg)
	if err != nil {
		t.Fatalf("Failed to create redis repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func TestNewRedisRepository_ConnectionError(t *testing.T) {
	_, err := NewRedisRepository(&config.RedisConfig{Host: "127.0.0.1", Port: 1})
	if err == nil {
		t.Error("Expected connection error, got nil")
	}
}

func TestRedisRepository_SetGet(t *testing.T) {
	repo := setupRedisRepo(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		key        string
		value      []byte
		expiration time.Duration
	}{
		{name: "正常系: 抽出結果", key: "vision:extract:abc", value: []byte(`{"transactions":[]}`), expiration: 24 * time.Hour},
		{name: "正常系: 短い有効期限", key: "test:short", value: []byte("v"), expiration: time.Second},
		{name: "境界値: 大きな値", key: "test:large", value: make([]byte, 10000), expiration: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.Set(ctx, tt.key, tt.value, tt.expiration); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := repo.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestRedisRepository_Miss(t *testing.T) {
	repo := setupRedisRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "test:nonexistent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}

	exists, err := repo.Exists(ctx, "test:nonexistent")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() should return false for non-existent key")
	}
}

func TestRedisRepository_Delete(t *testing.T) {
	repo := setupRedisRepo(t)
	ctx := context.Background()

	testKey := "test:delete:key"
	if err := repo.Set(ctx, testKey, []byte("value"), time.Hour); err != nil {
		t.Fatalf("Failed to set test data: %v", err)
	}

	if err := repo.Delete(ctx, testKey); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	exists, err := repo.Exists(ctx, testKey)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Key still exists after Delete()")
	}
}

func TestRedisNotifier_PublishSubscribe(t *testing.T) {
	repo := setupRedisRepo(t)
	ctx := context.Background()

	notifier := NewRedisNotifier(repo.client, "")
	received := make(chan repository.Change, 1)

	sub, err := notifier.Subscribe(ctx, func(c repository.Change) {
		received <- c
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer func() { _ = sub.Close() }()

	want := repository.Change{Mode: entity.ModeBank, Target: repository.ChangeTargetRule, ID: "r1", Origin: "node-a"}
	if err := notifier.Publish(ctx, want); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if got != want {
			t.Errorf("received = %+v, want %+v", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}
}
