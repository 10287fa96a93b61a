package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"ledger-import-app/internal/logger"
	"ledger-import-app/internal/modules/ledger/domain/repository"
)

// DefaultChangeChannel 変更通知のチャンネル名
const DefaultChangeChannel = "ledger:changes"

// RedisNotifier Redis Pub/Subによる変更通知
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisNotifier 新しいRedisNotifierを作成
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChangeChannel
	}
	return &RedisNotifier{client: client, channel: channel}
}

// Publish 変更を通知
func (n *RedisNotifier) Publish(ctx context.Context, change repository.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Subscribe 変更の受信を開始
// 購読が確立してから戻る
func (n *RedisNotifier) Subscribe(ctx context.Context, handler func(repository.Change)) (io.Closer, error) {
	pubsub := n.client.Subscribe(ctx, n.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	log := logger.FromContext(ctx)
	go func() {
		for msg := range pubsub.Channel() {
			var change repository.Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.Warn().Err(err).Str("payload", msg.Payload).Msg("ignoring malformed change notification")
				continue
			}
			handler(change)
		}
	}()

	return pubsub, nil
}
