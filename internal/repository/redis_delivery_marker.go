package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	deliveryMarkerPrefix = "wink:push:delivered:"
	defaultMarkerTTL     = 24 * time.Hour
)

// RedisDeliveryMarker помечает сообщения, по которым push уже отправляется,
// чтобы повторная доставка того же события не дублировала уведомление.
type RedisDeliveryMarker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisDeliveryMarker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisDeliveryMarker {
	if ttl <= 0 {
		ttl = defaultMarkerTTL
	}
	return &RedisDeliveryMarker{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisDeliveryMarker"),
	}
}

// Claim atomically sets the marker. It returns false when another invocation
// already claimed the same message.
func (m *RedisDeliveryMarker) Claim(ctx context.Context, chatID, messageID string) (bool, error) {
	key := deliveryMarkerKey(chatID, messageID)
	claimed, err := m.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim delivery marker %s: %w", key, err)
	}
	m.logger.Debug("Delivery marker claim", zap.String("key", key), zap.Bool("claimed", claimed))
	return claimed, nil
}

// Release удаляет метку, чтобы следующая доставка события могла попробовать снова.
func (m *RedisDeliveryMarker) Release(ctx context.Context, chatID, messageID string) error {
	key := deliveryMarkerKey(chatID, messageID)
	if err := m.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release delivery marker %s: %w", key, err)
	}
	return nil
}

func deliveryMarkerKey(chatID, messageID string) string {
	return deliveryMarkerPrefix + chatID + ":" + messageID
}
