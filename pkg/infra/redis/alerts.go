package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// LowStockAlert 低库存告警消息
type LowStockAlert struct {
	Sku           string `json:"sku"`
	DaysRemaining int    `json:"days_remaining"`
	Timestamp     int64  `json:"timestamp"`
}

// AlertPublisher 低库存告警发布器（Redis Pub/Sub）
type AlertPublisher struct {
	client  *redis.Client
	channel string
}

// NewAlertPublisher 创建告警发布器
func NewAlertPublisher(client *redis.Client, channel string) *AlertPublisher {
	return &AlertPublisher{
		client:  client,
		channel: channel,
	}
}

// PublishLowStock 发布低库存告警
func (p *AlertPublisher) PublishLowStock(ctx context.Context, alert *LowStockAlert) error {
	msgJSON, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	return nil
}

// Subscribe 订阅告警频道（测试用）
func (p *AlertPublisher) Subscribe(ctx context.Context) *redis.PubSub {
	return p.client.Subscribe(ctx, p.channel)
}
