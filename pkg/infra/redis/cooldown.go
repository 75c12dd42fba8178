package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// flagKeyPrefix 预测冷却标记键前缀
const flagKeyPrefix = "predict_"

// CooldownStore 预测冷却标记存储
// 每个 SKU 一个键，值为最近一次预测请求的 Unix 时间，
// TTL 设为冷却窗口，过期键自然消失
type CooldownStore struct {
	client *redis.Client
}

// NewCooldownStore 创建冷却标记存储
func NewCooldownStore(client *redis.Client) *CooldownStore {
	return &CooldownStore{client: client}
}

// LastRequest 读取 SKU 最近一次预测请求时间
// 标记不存在返回 found=false
func (s *CooldownStore) LastRequest(ctx context.Context, sku string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, flagKeyPrefix+sku).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to read cooldown flag: %w", err)
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// 损坏的标记视为不存在
		return time.Time{}, false, nil
	}
	return time.Unix(unix, 0), true, nil
}

// MarkRequested 记录本次预测请求时间
// 标记表示"已发起过预测"，与是否触发告警无关
func (s *CooldownStore) MarkRequested(ctx context.Context, sku string, ttl time.Duration) error {
	value := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.Set(ctx, flagKeyPrefix+sku, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown flag: %w", err)
	}
	return nil
}
