package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"safe-transfer-sol/internal/types"

	"github.com/redis/go-redis/v9"
)

// Redis key 前缀
const ownerPrefix = "safe_transfer:owner"

// OwnerCache 在 Redis 中缓存账户 owner。
// 只缓存非空 owner：空 owner 表示账户未初始化，随时可能被创建
type OwnerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOwnerCache 创建 owner 缓存
func NewOwnerCache(rdb *redis.Client, ttl time.Duration) *OwnerCache {
	return &OwnerCache{rdb: rdb, ttl: ttl}
}

func (c *OwnerCache) getKey(account types.Pubkey) string {
	return fmt.Sprintf("%s:%s", ownerPrefix, account)
}

// GetOwners 批量读取，返回命中的 account → owner
func (c *OwnerCache) GetOwners(ctx context.Context, accounts []types.Pubkey) (map[types.Pubkey]types.Pubkey, error) {
	result := make(map[types.Pubkey]types.Pubkey, len(accounts))
	if len(accounts) == 0 {
		return result, nil
	}

	keys := make([]string, len(accounts))
	for i, acc := range accounts {
		keys[i] = c.getKey(acc)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget error: %w", err)
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // 未命中
		}
		owner, err := types.PubkeyFromBytes([]byte(s))
		if err != nil {
			continue // 容错处理
		}
		result[accounts[i]] = owner
	}
	return result, nil
}

// SetOwner 写入 owner，空 owner 直接忽略
func (c *OwnerCache) SetOwner(ctx context.Context, account, owner types.Pubkey) error {
	if owner.IsZero() {
		return nil
	}
	return c.rdb.Set(ctx, c.getKey(account), owner[:], c.ttl).Err()
}

// Invalidate 删除缓存，交易失败或账户被关闭时调用
func (c *OwnerCache) Invalidate(ctx context.Context, accounts ...types.Pubkey) error {
	if len(accounts) == 0 {
		return nil
	}
	keys := make([]string, len(accounts))
	for i, acc := range accounts {
		keys[i] = c.getKey(acc)
	}
	err := c.rdb.Del(ctx, keys...).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}
