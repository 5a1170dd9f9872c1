package client

import (
	"context"
	"fmt"
	"time"

	"safe-transfer-sol/internal/cache"
	"safe-transfer-sol/internal/types"
	"safe-transfer-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/client"
)

// AccountFetcher 批量读取账户，返回结果与 keys 一一对应。
// 不存在的账户返回 owner 为全 0 的 AccountInfo
type AccountFetcher interface {
	FetchAccounts(ctx context.Context, keys []types.Pubkey) ([]*types.AccountInfo, error)
}

// RpcAccountFetcher 基于 getMultipleAccounts
type RpcAccountFetcher struct {
	client  *client.Client
	timeout time.Duration
}

func NewRpcAccountFetcher(c *client.Client, timeout time.Duration) *RpcAccountFetcher {
	return &RpcAccountFetcher{client: c, timeout: timeout}
}

func (f *RpcAccountFetcher) FetchAccounts(ctx context.Context, keys []types.Pubkey) ([]*types.AccountInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	addrs := make([]string, len(keys))
	for i, k := range keys {
		addrs[i] = k.String()
	}

	start := time.Now()
	infos, err := f.client.GetMultipleAccounts(ctx, addrs)
	if err != nil {
		return nil, fmt.Errorf("GetMultipleAccounts failed: %w", err)
	}
	logger.Debugf("[fetcher] GetMultipleAccounts 成功, 账户数: %d, 耗时: %v", len(keys), time.Since(start))

	if len(infos) != len(keys) {
		return nil, fmt.Errorf("返回账户数与请求不一致: got=%d want=%d", len(infos), len(keys))
	}

	result := make([]*types.AccountInfo, len(keys))
	for i, info := range infos {
		result[i] = &types.AccountInfo{
			Key:        keys[i],
			Owner:      types.PubkeyFromCommon(info.Owner),
			Lamports:   info.Lamports,
			Data:       info.Data,
			Executable: info.Executable,
		}
	}
	return result, nil
}

// CachedAccountFetcher 先查 Redis owner 缓存，未命中的账户再走下游 fetcher。
// 命中的账户只有 Key / Owner，处理器也只读取这两个字段
type CachedAccountFetcher struct {
	next  AccountFetcher
	cache *cache.OwnerCache
}

func NewCachedAccountFetcher(next AccountFetcher, c *cache.OwnerCache) *CachedAccountFetcher {
	return &CachedAccountFetcher{next: next, cache: c}
}

func (f *CachedAccountFetcher) FetchAccounts(ctx context.Context, keys []types.Pubkey) ([]*types.AccountInfo, error) {
	owners, err := f.cache.GetOwners(ctx, keys)
	if err != nil {
		// 缓存不可用时退化为直接查询
		logger.Warnf("[fetcher] owner cache 读取失败, 直接查询 RPC: %v", err)
		owners = nil
	}

	result := make([]*types.AccountInfo, len(keys))
	var missIdx []int
	var missKeys []types.Pubkey
	for i, k := range keys {
		if owner, ok := owners[k]; ok {
			result[i] = &types.AccountInfo{Key: k, Owner: owner}
			continue
		}
		missIdx = append(missIdx, i)
		missKeys = append(missKeys, k)
	}
	if len(missKeys) == 0 {
		return result, nil
	}

	fetched, err := f.next.FetchAccounts(ctx, missKeys)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missKeys) {
		return nil, fmt.Errorf("返回账户数与请求不一致: got=%d want=%d", len(fetched), len(missKeys))
	}
	for j, info := range fetched {
		result[missIdx[j]] = info
		if err := f.cache.SetOwner(ctx, info.Key, info.Owner); err != nil {
			logger.Warnf("[fetcher] owner cache 写入失败: account=%s err=%v", info.Key, err)
		}
	}
	return result, nil
}

// Uncached 返回不经缓存的下游 fetcher，用于读取可能被关闭的账户
func (f *CachedAccountFetcher) Uncached() AccountFetcher {
	return f.next
}

// Invalidate 清除账户缓存
func (f *CachedAccountFetcher) Invalidate(ctx context.Context, keys ...types.Pubkey) error {
	return f.cache.Invalidate(ctx, keys...)
}
