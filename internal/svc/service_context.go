package svc

import (
	"context"
	"fmt"
	"time"

	"safe-transfer-sol/internal/cache"
	"safe-transfer-sol/internal/client"
	"safe-transfer-sol/internal/config"
	"safe-transfer-sol/internal/logic/planner"
	"safe-transfer-sol/internal/types"
	"safe-transfer-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/redis/go-redis/v9"

	solclient "github.com/blocto/solana-go-sdk/client"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// ServiceContext 命令行工具运行所需的资源
type ServiceContext struct {
	Config  config.Config
	Payer   sdktypes.Account
	Fetcher client.AccountFetcher
	Planner *planner.Planner
	Sender  *client.Sender

	rdb    *redis.Client
	cached *client.CachedAccountFetcher
}

// NewServiceContext 创建服务上下文，调用方需先执行 c.Validate()
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	// 1. 付费者
	payer, err := client.LoadKeypair(c.KeypairPath)
	if err != nil {
		logger.Errorf("加载 keypair 失败: %v", err)
		return nil, err
	}

	// 2. RPC 客户端
	rpcClient := solclient.NewClient(c.Rpc.Endpoint)
	requestTimeout := time.Duration(c.Rpc.TimeoutSec) * time.Second

	ctx := &ServiceContext{
		Config: c,
		Payer:  payer,
	}

	// 3. 账户读取，配置了 Redis 时经 owner 缓存
	var fetcher client.AccountFetcher = client.NewRpcAccountFetcher(rpcClient, requestTimeout)
	if c.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping %s: %w", c.Redis.Addr, err)
		}
		ownerCache := cache.NewOwnerCache(rdb, time.Duration(c.Redis.OwnerTTLSec)*time.Second)
		ctx.rdb = rdb
		ctx.cached = client.NewCachedAccountFetcher(fetcher, ownerCache)
		fetcher = ctx.cached
	}
	ctx.Fetcher = fetcher

	// 4. 模拟与发送
	ctx.Planner = planner.NewPlanner(fetcher)
	ctx.Sender = client.NewSender(rpcClient, client.SenderOption{
		ProgramID:      c.MustProgramID(),
		RequestTimeout: requestTimeout,
		ConfirmTimeout: time.Duration(c.Rpc.ConfirmTimeoutSec) * time.Second,
		PollInterval:   time.Duration(c.Rpc.PollIntervalMs) * time.Millisecond,
		Commitment:     rpc.Commitment(c.Rpc.Commitment),
	})

	logger.Infof("服务上下文初始化完成, rpc=%s, redis=%v", c.Rpc.Endpoint, c.Redis.Addr != "")
	return ctx, nil
}

// InvalidateOwners 清除缓存中的 owner，未启用缓存时为空操作
func (ctx *ServiceContext) InvalidateOwners(c context.Context, accounts ...types.Pubkey) {
	if ctx.cached == nil {
		return
	}
	if err := ctx.cached.Invalidate(c, accounts...); err != nil {
		logger.Warnf("清除 owner 缓存失败: %v", err)
	}
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() {
	if ctx.rdb != nil {
		_ = ctx.rdb.Close()
	}
}
